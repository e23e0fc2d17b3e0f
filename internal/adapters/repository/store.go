// Package repository defines the grade store interface and errors.
package repository

import (
	"context"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

// SubjectOrder selects the ordering of a subject listing.
type SubjectOrder int

// Subject orderings.
const (
	// OrderGradeDesc sorts by grade descending, the student-page default.
	OrderGradeDesc SubjectOrder = iota
	// OrderGradeAsc sorts by grade ascending.
	OrderGradeAsc
	// OrderDateAsc sorts by date added ascending, used by prediction and exports.
	OrderDateAsc
)

// SubjectQuery narrows a subject listing for one student.
type SubjectQuery struct {
	// Search filters by case-insensitive substring match on the subject name.
	Search string
	// Order selects the listing order.
	Order SubjectOrder
}

// Store provides read/write access to students and their graded subjects.
type Store interface {
	// CreateStudent persists a new student and returns it with an assigned ID.
	CreateStudent(ctx context.Context, s model.Student) (model.Student, error)
	// GetStudent returns a student by ID. Returns ErrStudentNotFound if unknown.
	GetStudent(ctx context.Context, id string) (model.Student, error)
	// UpdateStudent replaces the mutable fields of a student.
	UpdateStudent(ctx context.Context, s model.Student) error
	// DeleteStudent removes a student and all of their subjects.
	DeleteStudent(ctx context.Context, id string) error
	// ListStudents returns students, optionally filtered by a case-insensitive
	// substring search over name and city.
	ListStudents(ctx context.Context, search string) ([]model.Student, error)

	// AddSubject persists a new graded subject and returns it with an assigned ID.
	AddSubject(ctx context.Context, s model.Subject) (model.Subject, error)
	// GetSubject returns a subject by ID. Returns ErrSubjectNotFound if unknown.
	GetSubject(ctx context.Context, id string) (model.Subject, error)
	// UpdateSubject replaces a subject's name and grade.
	UpdateSubject(ctx context.Context, s model.Subject) error
	// DeleteSubject removes a subject by ID.
	DeleteSubject(ctx context.Context, id string) error
	// ListSubjects returns one student's subjects per the query.
	ListSubjects(ctx context.Context, studentID string, q SubjectQuery) ([]model.Subject, error)

	// CountStudents returns the number of tracked students.
	CountStudents(ctx context.Context) (int, error)
	// CountSubjects returns the number of recorded subjects.
	CountSubjects(ctx context.Context) (int, error)

	// Close releases the underlying connections.
	Close() error
}

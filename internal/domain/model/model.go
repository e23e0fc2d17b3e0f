// Package model contains domain models passed between layers.
package model

import "time"

// Student represents a tracked student.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Index string `json:"index"` // enrollment index, free-form
	City  string `json:"city"`
}

// Subject represents a single graded subject for a student.
type Subject struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Name      string    `json:"subject"`
	Grade     float64   `json:"grade"`
	DateAdded time.Time `json:"date_added"`
}

// StudentSummary is a student row enriched with grade aggregates.
type StudentSummary struct {
	Student
	Average      float64 `json:"avg"`
	SubjectCount int     `json:"subjects_count"`
	HasFail      bool    `json:"has_fail"` // any grade below the passing bound
}

// Overview aggregates the whole cohort for listings.
type Overview struct {
	AverageAll float64         `json:"avg_all"`
	Highest    *StudentSummary `json:"highest_avg_student,omitempty"`
	Lowest     *StudentSummary `json:"lowest_avg_student,omitempty"`
}

// Stats is a point-in-time snapshot of service state for monitoring.
// TotalStudents and TotalSubjects are zero until the store is open.
type Stats struct {
	Started       bool    `json:"started"`
	StorageDriver string  `json:"storage_driver"`
	MinGrade      float64 `json:"min_grade"`
	MaxGrade      float64 `json:"max_grade"`
	TargetAverage float64 `json:"target_average"`
	TotalStudents int     `json:"total_students"`
	TotalSubjects int     `json:"total_subjects"`
}

// Prediction is the server-computed estimate for a student's next grade.
// Prediction and BaselineAvg are nil when the student has no grade history.
type Prediction struct {
	StudentID   string   `json:"student_id,omitempty"`
	Prediction  *float64 `json:"prediction"`
	BaselineAvg *float64 `json:"baseline_avg"`
	Explanation string   `json:"explanation"`
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
	"github.com/Gjorgji13/gradetrack/pkg/metrics"
	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	_ "modernc.org/sqlite"             // pure-Go sqlite database/sql driver
)

// Storage driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQL-backed Store implementation shared by the sqlite and postgres drivers.
//
// Queries are written with ? placeholders and rebound to $N for postgres.
// Both drivers round-trip time.Time values through database/sql.
type SQLStore struct {
	db       *sql.DB
	postgres bool

	maxOpenConns    int
	connMaxLifetime time.Duration
}

// Open connects to the configured storage backend and runs migrations.
// driver is one of DriverSQLite (dsn = file path) or DriverPostgres
// (dsn = connection string).
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{
		maxOpenConns:    1,
		connMaxLifetime: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	var driverName string
	switch driver {
	case DriverSQLite:
		driverName = "sqlite"
	case DriverPostgres:
		driverName = "pgx"
		s.postgres = true
		// A single connection only makes sense for sqlite's write lock.
		if s.maxOpenConns == 1 {
			s.maxOpenConns = 0
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if s.maxOpenConns > 0 {
		db.SetMaxOpenConns(s.maxOpenConns)
	}
	db.SetConnMaxLifetime(s.connMaxLifetime)

	s.db = db
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s store: %w", driver, err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	// One statement per exec; the pgx driver rejects multi-statement batches.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  idx TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT ''
)`,
		`CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  grade REAL NOT NULL,
  date_added TIMESTAMP NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_student ON subjects(student_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind converts ? placeholders to $N for postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search text.
// Queries using the result must carry ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func observeWrite(start time.Time) {
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
}

func observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}

// CreateStudent persists a new student and returns it with an assigned ID.
func (s *SQLStore) CreateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	defer observeWrite(time.Now())

	st.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO students(id, name, idx, city) VALUES(?, ?, ?, ?)`),
		st.ID, st.Name, st.Index, st.City)
	if err != nil {
		metrics.RecordStoreError("create_student")
		return model.Student{}, err
	}
	return st, nil
}

// GetStudent returns a student by ID.
func (s *SQLStore) GetStudent(ctx context.Context, id string) (model.Student, error) {
	defer observeQuery(time.Now())

	var st model.Student
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, idx, city FROM students WHERE id = ?`), id).
		Scan(&st.ID, &st.Name, &st.Index, &st.City)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Student{}, ErrStudentNotFound
	}
	if err != nil {
		metrics.RecordStoreError("get_student")
		return model.Student{}, err
	}
	return st, nil
}

// UpdateStudent replaces the mutable fields of a student.
func (s *SQLStore) UpdateStudent(ctx context.Context, st model.Student) error {
	defer observeWrite(time.Now())

	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE students SET name = ?, idx = ?, city = ? WHERE id = ?`),
		st.Name, st.Index, st.City, st.ID)
	if err != nil {
		metrics.RecordStoreError("update_student")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// DeleteStudent removes a student and all of their subjects.
func (s *SQLStore) DeleteStudent(ctx context.Context, id string) error {
	defer observeWrite(time.Now())

	if _, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM subjects WHERE student_id = ?`), id); err != nil {
		metrics.RecordStoreError("delete_student")
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM students WHERE id = ?`), id); err != nil {
		metrics.RecordStoreError("delete_student")
		return err
	}
	return nil
}

// ListStudents returns students, optionally filtered by name/city substring.
func (s *SQLStore) ListStudents(ctx context.Context, search string) ([]model.Student, error) {
	defer observeQuery(time.Now())

	query := `SELECT id, name, idx, city FROM students`
	args := []any{}
	if strings.TrimSpace(search) != "" {
		query += ` WHERE LOWER(name) LIKE ? ESCAPE '\' OR LOWER(city) LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(search))) + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		metrics.RecordStoreError("list_students")
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	students := []model.Student{}
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Index, &st.City); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// AddSubject persists a new graded subject and returns it with an assigned ID.
func (s *SQLStore) AddSubject(ctx context.Context, sub model.Subject) (model.Subject, error) {
	defer observeWrite(time.Now())

	sub.ID = uuid.NewString()
	if sub.DateAdded.IsZero() {
		sub.DateAdded = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO subjects(id, student_id, subject, grade, date_added) VALUES(?, ?, ?, ?, ?)`),
		sub.ID, sub.StudentID, sub.Name, sub.Grade, sub.DateAdded)
	if err != nil {
		metrics.RecordStoreError("add_subject")
		return model.Subject{}, err
	}
	return sub, nil
}

// GetSubject returns a subject by ID.
func (s *SQLStore) GetSubject(ctx context.Context, id string) (model.Subject, error) {
	defer observeQuery(time.Now())

	var sub model.Subject
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, student_id, subject, grade, date_added FROM subjects WHERE id = ?`), id).
		Scan(&sub.ID, &sub.StudentID, &sub.Name, &sub.Grade, &sub.DateAdded)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subject{}, ErrSubjectNotFound
	}
	if err != nil {
		metrics.RecordStoreError("get_subject")
		return model.Subject{}, err
	}
	return sub, nil
}

// UpdateSubject replaces a subject's name and grade.
func (s *SQLStore) UpdateSubject(ctx context.Context, sub model.Subject) error {
	defer observeWrite(time.Now())

	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE subjects SET subject = ?, grade = ? WHERE id = ?`),
		sub.Name, sub.Grade, sub.ID)
	if err != nil {
		metrics.RecordStoreError("update_subject")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

// DeleteSubject removes a subject by ID.
func (s *SQLStore) DeleteSubject(ctx context.Context, id string) error {
	defer observeWrite(time.Now())

	if _, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM subjects WHERE id = ?`), id); err != nil {
		metrics.RecordStoreError("delete_subject")
		return err
	}
	return nil
}

// ListSubjects returns one student's subjects per the query.
func (s *SQLStore) ListSubjects(ctx context.Context, studentID string, q SubjectQuery) ([]model.Subject, error) {
	defer observeQuery(time.Now())

	query := `SELECT id, student_id, subject, grade, date_added FROM subjects WHERE student_id = ?`
	args := []any{studentID}
	if strings.TrimSpace(q.Search) != "" {
		query += ` AND LOWER(subject) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(strings.TrimSpace(q.Search)))+"%")
	}
	switch q.Order {
	case OrderGradeAsc:
		query += ` ORDER BY grade ASC, date_added ASC`
	case OrderDateAsc:
		query += ` ORDER BY date_added ASC`
	default:
		query += ` ORDER BY grade DESC, date_added ASC`
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		metrics.RecordStoreError("list_subjects")
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	subjects := []model.Subject{}
	for rows.Next() {
		var sub model.Subject
		if err := rows.Scan(&sub.ID, &sub.StudentID, &sub.Name, &sub.Grade, &sub.DateAdded); err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

// CountStudents returns the number of tracked students.
func (s *SQLStore) CountStudents(ctx context.Context) (int, error) {
	defer observeQuery(time.Now())

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		metrics.RecordStoreError("count_students")
		return 0, err
	}
	return n, nil
}

// CountSubjects returns the number of recorded subjects.
func (s *SQLStore) CountSubjects(ctx context.Context) (int, error) {
	defer observeQuery(time.Now())

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&n); err != nil {
		metrics.RecordStoreError("count_subjects")
		return 0, err
	}
	return n, nil
}

// Close releases the underlying connections.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

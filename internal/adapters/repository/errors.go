package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrUnknownDriver   = errors.New("unknown storage driver")
)

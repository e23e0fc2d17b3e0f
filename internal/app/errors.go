package service

import "errors"

// Sentinel kinds for service validation errors.
var (
	ErrNameRequired        = errors.New("name required")
	ErrSubjectNameRequired = errors.New("subject name required")
	ErrGradeOutOfRange     = errors.New("grade out of range")
)

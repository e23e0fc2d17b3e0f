package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidAddr       = errors.New("addr must not be empty")
	ErrInvalidDriver     = errors.New("storage_driver must be sqlite or postgres")
	ErrInvalidGradeRange = errors.New("max_grade must exceed min_grade")
)

// Wrap annotates an external error with the failing operation.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind returns a sentinel error annotated with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

package site

import "fmt"

// Wrap annotates err with the operation that produced it.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

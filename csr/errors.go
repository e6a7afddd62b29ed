package csr

import (
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every ValidationError.
var ErrMalformed = errors.New("csr: malformed matrix")

// ValidationError describes a structural defect in compressed sparse input.
type ValidationError struct {
	Field    string // offsets, indices, shape or dense
	Position int    // array position of the defect, -1 if not positional
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("csr: invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("csr: invalid %s at %d: %s", e.Field, e.Position, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrMalformed }

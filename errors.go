package sparsedot

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/conv"
	"github.com/hupe1980/sparsedot/internal/kernel"
	"github.com/hupe1980/sparsedot/resource"
)

var (
	// ErrInvalidTopN is returned when topN is not positive.
	ErrInvalidTopN = errors.New("topN must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("workers must be positive")

	// ErrInvalidBlockSize is returned when the block size is not positive.
	ErrInvalidBlockSize = errors.New("block size must be positive")

	// ErrInvalidOrder is returned when an operand cannot be read in the
	// order the selected strategy needs.
	ErrInvalidOrder = errors.New("invalid operand order")

	// ErrMalformedMatrix is returned when compressed arrays are inconsistent.
	ErrMalformedMatrix = errors.New("malformed matrix")

	// ErrResourceExhausted is returned when the result would exceed the
	// configured memory limit.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrIndexOverflow is returned when the result holds more entries than
	// the index type can address.
	ErrIndexOverflow = errors.New("index overflow")
)

// ErrDimensionMismatch indicates that the left operand's column count
// differs from the right operand's row count.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	LeftCols  int
	RightRows int
	cause     error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: left has %d columns, right has %d rows", e.LeftCols, e.RightRows)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrIndexOutOfRange indicates a stored index outside its declared dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIndexOutOfRange struct {
	Operand string
	Vector  int
	Index   int64
	Bound   int
	cause   error
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index out of range: %s vector %d holds %d, bound %d", e.Operand, e.Vector, e.Index, e.Bound)
}

func (e *ErrIndexOutOfRange) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Argument validation.
	if errors.Is(err, kernel.ErrInvalidTopN) {
		return fmt.Errorf("%w: %w", ErrInvalidTopN, err)
	}
	if errors.Is(err, kernel.ErrInvalidWorkers) {
		return fmt.Errorf("%w: %w", ErrInvalidWorkers, err)
	}
	if errors.Is(err, kernel.ErrInvalidBlockSize) {
		return fmt.Errorf("%w: %w", ErrInvalidBlockSize, err)
	}
	if errors.Is(err, kernel.ErrOrderMismatch) {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	if errors.Is(err, csr.ErrMalformed) {
		return fmt.Errorf("%w: %w", ErrMalformedMatrix, err)
	}

	// Shape and bounds.
	var dm *kernel.DimensionMismatchError
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{LeftCols: dm.LeftCols, RightRows: dm.RightRows, cause: err}
	}
	var oor *kernel.IndexOutOfRangeError
	if errors.As(err, &oor) {
		return &ErrIndexOutOfRange{Operand: oor.Operand, Vector: oor.Vector, Index: oor.Index, Bound: oor.Bound, cause: err}
	}

	// Resources.
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}
	if errors.Is(err, conv.ErrOverflow) {
		return fmt.Errorf("%w: %w", ErrIndexOverflow, err)
	}

	return err
}

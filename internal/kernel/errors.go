package kernel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTopN is returned when topN is less than one.
	ErrInvalidTopN = errors.New("kernel: topN must be at least 1")
	// ErrInvalidWorkers is returned when the worker count is less than one.
	ErrInvalidWorkers = errors.New("kernel: workers must be at least 1")
	// ErrInvalidBlockSize is returned for a negative block size.
	ErrInvalidBlockSize = errors.New("kernel: block size must be at least 1")
	// ErrOrderMismatch is returned when an operand is stored in an order the
	// chosen strategy cannot read.
	ErrOrderMismatch = errors.New("kernel: operand order does not fit strategy")
)

// DimensionMismatchError reports left.Cols() != right.Rows().
type DimensionMismatchError struct {
	LeftCols  int
	RightRows int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("kernel: left has %d columns but right has %d rows", e.LeftCols, e.RightRows)
}

// IndexOutOfRangeError reports a stored inner index outside its dimension.
type IndexOutOfRangeError struct {
	Operand string // "left" or "right"
	Vector  int    // outer position of the offending vector
	Index   int64
	Bound   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("kernel: %s vector %d holds index %d outside [0, %d)", e.Operand, e.Vector, e.Index, e.Bound)
}

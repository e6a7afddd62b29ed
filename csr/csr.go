package csr

import (
	"fmt"
	"strings"

	"github.com/hupe1980/sparsedot/internal/conv"
)

// Number is the set of supported element types.
type Number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Index is the set of supported index widths.
type Index interface {
	~int32 | ~int64
}

// Order is the storage order of a compressed matrix.
type Order uint8

const (
	// RowMajor is the compressed-row layout.
	RowMajor Order = iota
	// ColMajor is the compressed-column layout.
	ColMajor
)

func (o Order) String() string {
	switch o {
	case RowMajor:
		return "row"
	case ColMajor:
		return "col"
	default:
		return fmt.Sprintf("Order(%d)", uint8(o))
	}
}

// ParseOrder parses "row" (or "csr") and "col" (or "csc").
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "row", "csr":
		return RowMajor, nil
	case "col", "csc":
		return ColMajor, nil
	default:
		return 0, fmt.Errorf("csr: unknown order %q", s)
	}
}

// Matrix is a read-only view over compressed sparse arrays.
// It is safe for concurrent reads.
type Matrix[T Number, I Index] struct {
	rows    int
	cols    int
	order   Order
	offsets []I
	indices []I
	values  []T
}

// New returns a RowMajor view over offsets (len rows+1), column indices and values.
func New[T Number, I Index](rows, cols int, offsets, indices []I, values []T) (*Matrix[T, I], error) {
	return newMatrix(RowMajor, rows, cols, offsets, indices, values)
}

// NewColMajor returns a ColMajor view over offsets (len cols+1), row indices and values.
func NewColMajor[T Number, I Index](rows, cols int, offsets, indices []I, values []T) (*Matrix[T, I], error) {
	return newMatrix(ColMajor, rows, cols, offsets, indices, values)
}

func newMatrix[T Number, I Index](order Order, rows, cols int, offsets, indices []I, values []T) (*Matrix[T, I], error) {
	if rows < 0 || cols < 0 {
		return nil, &ValidationError{Field: "shape", Position: -1, Reason: fmt.Sprintf("negative dimension %dx%d", rows, cols)}
	}

	m := &Matrix[T, I]{
		rows:    rows,
		cols:    cols,
		order:   order,
		offsets: offsets,
		indices: indices,
		values:  values,
	}

	if err := m.checkOffsets(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Matrix[T, I]) checkOffsets() error {
	outer := m.Outer()
	if len(m.offsets) != outer+1 {
		return &ValidationError{
			Field:    "offsets",
			Position: -1,
			Reason:   fmt.Sprintf("length %d, want %d", len(m.offsets), outer+1),
		}
	}
	if len(m.indices) != len(m.values) {
		return &ValidationError{
			Field:    "indices",
			Position: -1,
			Reason:   fmt.Sprintf("length %d does not match %d values", len(m.indices), len(m.values)),
		}
	}
	if m.offsets[0] != 0 {
		return &ValidationError{Field: "offsets", Position: 0, Reason: "first offset must be 0"}
	}
	for o := range outer {
		if m.offsets[o+1] < m.offsets[o] {
			return &ValidationError{
				Field:    "offsets",
				Position: o + 1,
				Reason:   fmt.Sprintf("not monotonic (%d < %d)", m.offsets[o+1], m.offsets[o]),
			}
		}
	}
	if int(m.offsets[outer]) != len(m.indices) {
		return &ValidationError{
			Field:    "offsets",
			Position: outer,
			Reason:   fmt.Sprintf("last offset %d does not match nnz %d", m.offsets[outer], len(m.indices)),
		}
	}
	return nil
}

// Validate performs the full structural check, including inner index ordering and bounds.
// It is O(nnz) and is never called implicitly.
func (m *Matrix[T, I]) Validate() error {
	inner := m.Inner()
	for o := range m.Outer() {
		idx, _ := m.Vector(o)
		for p, k := range idx {
			if k < 0 || int(k) >= inner {
				return &ValidationError{
					Field:    "indices",
					Position: int(m.offsets[o]) + p,
					Reason:   fmt.Sprintf("index %d out of range [0, %d)", k, inner),
				}
			}
			if p > 0 && idx[p-1] >= k {
				return &ValidationError{
					Field:    "indices",
					Position: int(m.offsets[o]) + p,
					Reason:   fmt.Sprintf("indices not strictly ascending in %s vector %d", m.order, o),
				}
			}
		}
	}
	return nil
}

// Rows returns the number of rows.
func (m *Matrix[T, I]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix[T, I]) Cols() int { return m.cols }

// Order returns the storage order.
func (m *Matrix[T, I]) Order() Order { return m.order }

// NNZ returns the number of stored entries.
func (m *Matrix[T, I]) NNZ() int { return len(m.values) }

// Outer returns the number of outer vectors (rows for RowMajor, columns for ColMajor).
func (m *Matrix[T, I]) Outer() int {
	if m.order == ColMajor {
		return m.cols
	}
	return m.rows
}

// Inner returns the length of each outer vector.
func (m *Matrix[T, I]) Inner() int {
	if m.order == ColMajor {
		return m.rows
	}
	return m.cols
}

// Vector returns the inner indices and values of outer vector o.
// The returned slices alias the underlying arrays and must not be modified.
func (m *Matrix[T, I]) Vector(o int) ([]I, []T) {
	lo, hi := m.offsets[o], m.offsets[o+1]
	return m.indices[lo:hi:hi], m.values[lo:hi:hi]
}

// VectorNNZ returns the number of stored entries in outer vector o.
func (m *Matrix[T, I]) VectorNNZ(o int) int {
	return int(m.offsets[o+1] - m.offsets[o])
}

// Offsets returns the borrowed outer offset array.
func (m *Matrix[T, I]) Offsets() []I { return m.offsets }

// Indices returns the borrowed inner index array.
func (m *Matrix[T, I]) Indices() []I { return m.indices }

// Values returns the borrowed value array.
func (m *Matrix[T, I]) Values() []T { return m.values }

// Transpose returns the transpose as a view over the same arrays.
// A RowMajor m×n view becomes a ColMajor n×m view and vice versa.
func (m *Matrix[T, I]) Transpose() *Matrix[T, I] {
	order := ColMajor
	if m.order == ColMajor {
		order = RowMajor
	}
	return &Matrix[T, I]{
		rows:    m.cols,
		cols:    m.rows,
		order:   order,
		offsets: m.offsets,
		indices: m.indices,
		values:  m.values,
	}
}

// ToOrder returns the same matrix stored in the requested order.
// If the matrix already has that order it is returned as is; otherwise
// new arrays are allocated. Inner indices of the result are ascending.
func (m *Matrix[T, I]) ToOrder(order Order) (*Matrix[T, I], error) {
	if m.order == order {
		return m, nil
	}

	newOuter := m.Inner()
	if _, err := conv.IntToIndex[I](m.NNZ()); err != nil {
		return nil, err
	}

	offsets := make([]I, newOuter+1)
	for p, k := range m.indices {
		if k < 0 || int(k) >= newOuter {
			return nil, &ValidationError{
				Field:    "indices",
				Position: p,
				Reason:   fmt.Sprintf("index %d out of range [0, %d)", k, newOuter),
			}
		}
		offsets[k+1]++
	}
	for o := range newOuter {
		offsets[o+1] += offsets[o]
	}

	indices := make([]I, m.NNZ())
	values := make([]T, m.NNZ())
	next := make([]I, newOuter)
	copy(next, offsets[:newOuter])

	// Scanning old outer vectors in order keeps the new inner indices sorted.
	for o := range m.Outer() {
		idx, val := m.Vector(o)
		for p, k := range idx {
			dst := next[k]
			indices[dst] = I(o)
			values[dst] = val[p]
			next[k]++
		}
	}

	return &Matrix[T, I]{
		rows:    m.rows,
		cols:    m.cols,
		order:   order,
		offsets: offsets,
		indices: indices,
		values:  values,
	}, nil
}

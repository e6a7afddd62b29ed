package csr

import (
	"fmt"

	"github.com/hupe1980/sparsedot/internal/conv"
)

// FromDense builds a matrix in the given order from a dense row-major slice.
// Zero entries are not stored. All rows must have the same length.
func FromDense[T Number, I Index](dense [][]T, order Order) (*Matrix[T, I], error) {
	rows := len(dense)
	cols := 0
	if rows > 0 {
		cols = len(dense[0])
	}

	offsets := make([]I, rows+1)
	var indices []I
	var values []T
	for i, row := range dense {
		if len(row) != cols {
			return nil, &ValidationError{
				Field:    "dense",
				Position: i,
				Reason:   fmt.Sprintf("row length %d, want %d", len(row), cols),
			}
		}
		for j, v := range row {
			if v == 0 {
				continue
			}
			indices = append(indices, I(j))
			values = append(values, v)
		}
		nnz, err := conv.IntToIndex[I](len(values))
		if err != nil {
			return nil, err
		}
		offsets[i+1] = nnz
	}

	m, err := New(rows, cols, offsets, indices, values)
	if err != nil {
		return nil, err
	}
	return m.ToOrder(order)
}

// Dense expands the matrix into a row-major dense slice.
func (m *Matrix[T, I]) Dense() [][]T {
	out := make([][]T, m.rows)
	backing := make([]T, m.rows*m.cols)
	for i := range out {
		out[i] = backing[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
	}

	for o := range m.Outer() {
		idx, val := m.Vector(o)
		for p, k := range idx {
			if m.order == ColMajor {
				out[k][o] = val[p]
			} else {
				out[o][k] = val[p]
			}
		}
	}
	return out
}

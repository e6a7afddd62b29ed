package csr

import "github.com/hupe1980/sparsedot/internal/conv"

// Convert copies m into new value and index types, keeping its order.
// Values are converted with Go conversion semantics; narrowing the index type
// fails with an overflow error when nnz or the inner dimension does not fit.
func Convert[U Number, J Index, T Number, I Index](m *Matrix[T, I]) (*Matrix[U, J], error) {
	if _, err := conv.IntToIndex[J](m.NNZ()); err != nil {
		return nil, err
	}
	if _, err := conv.IntToIndex[J](m.Inner()); err != nil {
		return nil, err
	}

	offsets := make([]J, len(m.offsets))
	for i, o := range m.offsets {
		offsets[i] = J(o)
	}
	indices := make([]J, len(m.indices))
	for i, x := range m.indices {
		indices[i] = J(x)
	}
	values := make([]U, len(m.values))
	for i, v := range m.values {
		values[i] = U(v)
	}
	return newMatrix(m.order, m.rows, m.cols, offsets, indices, values)
}

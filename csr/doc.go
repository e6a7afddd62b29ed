// Package csr provides zero-copy views over compressed sparse matrices.
//
// A Matrix borrows three caller-owned arrays: outer offsets, inner indices and
// values. In RowMajor order (compressed-row) the outer dimension is the row and
// the inner index is the column. In ColMajor order (compressed-column) the outer
// dimension is the column and the inner index is the row.
//
//	rows=2, cols=3, RowMajor
//	[[1 0 2]      offsets = [0 2 3]
//	 [0 3 0]]     indices = [0 2 1]
//	              values  = [1 2 3]
//
// Constructing a view never copies or allocates. New and NewColMajor perform a
// cheap structural check (offset length, bounds and monotonicity); Validate
// additionally checks that inner indices are strictly ascending and in range.
//
// A RowMajor m×n matrix and a ColMajor n×m matrix share the same arrays, so
// Transpose is free. ToOrder converts between orders by allocating new arrays.
package csr

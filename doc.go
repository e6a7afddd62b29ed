// Package sparsedot multiplies two sparse matrices and keeps only the
// largest entries of every result row.
//
// Computing the full product of two large sparse matrices and then
// truncating it wastes memory on entries that are thrown away. sparsedot
// fuses the two steps: each row of C = A·B is produced against a bounded
// min-heap that holds at most topN entries strictly above a threshold, so
// the full row is never materialized.
//
// # Quick Start
//
//	a, _ := csr.New(rows, k, aOffsets, aIndices, aValues)
//	b, _ := csr.New(k, cols, bOffsets, bIndices, bValues)
//
//	res, _ := sparsedot.MultiplyTopN(a, b, 10, 0.0)
//	for i := range res.Matrix.Rows() {
//	    cols, vals := res.Matrix.Vector(i)
//	    fmt.Println(i, cols, vals)
//	}
//
// # Parallel Execution
//
// MultiplyTopNParallel splits the left rows into contiguous ranges, one per
// worker. By default ranges are balanced by estimated work rather than row
// count; see WithPartitionScheme. The concatenated result is identical to
// the serial call.
//
//	res, _ := sparsedot.MultiplyTopNParallel(a, b, 10, 0.0, runtime.GOMAXPROCS(0))
//
// # Strategies
//
// Three kernels enumerate the candidates of a row:
//
//   - StrategyAccumulate accumulates scaled right rows (needs a row-major B)
//   - StrategyScalar computes one sparse dot product per column of B
//   - StrategyBlock computes columns of B in blocks, see WithBlockSize
//
// StrategyAuto picks the kernel that reads B in the order it is stored.
// csr.Matrix.Transpose reinterprets a row-major matrix as a column-major one
// without copying.
//
// # Raw Arrays
//
// MultiplyTopNArrays and MultiplyTopNArraysParallel accept and return the
// (data, indices, offsets) triplets directly, for callers that keep their
// matrices in their own buffers.
//
// # Resource Limits
//
// WithMemoryLimit bounds the memory charged for the result and the kernel
// workspace; a call that would exceed it fails with ErrResourceExhausted.
// WithResourceController shares one budget, including a worker limit,
// between concurrent calls.
package sparsedot

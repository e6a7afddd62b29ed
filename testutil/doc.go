// Package testutil provides testing utilities for sparsedot.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded generator for random sparse matrices and a dense
// brute-force reference for the truncated product.
//
// # Random Matrices
//
//	rng := testutil.NewRNG(seed)
//	a := testutil.RandomCSR[float64, int32](rng, 100, 80, 0.05)
//	b := testutil.RandomCSC[float64, int32](rng, 80, 60, 0.05)
//
// # Ground Truth
//
//	want := testutil.ReferenceTopN(a, b, 10, 0.0)
//	got := testutil.ResultRows(data, indices, offsets)
//	err := testutil.VerifyTopN(a, b, 10, 0.0, got)
package testutil

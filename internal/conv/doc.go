// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between Go's int and the fixed-width index types used by
// compressed sparse matrices.
//
// Use cases:
//   - Validating untrusted data from disk (file headers, counts, offsets)
//   - Storing running nonzero counts in int32 or int64 row offsets
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices bounded by a slice length), use direct type casts instead to avoid overhead.
package conv

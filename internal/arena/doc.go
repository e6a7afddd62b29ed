// Package arena provides append-only output buffers for the multiply kernels.
//
// # Growth
//
// A Buffer grows by amortized doubling and never loses appended data. Every
// growth step is charged to an optional MemoryAcquirer before the new backing
// array is allocated, so a memory limit fails fast instead of over-allocating.
//
// # Ownership
//
// Finish transfers the backing array to the caller and leaves the buffer
// unusable. Charged memory stays accounted until Release is called, which
// lets a caller keep the accounting alive until the result has been handed over.
//
// # Concurrency Model
//
// Buffers and Builders are single-owner. The parallel kernel gives every
// worker its own Builder and only touches them again after the workers joined.
package arena

// Package resource implements the Controller for memory, worker and IO limits.
//
// The Controller governs three resource types:
//
//   - Memory: Track and limit output buffer memory (non-blocking, fail-fast)
//   - Workers: Cap the number of kernel workers running at once across calls
//   - IO: Rate-limit matrix file reads and writes
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory returns ErrMemoryLimitExceeded immediately
// if the limit would be exceeded; a multiply call that hits the limit fails as a
// whole:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//	res, err := sparsedot.MultiplyTopN(a, b, 10, 0, sparsedot.WithResourceController(rc))
//
// # Worker Limits
//
// A controller shared by concurrent parallel calls limits the total number of
// workers computing at the same time. Workers block until a slot is free:
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 8})
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource

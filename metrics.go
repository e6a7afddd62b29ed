package sparsedot

import (
	"sync/atomic"
	"time"
)

// MultiplyStats describes one multiply call.
type MultiplyStats struct {
	Rows       int // left rows
	Cols       int // right columns
	TopN       int
	Workers    int // partitions actually used
	Strategy   Strategy
	Converted  bool // an operand was converted to another order
	EmptyRows  int64
	Candidates int64 // structurally non-zero products
	Offered    int64 // candidates that passed the running floor
	Kept       int64 // entries in the result
	// ScratchBytes is the dense workspace of all workers.
	ScratchBytes int64
	// BytesReserved is the memory charged for result buffers.
	BytesReserved int64
	BufferGrows   int64
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    multiplyHistogram prometheus.Histogram
//	    keptCounter       prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordMultiply(stats sparsedot.MultiplyStats, duration time.Duration, err error) {
//	    p.multiplyHistogram.Observe(duration.Seconds())
//	    p.keptCounter.Add(float64(stats.Kept))
//	}
type MetricsCollector interface {
	// RecordMultiply is called after each multiply call.
	// stats is partially filled when err is non-nil.
	RecordMultiply(stats MultiplyStats, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMultiply(MultiplyStats, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	MultiplyCount      atomic.Int64
	MultiplyErrors     atomic.Int64
	MultiplyTotalNanos atomic.Int64
	Rows               atomic.Int64
	Candidates         atomic.Int64
	Kept               atomic.Int64
	Conversions        atomic.Int64
	PeakBytesReserved  atomic.Int64
}

// RecordMultiply implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMultiply(stats MultiplyStats, duration time.Duration, err error) {
	b.MultiplyCount.Add(1)
	b.MultiplyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MultiplyErrors.Add(1)
		return
	}
	b.Rows.Add(int64(stats.Rows))
	b.Candidates.Add(stats.Candidates)
	b.Kept.Add(stats.Kept)
	if stats.Converted {
		b.Conversions.Add(1)
	}
	for {
		peak := b.PeakBytesReserved.Load()
		if stats.BytesReserved <= peak || b.PeakBytesReserved.CompareAndSwap(peak, stats.BytesReserved) {
			break
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		MultiplyCount:     b.MultiplyCount.Load(),
		MultiplyErrors:    b.MultiplyErrors.Load(),
		MultiplyAvgNanos:  b.getAvgMultiplyNanos(),
		Rows:              b.Rows.Load(),
		Candidates:        b.Candidates.Load(),
		Kept:              b.Kept.Load(),
		Conversions:       b.Conversions.Load(),
		PeakBytesReserved: b.PeakBytesReserved.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgMultiplyNanos() int64 {
	count := b.MultiplyCount.Load()
	if count == 0 {
		return 0
	}
	return b.MultiplyTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	MultiplyCount     int64
	MultiplyErrors    int64
	MultiplyAvgNanos  int64
	Rows              int64
	Candidates        int64
	Kept              int64
	Conversions       int64
	PeakBytesReserved int64
}

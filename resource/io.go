package resource

import (
	"context"
	"io"
	"sync/atomic"
)

// meter charges transferred bytes to a Controller's IO budget and counts
// them. A nil Controller only counts.
type meter struct {
	ctx   context.Context
	rc    *Controller
	total atomic.Int64
}

// Bytes returns the number of bytes transferred so far.
func (m *meter) Bytes() int64 { return m.total.Load() }

// RateLimitedWriter throttles an io.Writer to the controller's IO limit.
// The budget for a write is taken before the bytes are passed on.
type RateLimitedWriter struct {
	meter
	w io.Writer
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{meter: meter{ctx: ctx, rc: rc}, w: w}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	n, err := w.w.Write(p)
	w.total.Add(int64(n))
	return n, err
}

// RateLimitedReader throttles an io.Reader to the controller's IO limit.
type RateLimitedReader struct {
	meter
	r io.Reader
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{meter: meter{ctx: ctx, rc: rc}, r: r}
}

// Read charges the bytes actually read, so short reads do not over-throttle.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.total.Add(int64(n))
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

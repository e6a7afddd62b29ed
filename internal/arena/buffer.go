package arena

import (
	"errors"
	"unsafe"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

var (
	// ErrFinished is returned when a finished buffer or builder is used again.
	ErrFinished = errors.New("arena: already finished")
	// ErrIncomplete is returned by Builder.Finish before every row was appended.
	ErrIncomplete = errors.New("arena: not all rows appended")
	// ErrTooManyRows is returned when more rows are appended than were declared.
	ErrTooManyRows = errors.New("arena: row count exceeded")
)

// minGrowth is the smallest capacity a growing buffer jumps to.
const minGrowth = 16

func sizeOf[T any](v T) uintptr { return unsafe.Sizeof(v) }

// Stats tracks buffer memory usage.
type Stats struct {
	BytesReserved int64 // bytes charged for backing arrays
	BytesUsed     int64 // bytes holding appended elements
	Grows         int64 // reallocations after the initial reservation
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.BytesReserved += other.BytesReserved
	s.BytesUsed += other.BytesUsed
	s.Grows += other.Grows
}

// Buffer is an append-only slice with accounted amortized growth.
type Buffer[T any] struct {
	data     []T
	acquirer MemoryAcquirer
	elemSize int64
	charged  int64
	grows    int64
	finished bool
}

// NewBuffer creates a buffer with room for reserve elements.
// acquirer may be nil.
func NewBuffer[T any](reserve int, acquirer MemoryAcquirer) (*Buffer[T], error) {
	var zero T
	b := &Buffer[T]{
		acquirer: acquirer,
		elemSize: int64(sizeOf(zero)),
	}
	if reserve > 0 {
		if err := b.charge(reserve); err != nil {
			return nil, err
		}
		b.data = make([]T, 0, reserve)
	}
	return b, nil
}

func (b *Buffer[T]) charge(elems int) error {
	bytes := int64(elems) * b.elemSize
	if b.acquirer != nil {
		if err := b.acquirer.AcquireMemory(bytes); err != nil {
			return err
		}
	}
	b.charged += bytes
	return nil
}

// Grow ensures room for n more elements without reallocation.
func (b *Buffer[T]) Grow(n int) error {
	if b.finished {
		return ErrFinished
	}
	need := len(b.data) + n
	if need <= cap(b.data) {
		return nil
	}

	newCap := max(2*cap(b.data), need, minGrowth)
	if err := b.charge(newCap - cap(b.data)); err != nil {
		return err
	}

	data := make([]T, len(b.data), newCap)
	copy(data, b.data)
	b.data = data
	b.grows++
	return nil
}

// Append adds v, growing the buffer if needed.
func (b *Buffer[T]) Append(v T) error {
	if len(b.data) == cap(b.data) {
		if err := b.Grow(1); err != nil {
			return err
		}
	} else if b.finished {
		return ErrFinished
	}
	b.data = append(b.data, v)
	return nil
}

// AppendSlice adds all of vs.
func (b *Buffer[T]) AppendSlice(vs []T) error {
	if err := b.Grow(len(vs)); err != nil {
		return err
	}
	b.data = append(b.data, vs...)
	return nil
}

// Len returns the number of appended elements.
func (b *Buffer[T]) Len() int { return len(b.data) }

// Cap returns the current capacity.
func (b *Buffer[T]) Cap() int { return cap(b.data) }

// View returns the appended elements. The slice is invalidated by the next append.
func (b *Buffer[T]) View() []T { return b.data }

// Finish transfers the appended elements to the caller.
// The buffer is unusable afterwards; its accounting is kept until Release.
func (b *Buffer[T]) Finish() ([]T, error) {
	if b.finished {
		return nil, ErrFinished
	}
	b.finished = true
	out := b.data
	b.data = nil
	return out, nil
}

// Release returns all charged memory to the acquirer. It is idempotent.
func (b *Buffer[T]) Release() {
	if b.charged == 0 {
		return
	}
	if b.acquirer != nil {
		b.acquirer.ReleaseMemory(b.charged)
	}
	b.charged = 0
}

// Stats returns the buffer's usage.
func (b *Buffer[T]) Stats() Stats {
	return Stats{
		BytesReserved: b.charged,
		BytesUsed:     int64(len(b.data)) * b.elemSize,
		Grows:         b.grows,
	}
}

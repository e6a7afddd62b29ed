package arena

import (
	"math"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/conv"
	"github.com/hupe1980/sparsedot/internal/topk"
)

// ReserveSize returns ceil(density * topN * rows), the number of entries to
// pre-reserve for a result. Non-positive density reserves nothing.
func ReserveSize(density float64, topN, rows int) int {
	if density <= 0 || topN <= 0 || rows <= 0 {
		return 0
	}
	n := math.Ceil(density * float64(topN) * float64(rows))
	// Never reserve more than the result can hold.
	if n > float64(topN)*float64(rows) {
		n = float64(topN) * float64(rows)
	}
	return int(n)
}

// Builder assembles a compressed-row result one row at a time.
type Builder[T csr.Number, I csr.Index] struct {
	data     *Buffer[T]
	indices  *Buffer[I]
	offsets  []I
	rows     int
	row      int
	nnz      int
	acquirer MemoryAcquirer
	offBytes int64
	finished bool
}

// NewBuilder creates a builder for rows rows with room for reserve entries.
func NewBuilder[T csr.Number, I csr.Index](rows, reserve int, acquirer MemoryAcquirer) (*Builder[T, I], error) {
	var zero I
	offBytes := int64(rows+1) * int64(sizeOf(zero))
	if acquirer != nil {
		if err := acquirer.AcquireMemory(offBytes); err != nil {
			return nil, err
		}
	}

	data, err := NewBuffer[T](reserve, acquirer)
	if err != nil {
		if acquirer != nil {
			acquirer.ReleaseMemory(offBytes)
		}
		return nil, err
	}
	indices, err := NewBuffer[I](reserve, acquirer)
	if err != nil {
		data.Release()
		if acquirer != nil {
			acquirer.ReleaseMemory(offBytes)
		}
		return nil, err
	}

	return &Builder[T, I]{
		data:     data,
		indices:  indices,
		offsets:  make([]I, rows+1),
		rows:     rows,
		acquirer: acquirer,
		offBytes: offBytes,
	}, nil
}

// AppendRow appends the next row. entries must be sorted by ascending Index.
func (b *Builder[T, I]) AppendRow(entries []topk.Entry[T, I]) error {
	if b.finished {
		return ErrFinished
	}
	if b.row >= b.rows {
		return ErrTooManyRows
	}

	end, err := conv.IntToIndex[I](b.nnz + len(entries))
	if err != nil {
		return err
	}
	if err := b.data.Grow(len(entries)); err != nil {
		return err
	}
	if err := b.indices.Grow(len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		// Capacity was reserved above, so these appends cannot fail.
		_ = b.indices.Append(e.Index)
		_ = b.data.Append(e.Value)
	}

	b.nnz += len(entries)
	b.row++
	b.offsets[b.row] = end
	return nil
}

// Rows returns the number of rows appended so far.
func (b *Builder[T, I]) Rows() int { return b.row }

// NNZ returns the number of entries appended so far.
func (b *Builder[T, I]) NNZ() int { return b.nnz }

// Finish transfers the three result arrays to the caller.
// The builder is unusable afterwards; call Release to drop its accounting.
func (b *Builder[T, I]) Finish() (data []T, indices []I, offsets []I, err error) {
	if b.finished {
		return nil, nil, nil, ErrFinished
	}
	if b.row != b.rows {
		return nil, nil, nil, ErrIncomplete
	}
	b.finished = true

	data, _ = b.data.Finish()
	indices, _ = b.indices.Finish()
	offsets = b.offsets
	b.offsets = nil
	return data, indices, offsets, nil
}

// Release returns all charged memory. It is idempotent.
func (b *Builder[T, I]) Release() {
	b.data.Release()
	b.indices.Release()
	if b.offBytes > 0 && b.acquirer != nil {
		b.acquirer.ReleaseMemory(b.offBytes)
	}
	b.offBytes = 0
}

// Stats returns the combined usage of the builder's buffers.
func (b *Builder[T, I]) Stats() Stats {
	s := b.data.Stats()
	s.Add(b.indices.Stats())
	s.BytesReserved += b.offBytes
	return s
}

package kernel

import (
	"context"
	"fmt"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/arena"
	"github.com/hupe1980/sparsedot/internal/partition"
	"github.com/hupe1980/sparsedot/internal/topk"
)

// checkEvery is the number of rows a worker processes between
// cancellation checks.
const checkEvery = 64

// WorkerLimiter bounds how many workers run at once.
type WorkerLimiter interface {
	AcquireWorker(ctx context.Context) error
	ReleaseWorker()
}

// Config carries the per-call parameters of a multiplication.
type Config struct {
	TopN      int
	Strategy  Strategy
	BlockSize int // 0 selects DefaultBlockSize
	Density   float64
	Scheme    partition.Scheme
	Acquirer  arena.MemoryAcquirer // may be nil
	Limiter   WorkerLimiter        // may be nil
}

// Stats counts the work done by one call.
type Stats struct {
	Rows         int64 // left rows processed
	EmptyRows    int64 // left rows without stored entries
	Candidates   int64 // structurally non-zero products
	Offered      int64 // candidates above the running floor
	Kept         int64 // entries in the result
	ScratchBytes int64 // dense workspace of all workers
	Buffer       arena.Stats
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rows += other.Rows
	s.EmptyRows += other.EmptyRows
	s.Candidates += other.Candidates
	s.Offered += other.Offered
	s.Kept += other.Kept
	s.ScratchBytes += other.ScratchBytes
	s.Buffer.Add(other.Buffer)
}

// workerStats keeps each worker's counters on its own cache line.
type workerStats struct {
	Stats
	_ cpu.CacheLinePad
}

// Result holds the three compressed-row arrays of the truncated product.
type Result[T csr.Number, I csr.Index] struct {
	Data       []T
	Indices    []I
	Offsets    []I
	Strategy   Strategy
	Partitions []partition.Range
	Stats      Stats
}

// check validates the operands and returns the resolved strategy.
func check[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], cfg Config) (Strategy, error) {
	if cfg.TopN < 1 {
		return Auto, ErrInvalidTopN
	}
	if cfg.BlockSize < 0 {
		return Auto, ErrInvalidBlockSize
	}
	if left.Order() != csr.RowMajor {
		return Auto, fmt.Errorf("%w: left operand must be row-major", ErrOrderMismatch)
	}
	if left.Cols() != right.Rows() {
		return Auto, &DimensionMismatchError{LeftCols: left.Cols(), RightRows: right.Rows()}
	}

	s := cfg.Strategy.Resolve(right.Order())
	if want := s.RightOrder(); right.Order() != want {
		return Auto, fmt.Errorf("%w: %s reads a %s-major right operand", ErrOrderMismatch, s, want)
	}
	return s, nil
}

// checkVector verifies that every index of a vector lies in [0, bound).
func checkVector[I csr.Index](operand string, o int, idx []I, bound int) error {
	for _, k := range idx {
		if k < 0 || int64(k) >= int64(bound) {
			return &IndexOutOfRangeError{Operand: operand, Vector: o, Index: int64(k), Bound: bound}
		}
	}
	return nil
}

// bitsetBytes is the storage of a bitset.BitSet holding n bits.
func bitsetBytes(n int) int64 { return int64((n+63)/64) * 8 }

func acquire(acq arena.MemoryAcquirer, bytes int64) error {
	if acq == nil || bytes <= 0 {
		return nil
	}
	return acq.AcquireMemory(bytes)
}

func release(acq arena.MemoryAcquirer, bytes int64) {
	if acq == nil || bytes <= 0 {
		return
	}
	acq.ReleaseMemory(bytes)
}

// run computes rows r of the product into b.
func run[T csr.Number, I csr.Index](ctx context.Context, s Strategy, left, right *csr.Matrix[T, I], r partition.Range, threshold T, cfg Config, b *arena.Builder[T, I], st *Stats) error {
	k := newRowKernel(s, left, right, cfg.BlockSize)
	scratch := k.scratchBytes()
	if err := acquire(cfg.Acquirer, scratch); err != nil {
		return err
	}
	defer release(cfg.Acquirer, scratch)
	st.ScratchBytes += scratch

	// A row never holds more entries than the right operand has columns.
	sel := topk.New[T, I](max(1, min(cfg.TopN, right.Cols())))

	for i := r.Start; i < r.End; i++ {
		if (i-r.Start)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		floor := sel.Reset(threshold)
		st.Rows++
		if left.VectorNNZ(i) == 0 {
			st.EmptyRows++
			if err := b.AppendRow(nil); err != nil {
				return err
			}
			continue
		}

		if err := k.row(i, sel, floor, st); err != nil {
			return err
		}
		if err := b.AppendRow(sel.Finalize()); err != nil {
			return err
		}
	}

	st.Kept += int64(b.NNZ())
	return nil
}

// MultiplyTopN computes the truncated product on the calling goroutine.
// right must already be stored in the order the strategy reads.
func MultiplyTopN[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], threshold T, cfg Config) (*Result[T, I], error) {
	s, err := check(left, right, cfg)
	if err != nil {
		return nil, err
	}

	rows := left.Rows()
	b, err := arena.NewBuilder[T, I](rows, arena.ReserveSize(cfg.Density, cfg.TopN, rows), cfg.Acquirer)
	if err != nil {
		return nil, err
	}
	defer b.Release()

	all := partition.Range{Start: 0, End: rows}
	var st Stats
	if err := run(context.Background(), s, left, right, all, threshold, cfg, b, &st); err != nil {
		return nil, err
	}
	st.Buffer = b.Stats()

	data, indices, offsets, err := b.Finish()
	if err != nil {
		return nil, err
	}
	return &Result[T, I]{
		Data:       data,
		Indices:    indices,
		Offsets:    offsets,
		Strategy:   s,
		Partitions: []partition.Range{all},
		Stats:      st,
	}, nil
}

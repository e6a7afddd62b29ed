package kernel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/arena"
	"github.com/hupe1980/sparsedot/internal/conv"
	"github.com/hupe1980/sparsedot/internal/partition"
)

// Partition splits the left rows into at most parts contiguous ranges.
// ByWork balances an estimate of each row's cost: with a row-major right
// operand a row costs one plus the sizes of the right rows it reaches,
// otherwise one plus its own stored entries.
func Partition[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], parts int, scheme partition.Scheme) []partition.Range {
	rows := left.Rows()
	if scheme == partition.ByRows {
		return partition.Rows(rows, parts)
	}

	prefix := make([]int64, rows+1)
	for i := range rows {
		cost := int64(1)
		if right.Order() == csr.RowMajor {
			idx, _ := left.Vector(i)
			for _, k := range idx {
				// Out of range indices are reported by the worker.
				if k >= 0 && int(k) < right.Outer() {
					cost += int64(right.VectorNNZ(int(k)))
				}
			}
		} else {
			cost += int64(left.VectorNNZ(i))
		}
		prefix[i+1] = prefix[i] + cost
	}
	return partition.Work(prefix, parts)
}

// MultiplyTopNParallel computes the truncated product with up to workers
// goroutines, each owning a contiguous range of left rows. The per-worker
// results are concatenated in row order, so the output is identical to
// MultiplyTopN for the same strategy. The first failing worker cancels the
// others and its error is returned.
func MultiplyTopNParallel[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], threshold T, workers int, cfg Config) (*Result[T, I], error) {
	if workers < 1 {
		return nil, ErrInvalidWorkers
	}
	s, err := check(left, right, cfg)
	if err != nil {
		return nil, err
	}

	ranges := Partition(left, right, workers, cfg.Scheme)
	if len(ranges) == 0 {
		ranges = []partition.Range{{Start: 0, End: 0}}
	}

	builders := make([]*arena.Builder[T, I], len(ranges))
	stats := make([]workerStats, len(ranges))
	defer func() {
		for _, b := range builders {
			if b != nil {
				b.Release()
			}
		}
	}()

	g, ctx := errgroup.WithContext(context.Background())
	for w, r := range ranges {
		g.Go(func() error {
			if cfg.Limiter != nil {
				if err := cfg.Limiter.AcquireWorker(ctx); err != nil {
					return err
				}
				defer cfg.Limiter.ReleaseWorker()
			}

			b, err := arena.NewBuilder[T, I](r.Len(), arena.ReserveSize(cfg.Density, cfg.TopN, r.Len()), cfg.Acquirer)
			if err != nil {
				return err
			}
			builders[w] = b

			if err := run(ctx, s, left, right, r, threshold, cfg, b, &stats[w].Stats); err != nil {
				return err
			}
			stats[w].Buffer = b.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result[T, I]{Strategy: s, Partitions: ranges}
	for w := range stats {
		res.Stats.Add(stats[w].Stats)
	}

	merged, err := merge(left.Rows(), builders, cfg.Acquirer)
	if err != nil {
		return nil, err
	}
	res.Data, res.Indices, res.Offsets = merged.data, merged.indices, merged.offsets
	res.Stats.Buffer.Add(merged.stats)
	return res, nil
}

type merged[T csr.Number, I csr.Index] struct {
	data    []T
	indices []I
	offsets []I
	stats   arena.Stats
}

// merge concatenates the worker results in partition order, shifting each
// worker's offsets by the entries of the workers before it.
func merge[T csr.Number, I csr.Index](rows int, builders []*arena.Builder[T, I], acq arena.MemoryAcquirer) (*merged[T, I], error) {
	total := 0
	for _, b := range builders {
		total += b.NNZ()
	}
	if _, err := conv.IntToIndex[I](total); err != nil {
		return nil, err
	}

	data, err := arena.NewBuffer[T](total, acq)
	if err != nil {
		return nil, err
	}
	defer data.Release()
	indices, err := arena.NewBuffer[I](total, acq)
	if err != nil {
		return nil, err
	}
	defer indices.Release()
	offsets, err := arena.NewBuffer[I](rows+1, acq)
	if err != nil {
		return nil, err
	}
	defer offsets.Release()

	if err := offsets.Append(0); err != nil {
		return nil, err
	}
	var base I
	for _, b := range builders {
		d, idx, off, err := b.Finish()
		if err != nil {
			return nil, err
		}
		if err := data.AppendSlice(d); err != nil {
			return nil, err
		}
		if err := indices.AppendSlice(idx); err != nil {
			return nil, err
		}
		for _, o := range off[1:] {
			if err := offsets.Append(base + o); err != nil {
				return nil, err
			}
		}
		base += off[len(off)-1]
		b.Release()
	}

	out := &merged[T, I]{}
	out.stats = data.Stats()
	out.stats.Add(indices.Stats())
	out.stats.Add(offsets.Stats())
	out.data, _ = data.Finish()
	out.indices, _ = indices.Finish()
	out.offsets, _ = offsets.Finish()
	return out, nil
}

package sparsedot

import (
	"fmt"
	"time"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/kernel"
	"github.com/hupe1980/sparsedot/internal/partition"
)

// Strategy selects how the candidates of a result row are enumerated.
type Strategy = kernel.Strategy

const (
	// StrategyAuto picks the strategy matching the right operand's order.
	StrategyAuto = kernel.Auto
	// StrategyAccumulate scales right rows into a dense row accumulator.
	StrategyAccumulate = kernel.Accumulate
	// StrategyScalar computes one sparse dot product per right column.
	StrategyScalar = kernel.Scalar
	// StrategyBlock computes right columns in blocks of WithBlockSize columns.
	StrategyBlock = kernel.Block
)

// DefaultBlockSize is the block width used by StrategyBlock unless
// WithBlockSize overrides it.
const DefaultBlockSize = kernel.DefaultBlockSize

// ParseStrategy maps "auto", "accumulate", "scalar" or "block" to a Strategy.
func ParseStrategy(name string) (Strategy, error) { return kernel.ParseStrategy(name) }

// PartitionScheme selects how parallel workers split the left rows.
type PartitionScheme = partition.Scheme

const (
	// PartitionByWork balances the estimated work of each range.
	PartitionByWork = partition.ByWork
	// PartitionByRows gives every worker the same number of rows.
	PartitionByRows = partition.ByRows
)

// ParsePartitionScheme maps "work" or "rows" to a PartitionScheme.
func ParsePartitionScheme(name string) (PartitionScheme, error) { return partition.ParseScheme(name) }

// Result is the truncated product C = top-N(A·B).
type Result[T csr.Number, I csr.Index] struct {
	// Matrix is the row-major result. Row i keeps at most topN entries,
	// each above the threshold, in ascending column order.
	Matrix *csr.Matrix[T, I]
	// TotalNonzero is the number of stored entries across all rows.
	TotalNonzero int
	Stats        MultiplyStats
}

// MultiplyTopN computes, for every row of left·right, the topN largest
// entries strictly above threshold. It runs on the calling goroutine.
//
// left must be row-major. right may be stored in either order; see
// WithStrategy. Neither operand is modified.
func MultiplyTopN[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], topN int, threshold T, opts ...Option) (*Result[T, I], error) {
	return multiply(left, right, topN, threshold, 0, opts)
}

// MultiplyTopNParallel is MultiplyTopN split across up to workers goroutines.
// The result is identical to the serial call with the same options.
func MultiplyTopNParallel[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], topN int, threshold T, workers int, opts ...Option) (*Result[T, I], error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	return multiply(left, right, topN, threshold, workers, opts)
}

// MultiplyTopNArrays multiplies two operands given as raw compressed-row
// arrays. The left operand has leftRows rows; the right operand has
// len(rightOffsets)-1 rows and rightCols columns. The returned arrays
// describe a leftRows x rightCols compressed-row matrix.
func MultiplyTopNArrays[T csr.Number, I csr.Index](
	topN, leftRows, rightCols int, threshold T,
	leftData []T, leftOffsets, leftIndices []I,
	rightData []T, rightOffsets, rightIndices []I,
	opts ...Option,
) (data []T, indices, offsets []I, err error) {
	left, right, err := fromArrays(leftRows, rightCols, leftData, leftOffsets, leftIndices, rightData, rightOffsets, rightIndices)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := MultiplyTopN(left, right, topN, threshold, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return res.Matrix.Values(), res.Matrix.Indices(), res.Matrix.Offsets(), nil
}

// MultiplyTopNArraysParallel is MultiplyTopNArrays split across up to
// workers goroutines. It also returns the total number of stored entries.
func MultiplyTopNArraysParallel[T csr.Number, I csr.Index](
	topN, leftRows, rightCols int, threshold T,
	leftData []T, leftOffsets, leftIndices []I,
	rightData []T, rightOffsets, rightIndices []I,
	workers int,
	opts ...Option,
) (totalNonzero int, data []T, indices, offsets []I, err error) {
	left, right, err := fromArrays(leftRows, rightCols, leftData, leftOffsets, leftIndices, rightData, rightOffsets, rightIndices)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	res, err := MultiplyTopNParallel(left, right, topN, threshold, workers, opts...)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	return res.TotalNonzero, res.Matrix.Values(), res.Matrix.Indices(), res.Matrix.Offsets(), nil
}

func fromArrays[T csr.Number, I csr.Index](
	leftRows, rightCols int,
	leftData []T, leftOffsets, leftIndices []I,
	rightData []T, rightOffsets, rightIndices []I,
) (*csr.Matrix[T, I], *csr.Matrix[T, I], error) {
	if len(rightOffsets) == 0 {
		return nil, nil, fmt.Errorf("%w: right offsets are empty", ErrMalformedMatrix)
	}
	inner := len(rightOffsets) - 1

	left, err := csr.New(leftRows, inner, leftOffsets, leftIndices, leftData)
	if err != nil {
		return nil, nil, translateError(fmt.Errorf("left: %w", err))
	}
	right, err := csr.New(inner, rightCols, rightOffsets, rightIndices, rightData)
	if err != nil {
		return nil, nil, translateError(fmt.Errorf("right: %w", err))
	}
	return left, right, nil
}

// multiply runs the serial driver when workers is zero.
func multiply[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], topN int, threshold T, workers int, opts []Option) (*Result[T, I], error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrMalformedMatrix)
	}

	stats := MultiplyStats{Rows: left.Rows(), Cols: right.Cols(), TopN: topN}
	logger := o.logger.WithTopN(topN)
	if workers > 0 {
		logger = logger.WithWorkers(workers)
	}

	start := time.Now()
	res, err := run(left, right, topN, threshold, workers, o, logger, &stats)
	err = translateError(err)
	duration := time.Since(start)

	o.metricsCollector.RecordMultiply(stats, duration, err)
	logger.LogMultiply(stats, duration, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func run[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], topN int, threshold T, workers int, o options, logger *Logger, stats *MultiplyStats) (*Result[T, I], error) {
	if left.Order() != csr.RowMajor {
		converted, err := left.ToOrder(csr.RowMajor)
		if err != nil {
			return nil, err
		}
		logger.LogConversion("left", left.Order(), csr.RowMajor, left.NNZ())
		left = converted
		stats.Converted = true
	}

	s := o.strategy.Resolve(right.Order())
	if want := s.RightOrder(); right.Order() != want {
		converted, err := right.ToOrder(want)
		if err != nil {
			return nil, err
		}
		logger.LogConversion("right", right.Order(), want, right.NNZ())
		right = converted
		stats.Converted = true
	}
	stats.Strategy = s

	cfg := kernel.Config{
		TopN:      topN,
		Strategy:  s,
		BlockSize: o.blockSize,
		Density:   o.density,
		Scheme:    o.scheme,
	}
	if o.controller != nil {
		cfg.Acquirer = o.controller
		cfg.Limiter = o.controller
	}

	var (
		out *kernel.Result[T, I]
		err error
	)
	if workers > 0 {
		out, err = kernel.MultiplyTopNParallel(left, right, threshold, workers, cfg)
	} else {
		out, err = kernel.MultiplyTopN(left, right, threshold, cfg)
	}
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		logger.WithStrategy(s).LogPartitions(o.scheme, out.Partitions)
	}

	stats.Workers = len(out.Partitions)
	stats.EmptyRows = out.Stats.EmptyRows
	stats.Candidates = out.Stats.Candidates
	stats.Offered = out.Stats.Offered
	stats.Kept = out.Stats.Kept
	stats.ScratchBytes = out.Stats.ScratchBytes
	stats.BytesReserved = out.Stats.Buffer.BytesReserved
	stats.BufferGrows = out.Stats.Buffer.Grows

	m, err := csr.New(left.Rows(), right.Cols(), out.Offsets, out.Indices, out.Data)
	if err != nil {
		return nil, err
	}
	return &Result[T, I]{
		Matrix:       m,
		TotalNonzero: m.NNZ(),
		Stats:        *stats,
	}, nil
}

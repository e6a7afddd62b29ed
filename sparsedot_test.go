package sparsedot

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/resource"
	"github.com/hupe1980/sparsedot/testutil"
)

var allStrategies = []Strategy{StrategyAuto, StrategyAccumulate, StrategyScalar, StrategyBlock}

func mustDense[T csr.Number, I csr.Index](t *testing.T, dense [][]T) *csr.Matrix[T, I] {
	t.Helper()
	m, err := csr.FromDense[T, I](dense, csr.RowMajor)
	require.NoError(t, err)
	return m
}

func resultRows[T csr.Number, I csr.Index](res *Result[T, I]) [][]testutil.Entry[T] {
	m := res.Matrix
	return testutil.ResultRows(m.Values(), m.Indices(), m.Offsets())
}

func TestMultiplyTopN(t *testing.T) {
	left := mustDense[float64, int32](t, [][]float64{
		{1, 0, 2},
		{0, 3, 0},
	})
	identity := mustDense[float64, int32](t, [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})

	for _, s := range allStrategies {
		t.Run(s.String(), func(t *testing.T) {
			res, err := MultiplyTopN(left, identity, 1, 0, WithStrategy(s))
			require.NoError(t, err)
			assert.Equal(t, [][]testutil.Entry[float64]{
				{{Col: 2, Value: 2}},
				{{Col: 1, Value: 3}},
			}, resultRows(res))
			assert.Equal(t, 2, res.TotalNonzero)
			assert.Equal(t, 2, res.Matrix.Rows())
			assert.Equal(t, 3, res.Matrix.Cols())
			assert.Equal(t, csr.RowMajor, res.Matrix.Order())
			assert.Equal(t, s.Resolve(csr.RowMajor), res.Stats.Strategy)
			assert.Equal(t, s == StrategyScalar || s == StrategyBlock, res.Stats.Converted)
		})
	}
}

func TestMultiplyTopN_Properties(t *testing.T) {
	rng := testutil.NewRNG(2024)

	for round := range 8 {
		m, k, n := 1+rng.Intn(30), 1+rng.Intn(30), 1+rng.Intn(80)
		left := testutil.RandomCSR[float64, int64](rng, m, k, 0.2)
		right := testutil.RandomCSR[float64, int64](rng, k, n, 0.15)
		topN := 1 + rng.Intn(8)
		threshold := rng.Float64()

		want := testutil.ReferenceTopN(left, right, topN, threshold)
		for _, s := range allStrategies {
			res, err := MultiplyTopN(left, right, topN, threshold, WithStrategy(s), WithBlockSize(1+rng.Intn(16)))
			require.NoError(t, err)

			offsets := res.Matrix.Offsets()
			for i := range m {
				require.LessOrEqual(t, int(offsets[i+1]-offsets[i]), topN)
				cols, vals := res.Matrix.Vector(i)
				for p := range cols {
					require.Greater(t, vals[p], threshold)
					if p > 0 {
						require.Greater(t, cols[p], cols[p-1])
					}
				}
			}
			require.Equal(t, want, resultRows(res), "round=%d strategy=%s", round, s)
		}
	}
}

func TestMultiplyTopN_Untruncated(t *testing.T) {
	rng := testutil.NewRNG(77)
	left := testutil.RandomCSR[float32, int32](rng, 20, 15, 0.3)
	right := testutil.RandomCSR[float32, int32](rng, 15, 25, 0.3)

	// topN of at least the column count keeps every candidate.
	full := testutil.ReferenceTopN(left, right, right.Cols(), -1000)
	for _, row := range full {
		require.LessOrEqual(t, len(row), right.Cols())
	}

	res, err := MultiplyTopN(left, right, right.Cols(), -1000)
	require.NoError(t, err)
	assert.Equal(t, full, resultRows(res))

	dense := left.Dense()
	for i, row := range resultRows(res) {
		nonzeroLeft := 0
		for _, v := range dense[i] {
			if v != 0 {
				nonzeroLeft++
			}
		}
		if nonzeroLeft == 0 {
			assert.Empty(t, row)
		}
	}
}

func TestMultiplyTopN_ThresholdAboveMax(t *testing.T) {
	left := mustDense[int64, int64](t, [][]int64{{1, 2}, {3, 4}})
	right := mustDense[int64, int64](t, [][]int64{{5, 6}, {7, 8}})

	res, err := MultiplyTopN(left, right, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0}, res.Matrix.Offsets())
	assert.Zero(t, res.TotalNonzero)
}

func TestMultiplyTopN_EmptyRow(t *testing.T) {
	left := mustDense[float64, int32](t, [][]float64{{0, 0}, {1, 1}})
	right := mustDense[float64, int32](t, [][]float64{{9, 9, 9}, {9, 9, 9}})

	for _, s := range allStrategies {
		res, err := MultiplyTopN(left, right, 3, 0, WithStrategy(s))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Matrix.VectorNNZ(0))
		assert.Equal(t, 3, res.Matrix.VectorNNZ(1))
		assert.Equal(t, int64(1), res.Stats.EmptyRows)
	}
}

func TestMultiplyTopN_Idempotent(t *testing.T) {
	rng := testutil.NewRNG(5)
	left := testutil.RandomCSR[float64, int32](rng, 60, 40, 0.1)
	right := testutil.RandomCSR[float64, int32](rng, 40, 50, 0.1)
	before := append([]float64(nil), left.Values()...)

	first, err := MultiplyTopNParallel(left, right, 4, 0, 3)
	require.NoError(t, err)
	second, err := MultiplyTopNParallel(left, right, 4, 0, 3)
	require.NoError(t, err)

	assert.Equal(t, first.Matrix.Values(), second.Matrix.Values())
	assert.Equal(t, first.Matrix.Indices(), second.Matrix.Indices())
	assert.Equal(t, first.Matrix.Offsets(), second.Matrix.Offsets())
	assert.Equal(t, before, left.Values())
}

func TestMultiplyTopNParallel(t *testing.T) {
	rng := testutil.NewRNG(31)
	left := testutil.RandomCSR[float32, int64](rng, 150, 70, 0.06)
	right := testutil.RandomCSR[float32, int64](rng, 70, 120, 0.06)

	for _, s := range allStrategies {
		serial, err := MultiplyTopN(left, right, 5, 0, WithStrategy(s))
		require.NoError(t, err)

		for _, scheme := range []PartitionScheme{PartitionByWork, PartitionByRows} {
			for _, workers := range []int{1, 4, 16} {
				par, err := MultiplyTopNParallel(left, right, 5, 0, workers,
					WithStrategy(s), WithPartitionScheme(scheme), WithDensity(0.5))
				require.NoError(t, err)
				require.Equal(t, serial.Matrix.Values(), par.Matrix.Values())
				require.Equal(t, serial.Matrix.Indices(), par.Matrix.Indices())
				require.Equal(t, serial.Matrix.Offsets(), par.Matrix.Offsets())
				require.Equal(t, serial.TotalNonzero, par.TotalNonzero)
				require.LessOrEqual(t, par.Stats.Workers, workers)
			}
		}
	}
}

func TestMultiplyTopN_ColMajorRight(t *testing.T) {
	rng := testutil.NewRNG(8)
	left := testutil.RandomCSR[float64, int32](rng, 30, 20, 0.2)
	right := testutil.RandomCSC[float64, int32](rng, 20, 40, 0.2)

	res, err := MultiplyTopN(left, right, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, StrategyScalar, res.Stats.Strategy)
	assert.False(t, res.Stats.Converted)
	assert.Equal(t, testutil.ReferenceTopN(left, right, 3, 0), resultRows(res))

	// A column-major left operand is converted.
	res, err = MultiplyTopN(left.Transpose().Transpose(), right, 3, 0)
	require.NoError(t, err)
	assert.False(t, res.Stats.Converted)

	leftCol, err := left.ToOrder(csr.ColMajor)
	require.NoError(t, err)
	res, err = MultiplyTopN(leftCol, right, 3, 0)
	require.NoError(t, err)
	assert.True(t, res.Stats.Converted)
	assert.Equal(t, testutil.ReferenceTopN(left, right, 3, 0), resultRows(res))
}

func TestMultiplyTopN_Errors(t *testing.T) {
	left := mustDense[float64, int32](t, [][]float64{{1, 2}})
	right := mustDense[float64, int32](t, [][]float64{{1}, {1}})

	t.Run("topN", func(t *testing.T) {
		_, err := MultiplyTopN(left, right, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidTopN)
	})

	t.Run("workers", func(t *testing.T) {
		_, err := MultiplyTopNParallel(left, right, 1, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidWorkers)
	})

	t.Run("block size", func(t *testing.T) {
		_, err := MultiplyTopN(left, right, 1, 0, WithBlockSize(0))
		assert.ErrorIs(t, err, ErrInvalidBlockSize)
	})

	t.Run("dimensions", func(t *testing.T) {
		_, err := MultiplyTopN(left, left, 1, 0)
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.LeftCols)
		assert.Equal(t, 1, dm.RightRows)
	})

	t.Run("nil operand", func(t *testing.T) {
		_, err := MultiplyTopN(nil, right, 1, 0)
		assert.ErrorIs(t, err, ErrMalformedMatrix)
	})

	t.Run("index out of range", func(t *testing.T) {
		bad, err := csr.New(1, 2, []int32{0, 1}, []int32{7}, []float64{1})
		require.NoError(t, err)
		_, err = MultiplyTopNParallel(bad, right, 1, 0, 2)
		var oor *ErrIndexOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, "left", oor.Operand)
		assert.Equal(t, int64(7), oor.Index)
	})

	t.Run("memory limit", func(t *testing.T) {
		rng := testutil.NewRNG(1)
		a := testutil.RandomCSR[float64, int64](rng, 200, 50, 0.3)
		b := testutil.RandomCSR[float64, int64](rng, 50, 200, 0.3)
		_, err := MultiplyTopN(a, b, 50, -100, WithMemoryLimit(4096))
		assert.ErrorIs(t, err, ErrResourceExhausted)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	})
}

func TestMultiplyTopN_SharedController(t *testing.T) {
	rng := testutil.NewRNG(4)
	left := testutil.RandomCSR[float64, int32](rng, 100, 30, 0.2)
	right := testutil.RandomCSR[float64, int32](rng, 30, 60, 0.2)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20, MaxWorkers: 2})
	res, err := MultiplyTopNParallel(left, right, 5, 0, 8, WithResourceController(rc))
	require.NoError(t, err)
	assert.Positive(t, res.TotalNonzero)
	assert.Zero(t, rc.MemoryUsage())
	assert.Positive(t, rc.PeakMemoryUsage())
}

func TestMultiplyTopNArrays(t *testing.T) {
	// left = [[1,0,2],[0,3,0]], right = 3x3 identity
	data, indices, offsets, err := MultiplyTopNArrays(1, 2, 3, 0.0,
		[]float64{1, 2, 3}, []int32{0, 2, 3}, []int32{0, 2, 1},
		[]float64{1, 1, 1}, []int32{0, 1, 2, 3}, []int32{0, 1, 2},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, data)
	assert.Equal(t, []int32{2, 1}, indices)
	assert.Equal(t, []int32{0, 1, 2}, offsets)

	total, pdata, pindices, poffsets, err := MultiplyTopNArraysParallel(1, 2, 3, 0.0,
		[]float64{1, 2, 3}, []int32{0, 2, 3}, []int32{0, 2, 1},
		[]float64{1, 1, 1}, []int32{0, 1, 2, 3}, []int32{0, 1, 2},
		2,
	)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, data, pdata)
	assert.Equal(t, indices, pindices)
	assert.Equal(t, offsets, poffsets)

	t.Run("malformed", func(t *testing.T) {
		_, _, _, err := MultiplyTopNArrays(1, 2, 3, 0.0,
			[]float64{1, 2, 3}, []int32{0, 2}, []int32{0, 2, 1},
			[]float64{1, 1, 1}, []int32{0, 1, 2, 3}, []int32{0, 1, 2},
		)
		assert.ErrorIs(t, err, ErrMalformedMatrix)

		_, _, _, _, err = MultiplyTopNArraysParallel[float64, int32](1, 0, 0, 0, nil, []int32{0}, nil, nil, nil, nil, 1)
		assert.ErrorIs(t, err, ErrMalformedMatrix)
	})
}

func TestOptions(t *testing.T) {
	left := mustDense[float64, int32](t, [][]float64{{1, 2}})
	right := mustDense[float64, int32](t, [][]float64{{1, 3}, {1, 0}})

	t.Run("metrics", func(t *testing.T) {
		mc := &BasicMetricsCollector{}
		_, err := MultiplyTopN(left, right, 1, 0, WithMetricsCollector(mc))
		require.NoError(t, err)
		_, err = MultiplyTopN(left, right, 0, 0, WithMetricsCollector(mc))
		require.Error(t, err)

		stats := mc.GetStats()
		assert.Equal(t, int64(2), stats.MultiplyCount)
		assert.Equal(t, int64(1), stats.MultiplyErrors)
		assert.Equal(t, int64(1), stats.Rows)
		assert.Equal(t, int64(1), stats.Kept)
		assert.Equal(t, int64(2), stats.Candidates)
	})

	t.Run("logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		_, err := MultiplyTopNParallel(left, right, 1, 0, 2, WithLogger(logger), WithStrategy(StrategyBlock))
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "operand converted")
		assert.Contains(t, out, "rows partitioned")
		assert.Contains(t, out, "multiply completed")
		assert.Contains(t, out, "top_n=1")
	})

	t.Run("nil logger and collector", func(t *testing.T) {
		_, err := MultiplyTopN(left, right, 1, 0, WithLogger(nil), WithMetricsCollector(nil), nil)
		require.NoError(t, err)
	})

	t.Run("failure logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, nil))
		_, err := MultiplyTopN(left, left, 1, 0, WithLogger(logger))
		require.Error(t, err)
		assert.True(t, strings.Contains(buf.String(), `"msg":"multiply failed"`))
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("block")
	require.NoError(t, err)
	assert.Equal(t, StrategyBlock, s)

	_, err = ParseStrategy("magic")
	assert.Error(t, err)
}

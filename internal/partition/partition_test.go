package partition

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCover(t *testing.T, rows int, ranges []Range) {
	t.Helper()
	next := 0
	for _, r := range ranges {
		require.Equal(t, next, r.Start)
		require.Greater(t, r.End, r.Start)
		next = r.End
	}
	require.Equal(t, rows, next)
}

func TestRows(t *testing.T) {
	tests := []struct {
		rows, parts int
		want        []Range
	}{
		{10, 3, []Range{{0, 4}, {4, 7}, {7, 10}}},
		{4, 4, []Range{{0, 1}, {1, 2}, {2, 3}, {3, 4}}},
		{3, 8, []Range{{0, 1}, {1, 2}, {2, 3}}},
		{5, 0, []Range{{0, 5}}},
		{0, 4, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rows(tt.rows, tt.parts), "rows=%d parts=%d", tt.rows, tt.parts)
	}
}

func TestWork(t *testing.T) {
	t.Run("heavy tail row isolated", func(t *testing.T) {
		prefix := []int64{0, 1, 2, 3, 103}
		assert.Equal(t, []Range{{0, 3}, {3, 4}}, Work(prefix, 2))
	})

	t.Run("uniform cost matches rows", func(t *testing.T) {
		prefix := make([]int64, 9)
		for i := range 8 {
			prefix[i+1] = prefix[i] + 5
		}
		assert.Equal(t, Rows(8, 4), Work(prefix, 4))
	})

	t.Run("zero cost falls back to rows", func(t *testing.T) {
		assert.Equal(t, Rows(6, 3), Work(make([]int64, 7), 3))
	})

	t.Run("more parts than rows", func(t *testing.T) {
		ranges := Work([]int64{0, 10, 20}, 5)
		requireCover(t, 2, ranges)
		assert.Len(t, ranges, 2)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Work([]int64{0}, 3))
	})

	t.Run("random covers", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for round := 0; round < 50; round++ {
			rows := 1 + rng.Intn(300)
			prefix := make([]int64, rows+1)
			for i := range rows {
				cost := int64(rng.Intn(20))
				if rng.Intn(10) == 0 {
					cost *= 100
				}
				prefix[i+1] = prefix[i] + cost
			}
			parts := 1 + rng.Intn(16)
			ranges := Work(prefix, parts)
			requireCover(t, rows, ranges)
			assert.Len(t, ranges, min(parts, rows))
		}
	})
}

func TestScheme_String(t *testing.T) {
	assert.Equal(t, "work", ByWork.String())
	assert.Equal(t, "rows", ByRows.String())
	assert.Equal(t, "unknown", Scheme(9).String())
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("rows")
	require.NoError(t, err)
	assert.Equal(t, ByRows, s)

	s, err = ParseScheme("work")
	require.NoError(t, err)
	assert.Equal(t, ByWork, s)

	_, err = ParseScheme("random")
	assert.Error(t, err)
}

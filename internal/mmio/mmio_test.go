package mmio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/testutil"
)

func TestRead(t *testing.T) {
	t.Run("general real with duplicates", func(t *testing.T) {
		in := `%%MatrixMarket matrix coordinate real general
% a comment
3 4 5

2 4 1.5
1 1 2
2 1 -1
2 4 0.5
3 2 7e1
`
		m, h, err := Read(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, FieldReal, h.Field)
		assert.Equal(t, General, h.Symmetry)
		assert.Equal(t, 5, h.Entries)

		require.NoError(t, m.Validate())
		assert.Equal(t, csr.RowMajor, m.Order())
		assert.Equal(t, [][]float64{
			{2, 0, 0, 0},
			{-1, 0, 0, 2},
			{0, 70, 0, 0},
		}, m.Dense())
	})

	t.Run("symmetric pattern", func(t *testing.T) {
		in := `%%MatrixMarket matrix coordinate pattern symmetric
3 3 3
1 1
3 1
3 2
`
		m, _, err := Read(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, [][]float64{
			{1, 0, 1},
			{0, 0, 1},
			{1, 1, 0},
		}, m.Dense())
	})

	t.Run("skew symmetric integer", func(t *testing.T) {
		in := "%%MatrixMarket matrix coordinate integer skew-symmetric\n2 2 1\n2 1 3\n"
		m, _, err := Read(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0, -3}, {3, 0}}, m.Dense())
	})

	t.Run("empty rows", func(t *testing.T) {
		in := "%%MatrixMarket matrix coordinate real general\n4 2 1\n3 2 1\n"
		m, _, err := Read(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 0, 0, 1, 1}, m.Offsets())
	})
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"banner", "%%MatrixMarket vector coordinate real general\n1 1 0\n"},
		{"array format", "%%MatrixMarket matrix array real general\n1 1\n1\n"},
		{"complex", "%%MatrixMarket matrix coordinate complex general\n1 1 0\n"},
		{"hermitian", "%%MatrixMarket matrix coordinate real hermitian\n1 1 0\n"},
		{"missing size", "%%MatrixMarket matrix coordinate real general\n"},
		{"short size", "%%MatrixMarket matrix coordinate real general\n1 1\n"},
		{"negative size", "%%MatrixMarket matrix coordinate real general\n-1 1 0\n"},
		{"not square", "%%MatrixMarket matrix coordinate real symmetric\n2 3 0\n"},
		{"truncated", "%%MatrixMarket matrix coordinate real general\n2 2 2\n1 1 1\n"},
		{"row range", "%%MatrixMarket matrix coordinate real general\n2 2 1\n3 1 1\n"},
		{"col range", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 0 1\n"},
		{"bad value", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 1 x\n"},
		{"bad integer", "%%MatrixMarket matrix coordinate integer general\n2 2 1\n1 1 1.5\n"},
		{"field count", "%%MatrixMarket matrix coordinate pattern general\n2 2 1\n1 1 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestWrite(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		rng := testutil.NewRNG(5)
		m := testutil.RandomCSR[float64, int64](rng, 25, 17, 0.2)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, m))

		got, h, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, FieldReal, h.Field)
		assert.Equal(t, m.Offsets(), got.Offsets())
		assert.Equal(t, m.Indices(), got.Indices())
		assert.Equal(t, m.Values(), got.Values())
	})

	t.Run("column major integer", func(t *testing.T) {
		m, err := csr.FromDense[int32, int32]([][]int32{{0, 4}, {-2, 0}}, csr.ColMajor)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, m))
		assert.Equal(t, "%%MatrixMarket matrix coordinate integer general\n2 2 2\n2 1 -2\n1 2 4\n", buf.String())
	})

	t.Run("float32 shortest form", func(t *testing.T) {
		m, err := csr.FromDense[float32, int32]([][]float32{{0.1}}, csr.RowMajor)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, m))
		assert.Contains(t, buf.String(), "1 1 0.1\n")
	})
}

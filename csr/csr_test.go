package csr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := New(2, 3, []int32{0, 2, 3}, []int32{0, 2, 1}, []float64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 2, m.Rows())
		assert.Equal(t, 3, m.Cols())
		assert.Equal(t, 3, m.NNZ())
		assert.Equal(t, RowMajor, m.Order())
		require.NoError(t, m.Validate())

		idx, val := m.Vector(0)
		assert.Equal(t, []int32{0, 2}, idx)
		assert.Equal(t, []float64{1, 2}, val)
		assert.Equal(t, 1, m.VectorNNZ(1))
	})

	t.Run("zero copy", func(t *testing.T) {
		values := []float32{1, 2}
		m, err := New(1, 2, []int64{0, 2}, []int64{0, 1}, values)
		require.NoError(t, err)

		values[0] = 9
		_, val := m.Vector(0)
		assert.Equal(t, float32(9), val[0])
	})

	tests := []struct {
		name    string
		rows    int
		offsets []int32
		indices []int32
		values  []float64
	}{
		{"offset length", 2, []int32{0, 1}, []int32{0}, []float64{1}},
		{"non monotonic", 2, []int32{0, 2, 1}, []int32{0, 1}, []float64{1, 2}},
		{"first offset", 1, []int32{1, 1}, []int32{0}, []float64{1}},
		{"last offset", 1, []int32{0, 1}, []int32{0, 1}, []float64{1, 2}},
		{"value length", 1, []int32{0, 2}, []int32{0, 1}, []float64{1}},
		{"negative rows", -1, []int32{0}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, 3, tt.offsets, tt.indices, tt.values)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)

			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("unsorted", func(t *testing.T) {
		m, err := New(1, 3, []int32{0, 2}, []int32{2, 0}, []float64{1, 2})
		require.NoError(t, err)
		assert.ErrorIs(t, m.Validate(), ErrMalformed)
	})

	t.Run("duplicate", func(t *testing.T) {
		m, err := New(1, 3, []int32{0, 2}, []int32{1, 1}, []float64{1, 2})
		require.NoError(t, err)
		assert.ErrorIs(t, m.Validate(), ErrMalformed)
	})

	t.Run("out of range", func(t *testing.T) {
		m, err := New(1, 3, []int32{0, 1}, []int32{3}, []float64{1})
		require.NoError(t, err)
		assert.ErrorIs(t, m.Validate(), ErrMalformed)
	})
}

func TestTranspose(t *testing.T) {
	m, err := FromDense[float64, int32]([][]float64{
		{1, 0, 2},
		{0, 3, 0},
	}, RowMajor)
	require.NoError(t, err)

	tr := m.Transpose()
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 2, tr.Cols())
	assert.Equal(t, ColMajor, tr.Order())
	assert.Equal(t, [][]float64{{1, 0}, {0, 3}, {2, 0}}, tr.Dense())
	assert.Equal(t, m.Dense(), tr.Transpose().Dense())
}

func TestToOrder(t *testing.T) {
	dense := [][]float64{
		{1, 0, 2, 0},
		{0, 0, 0, 0},
		{4, 5, 0, 6},
	}
	m, err := FromDense[float64, int64](dense, RowMajor)
	require.NoError(t, err)

	col, err := m.ToOrder(ColMajor)
	require.NoError(t, err)
	assert.Equal(t, ColMajor, col.Order())
	assert.Equal(t, 3, col.Rows())
	assert.Equal(t, 4, col.Cols())
	assert.Equal(t, []int64{0, 2, 3, 4, 5}, col.Offsets())
	assert.Equal(t, []int64{0, 2, 2, 0, 2}, col.Indices())
	assert.Equal(t, []float64{1, 4, 5, 2, 6}, col.Values())
	require.NoError(t, col.Validate())
	assert.Equal(t, dense, col.Dense())

	back, err := col.ToOrder(RowMajor)
	require.NoError(t, err)
	assert.Equal(t, m.Offsets(), back.Offsets())
	assert.Equal(t, m.Indices(), back.Indices())
	assert.Equal(t, m.Values(), back.Values())

	same, err := m.ToOrder(RowMajor)
	require.NoError(t, err)
	assert.Same(t, m, same)
}

func TestFromDense(t *testing.T) {
	t.Run("ragged", func(t *testing.T) {
		_, err := FromDense[int64, int32]([][]int64{{1, 2}, {3}}, RowMajor)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty", func(t *testing.T) {
		m, err := FromDense[float32, int32](nil, RowMajor)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Rows())
		assert.Equal(t, []int32{0}, m.Offsets())
	})
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "row", RowMajor.String())
	assert.Equal(t, "col", ColMajor.String())
	assert.Equal(t, "Order(7)", Order(7).String())
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("CSC")
	require.NoError(t, err)
	assert.Equal(t, ColMajor, o)

	o, err = ParseOrder("row")
	require.NoError(t, err)
	assert.Equal(t, RowMajor, o)

	_, err = ParseOrder("diag")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	m, err := FromDense[float64, int64]([][]float64{
		{1.5, 0, 2},
		{0, -3.25, 0},
	}, ColMajor)
	require.NoError(t, err)

	f32, err := Convert[float32, int32](m)
	require.NoError(t, err)
	assert.Equal(t, ColMajor, f32.Order())
	assert.Equal(t, [][]float32{{1.5, 0, 2}, {0, -3.25, 0}}, f32.Dense())
	require.NoError(t, f32.Validate())

	i64, err := Convert[int64, int64](m)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -3, 2}, i64.Values())
}

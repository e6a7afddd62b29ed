package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToIndex(t *testing.T) {
	t.Run("int32 valid", func(t *testing.T) {
		got, err := IntToIndex[int32](123)
		require.NoError(t, err)
		assert.Equal(t, int32(123), got)
	})

	t.Run("int32 max", func(t *testing.T) {
		got, err := IntToIndex[int32](math.MaxInt32)
		require.NoError(t, err)
		assert.Equal(t, int32(math.MaxInt32), got)
	})

	t.Run("int32 overflow", func(t *testing.T) {
		if math.MaxInt == math.MaxInt32 {
			t.Skip("32-bit platform")
		}
		_, err := IntToIndex[int32](math.MaxInt32 + 1)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := IntToIndex[int64](-1)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("int64 large", func(t *testing.T) {
		got, err := IntToIndex[int64](math.MaxInt)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt), got)
	})
}

func TestMaxOf(t *testing.T) {
	type rowID int32

	assert.Equal(t, math.MaxInt32, MaxOf[int32]())
	assert.Equal(t, math.MaxInt32, MaxOf[rowID]())
	assert.Equal(t, math.MaxInt, MaxOf[int64]())
}

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(7)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got)

	_, err = IntToUint32(-1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)
}

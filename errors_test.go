package sparsedot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/conv"
	"github.com/hupe1980/sparsedot/internal/kernel"
	"github.com/hupe1980/sparsedot/resource"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"topN", kernel.ErrInvalidTopN, ErrInvalidTopN},
		{"workers", kernel.ErrInvalidWorkers, ErrInvalidWorkers},
		{"block size", kernel.ErrInvalidBlockSize, ErrInvalidBlockSize},
		{"order", fmt.Errorf("%w: detail", kernel.ErrOrderMismatch), ErrInvalidOrder},
		{"malformed", &csr.ValidationError{Field: "offsets", Position: 1, Reason: "decreasing"}, ErrMalformedMatrix},
		{"memory", resource.ErrMemoryLimitExceeded, ErrResourceExhausted},
		{"overflow", conv.ErrOverflow, ErrIndexOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.in)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.in)
		})
	}

	t.Run("dimension mismatch", func(t *testing.T) {
		in := &kernel.DimensionMismatchError{LeftCols: 3, RightRows: 4}
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, translateError(in), &dm)
		assert.Equal(t, 3, dm.LeftCols)
		assert.Equal(t, 4, dm.RightRows)
		assert.Same(t, in, errors.Unwrap(dm))
		assert.Contains(t, dm.Error(), "left has 3 columns")
	})

	t.Run("index out of range", func(t *testing.T) {
		in := &kernel.IndexOutOfRangeError{Operand: "right", Vector: 2, Index: 9, Bound: 5}
		var oor *ErrIndexOutOfRange
		require.ErrorAs(t, translateError(in), &oor)
		assert.Equal(t, "right", oor.Operand)
		assert.Equal(t, 2, oor.Vector)
		assert.Equal(t, int64(9), oor.Index)
		assert.Equal(t, 5, oor.Bound)
	})

	t.Run("passthrough", func(t *testing.T) {
		other := errors.New("other")
		assert.Same(t, other, translateError(other))
	})
}

package kernel

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/topk"
)

// blockKernel scatters the left row into a dense workspace and computes
// the product against blockSize right columns at a time. Only the
// structural non-zeros of each block are offered to the selector.
type blockKernel[T csr.Number, I csr.Index] struct {
	left      *csr.Matrix[T, I]
	right     *csr.Matrix[T, I] // column-major
	blockSize int

	dense   []T            // scattered left row, valid where present is set
	present *bitset.BitSet // inner indices stored in the current row
	sums    []T            // block product, valid at the positions in cols
	cols    []int          // non-zero columns of the current block, ascending
}

func newBlockKernel[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], blockSize int) *blockKernel[T, I] {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	inner := right.Rows()
	return &blockKernel[T, I]{
		left:      left,
		right:     right,
		blockSize: blockSize,
		dense:     make([]T, inner),
		present:   bitset.New(uint(inner)),
		sums:      make([]T, blockSize),
		cols:      make([]int, 0, blockSize),
	}
}

func (k *blockKernel[T, I]) scratchBytes() int64 {
	var zero T
	size := int64(unsafe.Sizeof(zero))
	return int64(len(k.dense))*size + int64(len(k.sums))*size +
		int64(cap(k.cols))*int64(unsafe.Sizeof(0)) + bitsetBytes(len(k.dense))
}

func (k *blockKernel[T, I]) row(i int, sel *topk.Selector[T, I], floor T, st *Stats) error {
	inner := k.right.Rows()
	aIdx, aVal := k.left.Vector(i)
	if err := checkVector("left", i, aIdx, inner); err != nil {
		return err
	}

	for p, r := range aIdx {
		k.dense[r] = aVal[p]
		k.present.Set(uint(r))
	}
	defer func() {
		for _, r := range aIdx {
			k.present.Clear(uint(r))
		}
	}()

	var candidates, offered int64
	cols := k.right.Cols()
	// Full blocks first, then the trailing partial block.
	for lo := 0; lo < cols; lo += k.blockSize {
		hi := min(lo+k.blockSize, cols)

		k.cols = k.cols[:0]
		for j := lo; j < hi; j++ {
			bIdx, bVal := k.right.Vector(j)
			var sum T
			hit := false
			for q, r := range bIdx {
				if r < 0 || int(r) >= inner {
					return &IndexOutOfRangeError{Operand: "right", Vector: j, Index: int64(r), Bound: inner}
				}
				if k.present.Test(uint(r)) {
					sum += T(k.dense[r] * bVal[q])
					hit = true
				}
			}
			if hit {
				k.sums[j-lo] = sum
				k.cols = append(k.cols, j)
			}
		}

		for _, j := range k.cols {
			candidates++
			if v := k.sums[j-lo]; v > floor {
				offered++
				floor = sel.Offer(I(j), v)
			}
		}
	}

	st.Candidates += candidates
	st.Offered += offered
	return nil
}

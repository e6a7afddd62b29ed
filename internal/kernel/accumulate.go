package kernel

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/topk"
)

// accumulateKernel is Gustavson's row-by-row product. For each stored
// left entry (i, k) it scales right row k into a dense accumulator and
// records which columns were touched.
type accumulateKernel[T csr.Number, I csr.Index] struct {
	left  *csr.Matrix[T, I]
	right *csr.Matrix[T, I] // row-major

	sums    []T            // accumulator, valid where touched is set
	touched *bitset.BitSet // columns reached by the current row
	cols    []I            // touched columns in first-touch order
}

func newAccumulateKernel[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I]) *accumulateKernel[T, I] {
	n := right.Cols()
	return &accumulateKernel[T, I]{
		left:    left,
		right:   right,
		sums:    make([]T, n),
		touched: bitset.New(uint(n)),
		cols:    make([]I, 0, n),
	}
}

func (k *accumulateKernel[T, I]) scratchBytes() int64 {
	var zero T
	var idx I
	n := int64(len(k.sums))
	return n*int64(unsafe.Sizeof(zero)) + n*int64(unsafe.Sizeof(idx)) + bitsetBytes(len(k.sums))
}

func (k *accumulateKernel[T, I]) row(i int, sel *topk.Selector[T, I], floor T, st *Stats) error {
	inner, cols := k.right.Rows(), k.right.Cols()
	aIdx, aVal := k.left.Vector(i)
	if err := checkVector("left", i, aIdx, inner); err != nil {
		return err
	}

	k.cols = k.cols[:0]
	defer func() {
		for _, j := range k.cols {
			k.touched.Clear(uint(j))
		}
	}()

	for p, r := range aIdx {
		a := aVal[p]
		bIdx, bVal := k.right.Vector(int(r))
		for q, j := range bIdx {
			if j < 0 || int(j) >= cols {
				return &IndexOutOfRangeError{Operand: "right", Vector: int(r), Index: int64(j), Bound: cols}
			}
			if !k.touched.Test(uint(j)) {
				k.touched.Set(uint(j))
				k.sums[j] = 0
				k.cols = append(k.cols, j)
			}
			k.sums[j] += T(a * bVal[q])
		}
	}

	var offered int64
	for _, j := range k.cols {
		if v := k.sums[j]; v > floor {
			offered++
			floor = sel.Offer(j, v)
		}
	}

	st.Candidates += int64(len(k.cols))
	st.Offered += offered
	return nil
}

package kernel

import (
	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/topk"
)

// scalarKernel computes one sparse dot product per right column.
type scalarKernel[T csr.Number, I csr.Index] struct {
	left  *csr.Matrix[T, I]
	right *csr.Matrix[T, I] // column-major
}

func (k *scalarKernel[T, I]) scratchBytes() int64 { return 0 }

func (k *scalarKernel[T, I]) row(i int, sel *topk.Selector[T, I], floor T, st *Stats) error {
	aIdx, aVal := k.left.Vector(i)
	if err := checkVector("left", i, aIdx, k.right.Rows()); err != nil {
		return err
	}
	first, last := aIdx[0], aIdx[len(aIdx)-1]

	var candidates, offered int64
	for j := range k.right.Cols() {
		bIdx, bVal := k.right.Vector(j)
		// Disjoint index ranges cannot intersect.
		if len(bIdx) == 0 || bIdx[0] > last || bIdx[len(bIdx)-1] < first {
			continue
		}
		v, ok := dot(aIdx, aVal, bIdx, bVal)
		if !ok {
			continue
		}
		candidates++
		if v > floor {
			offered++
			floor = sel.Offer(I(j), v)
		}
	}

	st.Candidates += candidates
	st.Offered += offered
	return nil
}

// dot merges two ascending index lists. ok is false when they share no index.
func dot[T csr.Number, I csr.Index](aIdx []I, aVal []T, bIdx []I, bVal []T) (sum T, ok bool) {
	p, q := 0, 0
	for p < len(aIdx) && q < len(bIdx) {
		switch ka, kb := aIdx[p], bIdx[q]; {
		case ka == kb:
			sum += T(aVal[p] * bVal[q])
			ok = true
			p++
			q++
		case ka < kb:
			p++
		default:
			q++
		}
	}
	return sum, ok
}

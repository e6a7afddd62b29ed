package kernel

import (
	"fmt"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/topk"
)

// Strategy selects how candidates of a row are enumerated.
type Strategy uint8

const (
	// Auto picks Accumulate for a row-major right operand and Scalar otherwise.
	Auto Strategy = iota
	// Accumulate is the Gustavson row accumulator.
	Accumulate
	// Scalar computes one sparse dot product per right column.
	Scalar
	// Block computes right columns in fixed-size blocks.
	Block
)

// DefaultBlockSize is the number of right columns per block.
const DefaultBlockSize = 64

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Accumulate:
		return "accumulate"
	case Scalar:
		return "scalar"
	case Block:
		return "block"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "auto":
		return Auto, nil
	case "accumulate":
		return Accumulate, nil
	case "scalar":
		return Scalar, nil
	case "block":
		return Block, nil
	default:
		return Auto, fmt.Errorf("unknown strategy %q", name)
	}
}

// Resolve replaces Auto with the strategy that fits the right operand's
// storage order without conversion.
func (s Strategy) Resolve(right csr.Order) Strategy {
	if s != Auto {
		return s
	}
	if right == csr.RowMajor {
		return Accumulate
	}
	return Scalar
}

// RightOrder is the storage order the strategy reads the right operand in.
func (s Strategy) RightOrder() csr.Order {
	if s == Scalar || s == Block {
		return csr.ColMajor
	}
	return csr.RowMajor
}

// rowKernel enumerates the candidates of one left row.
type rowKernel[T csr.Number, I csr.Index] interface {
	// row offers the candidates of left row i to sel, starting from floor.
	row(i int, sel *topk.Selector[T, I], floor T, st *Stats) error
	// scratchBytes is the size of the kernel's per-worker workspace.
	scratchBytes() int64
}

func newRowKernel[T csr.Number, I csr.Index](s Strategy, left, right *csr.Matrix[T, I], blockSize int) rowKernel[T, I] {
	switch s {
	case Block:
		return newBlockKernel(left, right, blockSize)
	case Accumulate:
		return newAccumulateKernel(left, right)
	default:
		return &scalarKernel[T, I]{left: left, right: right}
	}
}

package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is wrapped by every conversion failure.
var ErrOverflow = errors.New("integer overflow")

// Signed is the set of fixed-width signed integers used as sparse indices.
type Signed interface {
	~int32 | ~int64
}

// MaxOf returns the largest value representable by I as an int.
func MaxOf[I Signed]() int {
	m := I(math.MaxInt32)
	if m+1 < m {
		return math.MaxInt32
	}
	return math.MaxInt
}

// IntToIndex converts int to a fixed-width signed index safely.
func IntToIndex[I Signed](v int) (I, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d cannot be converted to index (negative)", ErrOverflow, v)
	}
	if v > MaxOf[I]() {
		return 0, fmt.Errorf("%w: %d cannot be converted to index (too large)", ErrOverflow, v)
	}
	return I(v), nil
}

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint32 (negative)", ErrOverflow, v)
	}
	// On 64-bit systems, int can exceed uint32 max; on 32-bit, this is always false
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint32 (too large)", ErrOverflow, v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d cannot be converted to int (too large)", ErrOverflow, v)
	}
	return int(v), nil
}

package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/sparsedot/csr"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// value draws a non-zero magnitude in [1, 10) with a random sign.
// Integer types truncate it to a small integer, float types keep the fraction.
func value[T csr.Number](rnd *rand.Rand) T {
	x := float64(1+rnd.Intn(9)) + rnd.Float64()
	if rnd.Intn(4) == 0 {
		x = -x
	}
	return T(x)
}

// RandomCSR generates a row-major rows x cols matrix where each entry is
// present with probability density. Stored values are never zero.
func RandomCSR[T csr.Number, I csr.Index](r *RNG, rows, cols int, density float64) *csr.Matrix[T, I] {
	offsets, indices, values := randomCompressed[T, I](r, rows, cols, density)
	m, err := csr.New(rows, cols, offsets, indices, values)
	if err != nil {
		panic(err)
	}
	return m
}

// RandomCSC generates a column-major rows x cols matrix.
func RandomCSC[T csr.Number, I csr.Index](r *RNG, rows, cols int, density float64) *csr.Matrix[T, I] {
	offsets, indices, values := randomCompressed[T, I](r, cols, rows, density)
	m, err := csr.NewColMajor(rows, cols, offsets, indices, values)
	if err != nil {
		panic(err)
	}
	return m
}

func randomCompressed[T csr.Number, I csr.Index](r *RNG, outer, inner int, density float64) ([]I, []I, []T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offsets := make([]I, outer+1)
	var indices []I
	var values []T
	for o := range outer {
		for k := range inner {
			if r.rand.Float64() < density {
				indices = append(indices, I(k))
				values = append(values, value[T](r.rand))
			}
		}
		offsets[o+1] = I(len(indices))
	}
	return offsets, indices, values
}

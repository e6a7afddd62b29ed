package kernel

import (
	"runtime"
	"testing"

	"github.com/hupe1980/sparsedot/testutil"
)

func BenchmarkMultiplyTopN(b *testing.B) {
	rng := testutil.NewRNG(1)
	left := testutil.RandomCSR[float32, int32](rng, 2000, 1000, 0.01)
	right := testutil.RandomCSR[float32, int32](rng, 1000, 3000, 0.01)

	for _, s := range strategies {
		r, err := right.ToOrder(s.RightOrder())
		if err != nil {
			b.Fatal(err)
		}
		cfg := Config{TopN: 10, Strategy: s}

		b.Run(s.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := MultiplyTopN(left, r, 0, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(s.String()+"/parallel", func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := MultiplyTopNParallel(left, r, 0, runtime.GOMAXPROCS(0), cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

package testutil

import (
	"fmt"
	"slices"

	"github.com/hupe1980/sparsedot/csr"
)

// Entry is one kept (column, value) pair of a result row.
type Entry[T csr.Number] struct {
	Col   int
	Value T
}

// candidates computes the dense product row by row. Sums are accumulated
// in ascending inner index order, over structurally non-zero pairs only,
// which makes them bit-identical to the kernels.
func candidates[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I]) ([][]T, [][]bool) {
	a := left.Dense()
	b := right.Dense()
	n := right.Cols()

	sums := make([][]T, len(a))
	hits := make([][]bool, len(a))
	for i, row := range a {
		sums[i] = make([]T, n)
		hits[i] = make([]bool, n)
		for j := range n {
			var sum T
			for k, av := range row {
				if av == 0 || b[k][j] == 0 {
					continue
				}
				sum += T(av * b[k][j])
				hits[i][j] = true
			}
			sums[i][j] = sum
		}
	}
	return sums, hits
}

// ReferenceTopN computes the truncated product by brute force. Ties are
// broken toward the lower column, so callers comparing against a kernel
// should use inputs without equal candidate values or VerifyTopN.
func ReferenceTopN[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], topN int, threshold T) [][]Entry[T] {
	sums, hits := candidates(left, right)

	out := make([][]Entry[T], len(sums))
	for i := range sums {
		var row []Entry[T]
		for j, v := range sums[i] {
			if hits[i][j] && v > threshold {
				row = append(row, Entry[T]{Col: j, Value: v})
			}
		}
		slices.SortStableFunc(row, func(x, y Entry[T]) int {
			switch {
			case x.Value > y.Value:
				return -1
			case x.Value < y.Value:
				return 1
			}
			return 0
		})
		if len(row) > topN {
			row = row[:topN]
		}
		slices.SortFunc(row, func(x, y Entry[T]) int { return x.Col - y.Col })
		out[i] = row
	}
	return out
}

// ResultRows splits compressed-row result arrays into per-row entries.
func ResultRows[T csr.Number, I csr.Index](data []T, indices, offsets []I) [][]Entry[T] {
	if len(offsets) == 0 {
		return nil
	}
	out := make([][]Entry[T], len(offsets)-1)
	for i := range out {
		var row []Entry[T]
		for p := offsets[i]; p < offsets[i+1]; p++ {
			row = append(row, Entry[T]{Col: int(indices[p]), Value: data[p]})
		}
		out[i] = row
	}
	return out
}

// VerifyTopN checks got against the dense product without depending on
// how ties were broken: every kept value must be exact and above the
// threshold, each row must keep min(topN, candidates) entries in ascending
// column order, and no dropped candidate may exceed a kept one.
func VerifyTopN[T csr.Number, I csr.Index](left, right *csr.Matrix[T, I], topN int, threshold T, got [][]Entry[T]) error {
	sums, hits := candidates(left, right)
	if len(got) != len(sums) {
		return fmt.Errorf("rows: got %d, want %d", len(got), len(sums))
	}

	for i, row := range got {
		eligible := 0
		for j, v := range sums[i] {
			if hits[i][j] && v > threshold {
				eligible++
			}
		}
		if want := min(topN, eligible); len(row) != want {
			return fmt.Errorf("row %d: got %d entries, want %d", i, len(row), want)
		}

		kept := make(map[int]bool, len(row))
		var lowest T
		for p, e := range row {
			if p > 0 && e.Col <= row[p-1].Col {
				return fmt.Errorf("row %d: columns not strictly ascending at %d", i, p)
			}
			if e.Col < 0 || e.Col >= len(sums[i]) || !hits[i][e.Col] {
				return fmt.Errorf("row %d: column %d is not a candidate", i, e.Col)
			}
			if e.Value != sums[i][e.Col] {
				return fmt.Errorf("row %d col %d: got %v, want %v", i, e.Col, e.Value, sums[i][e.Col])
			}
			if !(e.Value > threshold) {
				return fmt.Errorf("row %d col %d: %v not above threshold", i, e.Col, e.Value)
			}
			if p == 0 || e.Value < lowest {
				lowest = e.Value
			}
			kept[e.Col] = true
		}
		if len(row) == 0 {
			continue
		}
		for j, v := range sums[i] {
			if hits[i][j] && !kept[j] && v > threshold && v > lowest {
				return fmt.Errorf("row %d: dropped col %d (%v) beats kept %v", i, j, v, lowest)
			}
		}
	}
	return nil
}

// Package partition splits the rows of a multiply into contiguous worker ranges.
package partition

import (
	"fmt"
	"sort"
)

// Scheme selects how row ranges are balanced.
type Scheme uint8

const (
	// ByWork balances the prefix sum of per-row cost estimates.
	ByWork Scheme = iota
	// ByRows gives every worker the same number of rows.
	ByRows
)

func (s Scheme) String() string {
	switch s {
	case ByWork:
		return "work"
	case ByRows:
		return "rows"
	default:
		return "unknown"
	}
}

// ParseScheme maps "work" or "rows" to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "work":
		return ByWork, nil
	case "rows":
		return ByRows, nil
	default:
		return 0, fmt.Errorf("partition: unknown scheme %q", name)
	}
}

// Range is the half-open row range [Start, End) owned by one worker.
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int { return r.End - r.Start }

// Rows splits [0, rows) into at most parts equal row spans.
// Every returned range is non-empty; parts is clamped to [1, rows].
func Rows(rows, parts int) []Range {
	if rows <= 0 {
		return nil
	}
	parts = clamp(parts, rows)

	out := make([]Range, 0, parts)
	base, extra := rows/parts, rows%parts
	start := 0
	for p := range parts {
		n := base
		if p < extra {
			n++
		}
		out = append(out, Range{Start: start, End: start + n})
		start += n
	}
	return out
}

// Work splits rows so that every range carries roughly the same cost.
// prefix has len rows+1, prefix[0] == 0 and prefix[i+1]-prefix[i] is the
// non-negative cost of row i. Every returned range is non-empty.
func Work(prefix []int64, parts int) []Range {
	rows := len(prefix) - 1
	if rows <= 0 {
		return nil
	}
	parts = clamp(parts, rows)
	total := prefix[rows]
	if total <= 0 {
		return Rows(rows, parts)
	}

	out := make([]Range, 0, parts)
	start := 0
	for p := 1; p < parts && start < rows; p++ {
		// Leave at least one row for each remaining range.
		remaining := parts - p
		target := total * int64(p) / int64(parts)

		// First boundary whose prefix reaches the target.
		end := sort.Search(rows+1, func(i int) bool { return prefix[i] >= target })
		end = max(end, start+1)
		end = min(end, rows-remaining)
		if end <= start {
			continue
		}
		out = append(out, Range{Start: start, End: end})
		start = end
	}
	if start < rows {
		out = append(out, Range{Start: start, End: rows})
	}
	return out
}

func clamp(parts, rows int) int {
	if parts < 1 {
		return 1
	}
	if parts > rows {
		return rows
	}
	return parts
}

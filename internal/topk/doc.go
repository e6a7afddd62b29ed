// Package topk implements the bounded selector that keeps the N largest
// candidates of one output row.
//
// The selector is an array-backed binary min-heap with a floor. Candidates at
// or below the floor are rejected without touching the heap; once the heap is
// full the floor tracks the smallest retained value, so callers can prune
// candidates before offering them:
//
//	floor := sel.Reset(threshold)
//	for j, v := range candidates {
//	    if v > floor {
//	        floor = sel.Offer(j, v)
//	    }
//	}
//	for _, e := range sel.Finalize() { // ascending Index
//	    ...
//	}
package topk

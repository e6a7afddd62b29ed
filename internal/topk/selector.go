package topk

import "github.com/hupe1980/sparsedot/csr"

// Entry is one retained candidate.
type Entry[T csr.Number, I csr.Index] struct {
	Index I // output column
	Value T
}

// Selector keeps the largest values offered since the last Reset.
// It is not safe for concurrent use; each worker owns one.
type Selector[T csr.Number, I csr.Index] struct {
	entries []Entry[T, I] // min-heap over entries[:count]
	count   int
	floor   T
}

// New creates a selector that retains at most capacity entries.
// capacity must be positive.
func New[T csr.Number, I csr.Index](capacity int) *Selector[T, I] {
	if capacity <= 0 {
		panic("topk: capacity must be positive")
	}
	return &Selector[T, I]{
		entries: make([]Entry[T, I], capacity),
	}
}

// Reset clears the retained entries and sets the floor.
// It returns the floor as the current minimum acceptable value.
func (s *Selector[T, I]) Reset(floor T) T {
	s.count = 0
	s.floor = floor
	return floor
}

// Offer considers a candidate and returns the value the next candidate must exceed.
func (s *Selector[T, I]) Offer(index I, value T) T {
	if value <= s.floor {
		return s.floor
	}

	if s.count < len(s.entries) {
		s.entries[s.count] = Entry[T, I]{Index: index, Value: value}
		s.siftUp(s.count)
		s.count++
		if s.count == len(s.entries) {
			s.floor = s.entries[0].Value
		}
		return s.floor
	}

	// Full: the floor equals the root, so value beats the root here.
	if value > s.entries[0].Value {
		s.entries[0] = Entry[T, I]{Index: index, Value: value}
		s.siftDown(0)
		s.floor = s.entries[0].Value
	}
	return s.floor
}

// Finalize orders the retained entries by ascending Index and returns them.
// The slice aliases internal storage and is valid until the next Reset.
// The heap order is destroyed, so Finalize must be the last call before Reset.
func (s *Selector[T, I]) Finalize() []Entry[T, I] {
	e := s.entries[:s.count]
	// Insertion sort: count is bounded by the user-chosen top N.
	for i := 1; i < len(e); i++ {
		cur := e[i]
		j := i - 1
		for j >= 0 && e[j].Index > cur.Index {
			e[j+1] = e[j]
			j--
		}
		e[j+1] = cur
	}
	return e
}

// Len returns the number of retained entries.
func (s *Selector[T, I]) Len() int { return s.count }

// Cap returns the capacity.
func (s *Selector[T, I]) Cap() int { return len(s.entries) }

// Floor returns the current floor.
func (s *Selector[T, I]) Floor() T { return s.floor }

func (s *Selector[T, I]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if s.entries[i].Value >= s.entries[parent].Value {
			break
		}
		s.entries[i], s.entries[parent] = s.entries[parent], s.entries[i]
		i = parent
	}
}

func (s *Selector[T, I]) siftDown(i int) {
	n := s.count
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && s.entries[right].Value < s.entries[left].Value {
			child = right
		}
		if s.entries[child].Value >= s.entries[i].Value {
			break
		}
		s.entries[i], s.entries[child] = s.entries[child], s.entries[i]
		i = child
	}
}

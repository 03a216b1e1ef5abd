package hset

import "github.com/norensa/libspl-go/container/htable"

// MultiSet is a single-threaded hash set permitting repeated elements:
// Add always inserts a new occurrence of k.
type MultiSet[K comparable] struct {
	tb *htable.Table[K, empty]
}

// NewMulti constructs an empty MultiSet sized for capacityHint elements.
func NewMulti[K comparable](capacityHint int, hasher htable.Hasher[K]) *MultiSet[K] {
	return &MultiSet[K]{tb: htable.New[K, empty](capacityHint, hasher, equalComparable[K])}
}

// Add inserts a new occurrence of k.
func (s *MultiSet[K]) Add(k K) {
	s.tb.InsertMulti(k, empty{})
}

// Count returns the number of occurrences of k.
func (s *MultiSet[K]) Count(k K) int {
	n := 0
	s.tb.FindAll(k, func(empty) bool { n++; return true })
	return n
}

// RemoveAll erases every occurrence of k and returns how many were
// removed.
func (s *MultiSet[K]) RemoveAll(k K) int {
	return s.tb.RemoveAll(k)
}

// Len returns the total number of elements, counting repeats.
func (s *MultiSet[K]) Len() int { return s.tb.Len() }

// All returns a range-over-func sequence over every element, including
// repeats.
func (s *MultiSet[K]) All() func(yield func(K) bool) {
	return func(yield func(K) bool) {
		it := s.tb.Iter()
		defer it.Close()
		for it.Next() {
			if !yield(it.Key()) {
				return
			}
		}
	}
}

// ConcurrentMultiSet is the thread-safe counterpart of MultiSet.
type ConcurrentMultiSet[K comparable] struct {
	tb *htable.Table[K, empty]
}

// NewConcurrentMulti constructs an empty ConcurrentMultiSet sized for
// capacityHint elements.
func NewConcurrentMulti[K comparable](capacityHint int, hasher htable.Hasher[K]) *ConcurrentMultiSet[K] {
	return &ConcurrentMultiSet[K]{tb: htable.NewConcurrent[K, empty](capacityHint, hasher, equalComparable[K])}
}

// Add inserts a new occurrence of k.
func (s *ConcurrentMultiSet[K]) Add(k K) {
	s.tb.InsertMulti(k, empty{})
}

// Count returns the number of occurrences of k.
func (s *ConcurrentMultiSet[K]) Count(k K) int {
	n := 0
	s.tb.FindAll(k, func(empty) bool { n++; return true })
	return n
}

// RemoveAll erases every occurrence of k and returns how many were
// removed.
func (s *ConcurrentMultiSet[K]) RemoveAll(k K) int {
	return s.tb.RemoveAll(k)
}

// Len returns the total number of elements, counting repeats.
func (s *ConcurrentMultiSet[K]) Len() int { return s.tb.Len() }

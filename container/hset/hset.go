package hset

import (
	"github.com/norensa/libspl-go/container/htable"
	"github.com/norensa/libspl-go/errs"
)

type empty = struct{}

func equalComparable[K comparable](a, b K) bool { return a == b }

// Set is a single-threaded, unique-key hash set.
type Set[K comparable] struct {
	tb *htable.Table[K, empty]
}

// New constructs an empty Set sized for capacityHint elements.
func New[K comparable](capacityHint int, hasher htable.Hasher[K]) *Set[K] {
	return &Set[K]{tb: htable.New[K, empty](capacityHint, hasher, equalComparable[K])}
}

// Add inserts k. If k is already present the set is left unchanged.
// Reports whether k was newly inserted.
func (s *Set[K]) Add(k K) (inserted bool) {
	existed := s.tb.InsertUnique(k, empty{}, false)
	return !existed
}

// Contains reports whether k is present.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.tb.Find(k)
	return ok
}

// Remove deletes k, returning errs.ErrElementNotFound if it was absent.
func (s *Set[K]) Remove(k K) error {
	if _, ok := s.tb.Remove(k); !ok {
		return errs.ErrElementNotFound
	}
	return nil
}

// Erase deletes k if present; a no-op if absent.
func (s *Set[K]) Erase(k K) {
	_, _ = s.tb.Remove(k)
}

// Len returns the number of distinct elements.
func (s *Set[K]) Len() int { return s.tb.Len() }

// All returns a range-over-func sequence of elements in unspecified order.
func (s *Set[K]) All() func(yield func(K) bool) {
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

// ConcurrentSet is the thread-safe counterpart of Set.
type ConcurrentSet[K comparable] struct {
	tb *htable.Table[K, empty]
}

// NewConcurrent constructs an empty ConcurrentSet sized for capacityHint
// elements.
func NewConcurrent[K comparable](capacityHint int, hasher htable.Hasher[K]) *ConcurrentSet[K] {
	return &ConcurrentSet[K]{tb: htable.NewConcurrent[K, empty](capacityHint, hasher, equalComparable[K])}
}

// Add inserts k; reports whether it was newly inserted.
func (s *ConcurrentSet[K]) Add(k K) (inserted bool) {
	existed := s.tb.InsertUnique(k, empty{}, false)
	return !existed
}

// Contains reports whether k is present.
func (s *ConcurrentSet[K]) Contains(k K) bool {
	_, ok := s.tb.Find(k)
	return ok
}

// Remove deletes k, returning errs.ErrElementNotFound if it was absent.
func (s *ConcurrentSet[K]) Remove(k K) error {
	if _, ok := s.tb.Remove(k); !ok {
		return errs.ErrElementNotFound
	}
	return nil
}

// Erase deletes k if present; a no-op if absent.
func (s *ConcurrentSet[K]) Erase(k K) {
	_, _ = s.tb.Remove(k)
}

// Len returns the number of distinct elements.
func (s *ConcurrentSet[K]) Len() int { return s.tb.Len() }

// All returns a range-over-func sequence of elements.
func (s *ConcurrentSet[K]) All() func(yield func(K) bool) {
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

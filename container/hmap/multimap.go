package hmap

import "github.com/norensa/libspl-go/container/htable"

// MultiMap is a single-threaded hash map permitting repeated keys: Put
// always appends a new (k, v) pair rather than overwriting.
type MultiMap[K comparable, V any] struct {
	tb *htable.Table[K, V]
}

// NewMulti constructs an empty MultiMap sized for capacityHint elements.
func NewMulti[K comparable, V any](capacityHint int, hasher htable.Hasher[K]) *MultiMap[K, V] {
	return &MultiMap[K, V]{tb: htable.New[K, V](capacityHint, hasher, equalComparable[K])}
}

// Put appends (k, v); a prior (k, v') pair, if any, is left untouched.
func (m *MultiMap[K, V]) Put(k K, v V) {
	m.tb.InsertMulti(k, v)
}

// Values invokes visit for every value keyed by k until visit returns
// false or all matches have been visited.
func (m *MultiMap[K, V]) Values(k K, visit func(V) bool) {
	m.tb.FindAll(k, visit)
}

// Contains reports whether at least one value is keyed by k.
func (m *MultiMap[K, V]) Contains(k K) bool {
	found := false
	m.tb.FindAll(k, func(V) bool { found = true; return false })
	return found
}

// RemoveAll erases every (k, *) pair and returns how many were removed.
func (m *MultiMap[K, V]) RemoveAll(k K) int {
	return m.tb.RemoveAll(k)
}

// Len returns the total number of (key, value) pairs across all keys.
func (m *MultiMap[K, V]) Len() int { return m.tb.Len() }

// All returns a range-over-func sequence over every (key, value) pair.
func (m *MultiMap[K, V]) All() func(yield func(K, V) bool) { return m.tb.All() }

// ConcurrentMultiMap is the thread-safe counterpart of MultiMap.
type ConcurrentMultiMap[K comparable, V any] struct {
	tb *htable.Table[K, V]
}

// NewConcurrentMulti constructs an empty ConcurrentMultiMap sized for
// capacityHint elements.
func NewConcurrentMulti[K comparable, V any](capacityHint int, hasher htable.Hasher[K]) *ConcurrentMultiMap[K, V] {
	return &ConcurrentMultiMap[K, V]{tb: htable.NewConcurrent[K, V](capacityHint, hasher, equalComparable[K])}
}

// Put appends (k, v).
func (m *ConcurrentMultiMap[K, V]) Put(k K, v V) {
	m.tb.InsertMulti(k, v)
}

// Values invokes visit for every value keyed by k.
func (m *ConcurrentMultiMap[K, V]) Values(k K, visit func(V) bool) {
	m.tb.FindAll(k, visit)
}

// RemoveAll erases every (k, *) pair and returns how many were removed.
func (m *ConcurrentMultiMap[K, V]) RemoveAll(k K) int {
	return m.tb.RemoveAll(k)
}

// Len returns the total number of (key, value) pairs.
func (m *ConcurrentMultiMap[K, V]) Len() int { return m.tb.Len() }

// All returns a range-over-func sequence over every (key, value) pair.
func (m *ConcurrentMultiMap[K, V]) All() func(yield func(K, V) bool) { return m.tb.All() }

package hmap

import (
	"github.com/norensa/libspl-go/container/htable"
	"github.com/norensa/libspl-go/errs"
)

// Map is a single-threaded, unique-key hash map. Put on an existing key
// overwrites its value.
type Map[K comparable, V any] struct {
	tb *htable.Table[K, V]
}

// New constructs an empty Map with an initial geometry sized for
// capacityHint elements, hashing keys with hasher.
func New[K comparable, V any](capacityHint int, hasher htable.Hasher[K]) *Map[K, V] {
	return &Map[K, V]{tb: htable.New[K, V](capacityHint, hasher, equalComparable[K])}
}

// NewWithEqual constructs a Map using an explicit equality predicate,
// for key types where == is not the desired comparison (e.g. case
// folding, or keys containing NaN-like float fields).
func NewWithEqual[K comparable, V any](capacityHint int, hasher htable.Hasher[K], eq htable.Equal[K]) *Map[K, V] {
	return &Map[K, V]{tb: htable.New[K, V](capacityHint, hasher, eq)}
}

func equalComparable[K comparable](a, b K) bool { return a == b }

// Put inserts or overwrites the value for k.
func (m *Map[K, V]) Put(k K, v V) {
	m.tb.InsertUnique(k, v, true)
}

// Get returns the value for k, or errs.ErrElementNotFound if absent.
func (m *Map[K, V]) Get(k K) (V, error) {
	v, ok := m.tb.Find(k)
	if !ok {
		return v, errs.ErrElementNotFound
	}
	return v, nil
}

// Contains reports whether k is present.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.tb.Find(k)
	return ok
}

// Remove deletes k and returns its prior value, or errs.ErrElementNotFound
// if k was absent.
func (m *Map[K, V]) Remove(k K) (V, error) {
	v, ok := m.tb.Remove(k)
	if !ok {
		return v, errs.ErrElementNotFound
	}
	return v, nil
}

// Erase deletes k if present and is always a no-op (never an error) when
// k is absent, per the container erase-vs-remove error contract.
func (m *Map[K, V]) Erase(k K) {
	_, _ = m.tb.Remove(k)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.tb.Len() }

// All returns a range-over-func sequence of (key, value) pairs in
// unspecified (probe-window) order.
func (m *Map[K, V]) All() func(yield func(K, V) bool) { return m.tb.All() }

// ConcurrentMap is the thread-safe counterpart of Map. All methods are
// safe for concurrent use, including concurrent Put/Get/Remove from
// different goroutines while a grow/rehash is in flight on another.
type ConcurrentMap[K comparable, V any] struct {
	tb *htable.Table[K, V]
}

// NewConcurrent constructs an empty ConcurrentMap sized for capacityHint
// elements.
func NewConcurrent[K comparable, V any](capacityHint int, hasher htable.Hasher[K]) *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{tb: htable.NewConcurrent[K, V](capacityHint, hasher, equalComparable[K])}
}

// NewConcurrentWithEqual is the ConcurrentMap counterpart of NewWithEqual.
func NewConcurrentWithEqual[K comparable, V any](capacityHint int, hasher htable.Hasher[K], eq htable.Equal[K]) *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{tb: htable.NewConcurrent[K, V](capacityHint, hasher, eq)}
}

// Put inserts or overwrites the value for k.
func (m *ConcurrentMap[K, V]) Put(k K, v V) {
	m.tb.InsertUnique(k, v, true)
}

// Get returns the value for k, or errs.ErrElementNotFound if absent.
func (m *ConcurrentMap[K, V]) Get(k K) (V, error) {
	v, ok := m.tb.Find(k)
	if !ok {
		return v, errs.ErrElementNotFound
	}
	return v, nil
}

// Contains reports whether k is present.
func (m *ConcurrentMap[K, V]) Contains(k K) bool {
	_, ok := m.tb.Find(k)
	return ok
}

// Remove deletes k and returns its prior value, or errs.ErrElementNotFound
// if k was absent.
func (m *ConcurrentMap[K, V]) Remove(k K) (V, error) {
	v, ok := m.tb.Remove(k)
	if !ok {
		return v, errs.ErrElementNotFound
	}
	return v, nil
}

// Erase deletes k if present; a no-op if absent.
func (m *ConcurrentMap[K, V]) Erase(k K) {
	_, _ = m.tb.Remove(k)
}

// Len returns the number of entries. Under concurrent mutation this is a
// point-in-time snapshot, not a linearization point shared with any
// other call.
func (m *ConcurrentMap[K, V]) Len() int { return m.tb.Len() }

// All returns a range-over-func sequence of (key, value) pairs. Holding
// the sequence open blocks any concurrent grow/rehash until the caller
// stops ranging, per the table's resident-reader fence.
func (m *ConcurrentMap[K, V]) All() func(yield func(K, V) bool) { return m.tb.All() }

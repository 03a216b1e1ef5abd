package htable

// Iterator walks every occupied slot of a Table. Construction (via
// Table.Iter) performs controller.Enter; Close performs controller.Exit.
// Iterators are invalidated by any structural change to the table made
// after construction — this is a documented contract, not enforced, to
// avoid a generation-check on every Next call.
type Iterator[K any, V any] struct {
	tb  *Table[K, V]
	gen *generation[K, V]
	idx int
}

// Iter returns an iterator over the table's current generation. The
// caller must call Close when done (or exhaust Next, then call Close) to
// release the reader bracket.
func (tb *Table[K, V]) Iter() *Iterator[K, V] {
	tb.ctrl.Enter()
	return &Iterator[K, V]{tb: tb, gen: tb.gen.Load(), idx: -1}
}

// Next advances to the next occupied slot and reports whether one was
// found.
func (it *Iterator[K, V]) Next() bool {
	for {
		it.idx++
		if it.idx >= len(it.gen.slots) {
			return false
		}
		if it.gen.slots[it.idx].tag.Load() == occupied {
			return true
		}
	}
}

// Key returns the current slot's key. Valid only after Next returns true.
func (it *Iterator[K, V]) Key() K { return it.gen.slots[it.idx].key }

// Hash returns the current slot's cached hash. Valid only after Next
// returns true. Exposed so callers (container/hmap, container/hset) can
// write the wire format's leading hash field without recomputing it.
func (it *Iterator[K, V]) Hash() uint64 { return it.gen.slots[it.idx].hash }

// Value returns the current slot's value. Valid only after Next returns
// true.
func (it *Iterator[K, V]) Value() V { return it.gen.slots[it.idx].val }

// Close releases the reader bracket opened by Iter.
func (it *Iterator[K, V]) Close() { it.tb.ctrl.Exit() }

// All returns a range-over-func iterator sequence over (key, value) pairs,
// for callers on Go 1.23+ who want `for k, v := range tb.All() { ... }`
// without manually managing Close.
func (tb *Table[K, V]) All() func(yield func(K, V) bool) {
	return func(yield func(K, V) bool) {
		it := tb.Iter()
		defer it.Close()
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}

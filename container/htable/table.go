package htable

import (
	"go.uber.org/atomic"
)

// generation is an immutable snapshot of a table's slot array and
// geometry. Growth replaces the whole generation via a single atomic
// pointer swap so that readers never observe a torn (slots, b, n, t)
// tuple.
type generation[K any, V any] struct {
	slots []slot[K, V]
	b, n, t int
}

// Table is the shared open-addressing engine behind container/hmap and
// container/hset. It is parameterized by a Hasher and Equal for K, and by
// a controller selecting the single-threaded or concurrent locking
// discipline.
type Table[K any, V any] struct {
	hasher Hasher[K]
	eq     Equal[K]
	ctrl   controller
	gen    atomic.Pointer[generation[K, V]]
	size   atomic.Int64
}

// New constructs a single-threaded Table with an initial geometry sized
// for capacityHint elements.
func New[K any, V any](capacityHint int, hasher Hasher[K], eq Equal[K]) *Table[K, V] {
	return newTable[K, V](capacityHint, hasher, eq, soloController{})
}

// NewConcurrent constructs a thread-safe Table sized for capacityHint
// elements.
func NewConcurrent[K any, V any](capacityHint int, hasher Hasher[K], eq Equal[K]) *Table[K, V] {
	return newTable[K, V](capacityHint, hasher, eq, &concurrentController{})
}

func newTable[K any, V any](capacityHint int, hasher Hasher[K], eq Equal[K], ctrl controller) *Table[K, V] {
	n := 1
	for n*1 < capacityHint {
		n *= 2
	}
	if n < 8 {
		n = 8
	}
	tb := &Table[K, V]{hasher: hasher, eq: eq, ctrl: ctrl}
	tb.gen.Store(&generation[K, V]{slots: make([]slot[K, V], n), b: 1, n: n, t: n})
	return tb
}

// Len reports the number of occupied slots.
func (tb *Table[K, V]) Len() int {
	return int(tb.size.Load())
}

// Geometry returns the current (bucketSize, bucketCount, tableSize)
// triple, used by the owning façade's serializer to write the controller
// state ahead of the element stream.
func (tb *Table[K, V]) Geometry() (b, n, t int) {
	g := tb.gen.Load()
	return g.b, g.n, g.t
}

func probeWindow(h uint64, n, b int) (start, length int) {
	bucket := int(h % uint64(n))
	return bucket * b, BucketSearch * b
}

// Find returns the first value whose key equals k, or ok=false if absent.
func (tb *Table[K, V]) Find(k K) (v V, ok bool) {
	tb.ctrl.Enter()
	defer tb.ctrl.Exit()

	g := tb.gen.Load()
	h := tb.hasher(k)
	idx, found := tb.scanFor(g, h, k)
	if !found {
		return v, false
	}
	return g.slots[idx].val, true
}

// scanFor returns the index of the first occupied, hash- and key-matching
// slot within k's probe window, or found=false.
func (tb *Table[K, V]) scanFor(g *generation[K, V], h uint64, k K) (idx int, found bool) {
	start, length := probeWindow(h, g.n, g.b)
	t := g.t
	for i := 0; i < length; i++ {
		pos := (start + i) % t
		sl := &g.slots[pos]
		if sl.tag.Load() != occupied {
			continue
		}
		if sl.hash == h && tb.eq(sl.key, k) {
			return pos, true
		}
	}
	return 0, false
}

// FindAll invokes visit for every value keyed by k, in probe order, until
// visit returns false or the window is exhausted. Used by multi-map/
// multi-set iterate-by-key, since uniqueness is an insert-time policy, not
// a storage property.
func (tb *Table[K, V]) FindAll(k K, visit func(V) bool) {
	tb.ctrl.Enter()
	defer tb.ctrl.Exit()

	g := tb.gen.Load()
	h := tb.hasher(k)
	start, length := probeWindow(h, g.n, g.b)
	t := g.t
	for i := 0; i < length; i++ {
		pos := (start + i) % t
		sl := &g.slots[pos]
		if sl.tag.Load() != occupied {
			continue
		}
		if sl.hash == h && tb.eq(sl.key, k) {
			if !visit(sl.val) {
				return
			}
		}
	}
}

// InsertUnique inserts (k, v). If a slot already holds a key equal to k,
// existed is true and, when overwrite is set, its value is replaced;
// otherwise the table is left unchanged (the unique-set policy).
func (tb *Table[K, V]) InsertUnique(k K, v V, overwrite bool) (existed bool) {
	h := tb.hasher(k)

	for {
		tb.ctrl.Enter()
		g := tb.gen.Load()

		if tb.maybeGrowForLoad(g) {
			tb.ctrl.Exit()
			continue
		}

		start, length := probeWindow(h, g.n, g.b)
		t := g.t
		collisions := 0
		for i := 0; i < length; i++ {
			pos := (start + i) % t
			sl := &g.slots[pos]
			switch sl.tag.Load() {
			case occupied:
				if sl.hash == h && tb.eq(sl.key, k) {
					if overwrite {
						sl.val = v
					}
					tb.ctrl.Exit()
					return true
				}
				if sl.hash == h {
					collisions++
				}
			case unoccupied:
				if sl.tag.CompareAndSwap(unoccupied, tentative) {
					sl.key = k
					sl.val = v
					sl.hash = h
					sl.tag.Store(occupied)
					tb.size.Add(1)
					tb.ctrl.Exit()
					return false
				}
				// lost the claim race; re-examine this slot
				i--
			}
		}

		tb.growAfterFullWindow(g, collisions)
		tb.ctrl.Exit()
	}
}

// InsertMulti always inserts a new (k, v) pair into the first free slot
// in k's probe window, without checking for an existing matching key.
func (tb *Table[K, V]) InsertMulti(k K, v V) {
	h := tb.hasher(k)

	for {
		tb.ctrl.Enter()
		g := tb.gen.Load()

		if tb.maybeGrowForLoad(g) {
			tb.ctrl.Exit()
			continue
		}

		start, length := probeWindow(h, g.n, g.b)
		t := g.t
		collisions := 0
		placed := false
		for i := 0; i < length; i++ {
			pos := (start + i) % t
			sl := &g.slots[pos]
			switch sl.tag.Load() {
			case occupied:
				if sl.hash == h {
					collisions++
				}
			case unoccupied:
				if sl.tag.CompareAndSwap(unoccupied, tentative) {
					sl.key = k
					sl.val = v
					sl.hash = h
					sl.tag.Store(occupied)
					tb.size.Add(1)
					placed = true
				} else {
					i--
					continue
				}
			}
			if placed {
				break
			}
		}

		if placed {
			tb.ctrl.Exit()
			return
		}

		tb.growAfterFullWindow(g, collisions)
		tb.ctrl.Exit()
	}
}

// Remove erases the first slot whose key equals k and returns its value.
// ok is false if no such key is present; callers surface
// errs.ErrElementNotFound in that case.
func (tb *Table[K, V]) Remove(k K) (v V, ok bool) {
	tb.ctrl.Enter()
	defer tb.ctrl.Exit()

	g := tb.gen.Load()
	h := tb.hasher(k)
	idx, found := tb.scanFor(g, h, k)
	if !found {
		return v, false
	}
	sl := &g.slots[idx]
	v = sl.val
	sl.tag.Store(tentative)
	var zero V
	sl.val = zero
	var zeroK K
	sl.key = zeroK
	sl.tag.Store(unoccupied)
	tb.size.Add(-1)
	return v, true
}

// RemoveAll erases every slot whose key equals k and returns how many were
// removed. Used by multi-map/multi-set's "erase all occurrences" erase.
func (tb *Table[K, V]) RemoveAll(k K) int {
	tb.ctrl.Enter()
	defer tb.ctrl.Exit()

	g := tb.gen.Load()
	h := tb.hasher(k)
	start, length := probeWindow(h, g.n, g.b)
	t := g.t
	count := 0
	for i := 0; i < length; i++ {
		pos := (start + i) % t
		sl := &g.slots[pos]
		if sl.tag.Load() != occupied {
			continue
		}
		if sl.hash != h || !tb.eq(sl.key, k) {
			continue
		}
		sl.tag.Store(tentative)
		var zero V
		sl.val = zero
		var zeroK K
		sl.key = zeroK
		sl.tag.Store(unoccupied)
		count++
	}
	tb.size.Add(int64(-count))
	return count
}

// maybeGrowForLoad implements the "when the table is at least half full, n doubles"
// condition, checked opportunistically at the top of every insert. It
// returns true if it performed a grow (in which case the caller must
// re-enter with a fresh generation).
func (tb *Table[K, V]) maybeGrowForLoad(observed *generation[K, V]) bool {
	size := tb.size.Load()
	// "tableSize == size" forces growth even where the half-full check
	// alone would not yet trigger, which in practice is the same
	// condition restated at its extreme (t <= t/2*2): a single check
	// covers both per the specification's note that they share a rule.
	if size*2 >= int64(observed.t) {
		tb.growTableSize(observed)
		return true
	}
	return false
}

// growAfterFullWindow is called when an insert exhausted its probe window
// without finding a free slot. collisions counts same-hash occupied slots
// observed in that window.
func (tb *Table[K, V]) growAfterFullWindow(observed *generation[K, V], collisions int) {
	if collisions > observed.b {
		tb.growBuckets(observed)
	} else {
		tb.growTableSize(observed)
	}
}

func nextGrowthStep(v int) int {
	if v >= growthLinearThreshold {
		return v + 1
	}
	return v * 2
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// growBuckets doubles (or linear-steps) the bucket size and recomputes the
// bucket count so the table size is non-decreasing, then rehashes.
func (tb *Table[K, V]) growBuckets(observed *generation[K, V]) {
	tb.ctrl.Lock()
	defer tb.ctrl.Unlock()

	if tb.gen.Load() != observed {
		return // another writer already grew past this snapshot
	}

	newB := nextGrowthStep(observed.b)
	newN := ceilDiv(observed.t, newB)
	if newN < 1 {
		newN = 1
	}
	tb.rehash(observed, newB, newN)
}

// growTableSize doubles the bucket count, keeping bucket size fixed, then
// rehashes.
func (tb *Table[K, V]) growTableSize(observed *generation[K, V]) {
	tb.ctrl.Lock()
	defer tb.ctrl.Unlock()

	if tb.gen.Load() != observed {
		return
	}

	newN := nextGrowthStep(observed.n)
	tb.rehash(observed, observed.b, newN)
}

// rehash allocates a new slot array of size newN*newB and copies every
// occupied slot from observed into it by reprobing under the new
// geometry. Called with exclusive access already held.
func (tb *Table[K, V]) rehash(observed *generation[K, V], newB, newN int) {
	newT := newB * newN
	next := &generation[K, V]{slots: make([]slot[K, V], newT), b: newB, n: newN, t: newT}

	for i := range observed.slots {
		sl := &observed.slots[i]
		if sl.tag.Load() != occupied {
			continue
		}
		placeDuringRehash(next, sl.hash, sl.key, sl.val)
	}

	tb.gen.Store(next)
}

// placeDuringRehash finds the first free slot for (hash, key, val) under
// the new geometry. It scans the full probe window first and, as a safety
// net beyond the specification's "sized not to need it" guarantee, falls
// back to a linear scan of the entire new table so rehash can never fail.
func placeDuringRehash[K any, V any](g *generation[K, V], h uint64, k K, v V) {
	start, length := probeWindow(h, g.n, g.b)
	t := g.t
	for i := 0; i < length; i++ {
		pos := (start + i) % t
		sl := &g.slots[pos]
		if sl.tag.Load() == unoccupied {
			sl.key = k
			sl.val = v
			sl.hash = h
			sl.tag.Store(occupied)
			return
		}
	}
	for pos := 0; pos < t; pos++ {
		sl := &g.slots[pos]
		if sl.tag.Load() == unoccupied {
			sl.key = k
			sl.val = v
			sl.hash = h
			sl.tag.Store(occupied)
			return
		}
	}
	panic("htable: rehash target table has no free slot")
}

package list

import (
	"runtime"

	"go.uber.org/atomic"
)

type atomicNode[T any] struct {
	next atomic.Pointer[atomicNode[T]]
	val  T
}

// AtomicList is a singly-linked list whose Prepend, Append, and TakeFront
// are safe under concurrent callers via compare-and-swap on head, tail,
// and next. InsertBefore/InsertAfter/Erase, inherited conceptually from
// List's iterator API, are intentionally not exposed here: the source
// documents them as not thread-safe on the atomic variant, and container/
// deque (the only consumer) never needs them.
type AtomicList[T any] struct {
	head, tail atomic.Pointer[atomicNode[T]]
	size       atomic.Int64
}

// NewAtomic constructs an empty AtomicList.
func NewAtomic[T any]() *AtomicList[T] { return &AtomicList[T]{} }

// Len returns the number of elements. Under concurrent mutation this is a
// snapshot, not linearized with any particular caller's view.
func (l *AtomicList[T]) Len() int { return int(l.size.Load()) }

// Prepend installs a new head node via compare-and-swap, retrying on
// contention.
func (l *AtomicList[T]) Prepend(v T) {
	n := &atomicNode[T]{val: v}
	for {
		h := l.head.Load()
		n.next.Store(h)
		if l.head.CompareAndSwap(h, n) {
			if h == nil {
				l.tail.CompareAndSwap(nil, n)
			}
			l.size.Add(1)
			return
		}
	}
}

// fixTail opportunistically walks from the last-seen tail forward along
// next until it reaches a node whose next is nil, swinging tail forward
// as it goes. Tail is advisory: it may lag head during contention, and
// correctness depends only on next-chain integrity, never on tail being
// synchronously consistent. Returns the last node, or nil if the list is
// (momentarily) observed empty.
func (l *AtomicList[T]) fixTail() *atomicNode[T] {
	t := l.tail.Load()
	if t == nil {
		return nil
	}
	for {
		next := t.next.Load()
		if next == nil {
			return t
		}
		l.tail.CompareAndSwap(t, next)
		t = next
	}
}

// Append installs a new tail node via compare-and-swap on the current
// last node's next pointer, correcting tail afterward via fixTail.
func (l *AtomicList[T]) Append(v T) {
	n := &atomicNode[T]{val: v}
	for {
		t := l.fixTail()
		if t == nil {
			if l.head.CompareAndSwap(nil, n) {
				l.tail.CompareAndSwap(nil, n)
				l.size.Add(1)
				return
			}
			continue
		}
		if t.next.CompareAndSwap(nil, n) {
			l.tail.CompareAndSwap(t, n)
			l.size.Add(1)
			return
		}
	}
}

// TryTakeFront detaches and returns the head element without blocking.
// ok is false if the list was observed empty.
func (l *AtomicList[T]) TryTakeFront() (v T, ok bool) {
	for {
		h := l.head.Load()
		if h == nil {
			return v, false
		}
		next := h.next.Load()
		if l.head.CompareAndSwap(h, next) {
			if next == nil {
				l.tail.CompareAndSwap(h, nil)
			}
			l.size.Add(-1)
			return h.val, true
		}
	}
}

// TakeFront blocks, by retrying, until a node is available, then detaches
// and returns it. Correct only when the caller can guarantee at least one
// enqueue will eventually happen; container/deque pairs this with a
// counting semaphore so the retry loop is bounded by a wake-up rather than
// spinning indefinitely on a list that nothing will ever fill.
func (l *AtomicList[T]) TakeFront() T {
	for {
		if v, ok := l.TryTakeFront(); ok {
			return v
		}
		runtime.Gosched()
	}
}

// All returns a range-over-func sequence snapshot of the list's elements
// at the time iteration begins, walking next pointers without removing
// them. Iteration is not itself thread-safe against concurrent Prepend/
// Append/TakeFront the way those three are against each other.
func (l *AtomicList[T]) All() func(yield func(T) bool) {
	return func(yield func(T) bool) {
		for n := l.head.Load(); n != nil; n = n.next.Load() {
			if !yield(n.val) {
				return
			}
		}
	}
}

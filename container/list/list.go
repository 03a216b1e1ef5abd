package list

import "github.com/norensa/libspl-go/errs"

type node[T any] struct {
	next *node[T]
	val  T
}

// List is a single-writer singly-linked list.
type List[T any] struct {
	head, tail *node[T]
	size       int
}

// New constructs an empty List.
func New[T any]() *List[T] { return &List[T]{} }

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.size }

// Prepend inserts v at the front of the list.
func (l *List[T]) Prepend(v T) {
	n := &node[T]{val: v, next: l.head}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.size++
}

// Append inserts v at the end of the list.
func (l *List[T]) Append(v T) {
	n := &node[T]{val: v}
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.size++
}

// Iterator walks a List from front to back. It tracks its predecessor
// node so InsertBefore can splice without a backward link.
type Iterator[T any] struct {
	l    *List[T]
	prev *node[T]
	cur  *node[T]
}

// Front returns an iterator positioned at the first element, or an
// already-exhausted iterator if the list is empty.
func (l *List[T]) Front() *Iterator[T] {
	return &Iterator[T]{l: l, cur: l.head}
}

// Valid reports whether the iterator refers to an element (false once it
// has advanced past the last element).
func (it *Iterator[T]) Valid() bool { return it.cur != nil }

// Value returns the current element. Valid only when Valid() is true.
func (it *Iterator[T]) Value() T { return it.cur.val }

// Advance moves the iterator to the next element.
func (it *Iterator[T]) Advance() {
	if it.cur == nil {
		return
	}
	it.prev = it.cur
	it.cur = it.cur.next
}

// InsertBefore splices v so that iteration will visit it immediately
// before it.Value(). Afterward it still refers to the same original
// element.
func (l *List[T]) InsertBefore(it *Iterator[T], v T) {
	n := &node[T]{val: v, next: it.cur}
	if it.prev == nil {
		l.head = n
	} else {
		it.prev.next = n
	}
	if n.next == nil {
		l.tail = n
	}
	it.prev = n
	l.size++
}

// InsertAfter splices v immediately after it.Value(). Returns
// errs.ErrOutOfRange if it is already at the end of the list (there is no
// "after end" position).
func (l *List[T]) InsertAfter(it *Iterator[T], v T) error {
	if it.cur == nil {
		return errs.ErrOutOfRange
	}
	n := &node[T]{val: v, next: it.cur.next}
	it.cur.next = n
	if l.tail == it.cur {
		l.tail = n
	}
	l.size++
	return nil
}

// Erase removes the element it currently refers to, advancing it to the
// next element. A no-op if it is already past the end.
func (l *List[T]) Erase(it *Iterator[T]) {
	if it.cur == nil {
		return
	}
	next := it.cur.next
	if it.prev == nil {
		l.head = next
	} else {
		it.prev.next = next
	}
	if l.tail == it.cur {
		l.tail = it.prev
	}
	it.cur = next
	l.size--
}

// Remove erases the element it currently refers to and returns its value.
// Returns errs.ErrOutOfRange if it is already past the end.
func (l *List[T]) Remove(it *Iterator[T]) (T, error) {
	if it.cur == nil {
		var zero T
		return zero, errs.ErrOutOfRange
	}
	v := it.cur.val
	l.Erase(it)
	return v, nil
}

// All returns a range-over-func sequence over the list's elements in
// order. Not safe to use while another goroutine mutates the list.
func (l *List[T]) All() func(yield func(T) bool) {
	return func(yield func(T) bool) {
		for it := l.Front(); it.Valid(); it.Advance() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}

package deque

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/norensa/libspl-go/container/list"
	"github.com/norensa/libspl-go/errs"
)

// Deque is a blocking, wait-free-enqueue FIFO queue.
type Deque[T any] struct {
	list *list.AtomicList[T]
	sem  *semaphore.Weighted
	mu   sync.Mutex
}

// New constructs an empty Deque.
func New[T any]() *Deque[T] {
	return &Deque[T]{
		list: list.NewAtomic[T](),
		sem:  semaphore.NewWeighted(math.MaxInt64),
	}
}

// Enqueue appends x, then signals the semaphore.
func (d *Deque[T]) Enqueue(x T) {
	d.list.Append(x)
	d.sem.Release(1)
}

// EnqueueFront prepends x, then signals the semaphore.
func (d *Deque[T]) EnqueueFront(x T) {
	d.list.Prepend(x)
	d.sem.Release(1)
}

// Dequeue waits on the semaphore, then detaches and returns the head
// element under the mutex. It blocks until an element is available or ctx
// is canceled, in which case it returns ctx.Err().
func (d *Deque[T]) Dequeue(ctx context.Context) (T, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		var zero T
		return zero, err
	}
	d.mu.Lock()
	v := d.list.TakeFront()
	d.mu.Unlock()
	return v, nil
}

// DequeueTimeout waits up to timeout for an element, returning
// errs.ErrDequeueTimedOut if the deadline expires first.
func (d *Deque[T]) DequeueTimeout(timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	v, err := d.Dequeue(ctx)
	if err != nil {
		var zero T
		return zero, errs.ErrDequeueTimedOut
	}
	return v, nil
}

// TryDequeue attempts a zero-wait dequeue. ok is false if the queue was
// empty at the moment of the attempt.
func (d *Deque[T]) TryDequeue() (v T, ok bool) {
	if !d.sem.TryAcquire(1) {
		return v, false
	}
	d.mu.Lock()
	v = d.list.TakeFront()
	d.mu.Unlock()
	return v, true
}

// TryDequeueOr is a convenience wrapper over TryDequeue returning
// fallback when the queue is empty, for callers that prefer a default
// value over a boolean.
func (d *Deque[T]) TryDequeueOr(fallback T) T {
	if v, ok := d.TryDequeue(); ok {
		return v
	}
	return fallback
}

// Clear removes every element, holding the mutex for the duration.
func (d *Deque[T]) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.sem.TryAcquire(1) {
		d.list.TakeFront()
	}
}

// Len returns the number of elements currently queued.
func (d *Deque[T]) Len() int { return d.list.Len() }

// Range returns a range-over-func sequence over the queue's current
// elements, front to back. Not safe for concurrent use with mutators.
func (d *Deque[T]) Range() func(yield func(T) bool) { return d.list.All() }

// Package deque implements a FIFO built on container/list's AtomicList, a
// counting semaphore that mirrors the list's length, and a mutex guarding
// structural dequeue operations.
//
// Every successful enqueue links its node before releasing the semaphore,
// so any dequeuer that completes its semaphore acquire has a
// happens-before relationship with the linked payload: the semaphore
// release is the handoff's synchronization point. Multi-producer ordering
// is whatever interleaving AtomicList's compare-and-swap primitives
// impose; it is not otherwise serialized.
//
// Dequeue blocks on the semaphore (optionally bounded by a context
// deadline or an explicit timeout); TryDequeue never blocks. Iteration is
// not safe for concurrent use.
package deque

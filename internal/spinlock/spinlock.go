// Package spinlock implements the resident-reader fence used by the
// concurrent hash table controller (see container/htable) to exclude
// readers from a narrow grow/rehash window without requiring every reader
// to take a mutex on the hot path.
//
// The dance is: enter() spins while a hold flag is set, then registers as
// a resident, backing out and spinning again if the flag was raised in
// between; exit() unregisters. A writer that needs exclusivity decrements
// its own resident count (it entered as a reader to get here), takes the
// mutex, sets the hold flag, spins until residents reaches zero, does
// its work, then clears the hold flag and restores its own resident
// count before releasing the mutex. Skipping the self-decrement would
// deadlock a writer that was itself counted as a resident.
package spinlock

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
)

// Fence is a reusable reader/writer exclusion primitive: many readers
// proceed concurrently via Enter/Exit; a single writer excludes all
// readers for the duration between Lock and Unlock.
type Fence struct {
	mu        sync.Mutex
	hold      atomic.Bool
	residents atomic.Int64
}

// Enter brackets a reader's critical section. It must be paired with Exit.
func (f *Fence) Enter() {
	for {
		for f.hold.Load() {
			runtime.Gosched()
		}
		f.residents.Add(1)
		if !f.hold.Load() {
			return
		}
		f.residents.Add(-1)
	}
}

// Exit closes a reader's critical section opened by Enter.
func (f *Fence) Exit() {
	f.residents.Add(-1)
}

// Lock acquires exclusive access. The caller must have already called
// Enter for its own (reader) critical section before calling Lock — Lock
// decrements that self-registration so it does not wait on itself.
func (f *Fence) Lock() {
	f.residents.Add(-1)
	f.mu.Lock()
	f.hold.Store(true)
	for f.residents.Load() != 0 {
		runtime.Gosched()
	}
}

// Unlock releases exclusive access acquired by Lock, restoring the
// caller's own resident registration and re-admitting waiting readers.
func (f *Fence) Unlock() {
	f.hold.Store(false)
	f.residents.Add(1)
	f.mu.Unlock()
}

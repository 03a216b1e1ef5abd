package htable

import "github.com/norensa/libspl-go/internal/spinlock"

// controller parameterizes the locking discipline of a Table. The solo
// controller's four methods are no-ops, so every operation's code is
// identical between the single-threaded and concurrent variants; only the
// controller implementation changes.
type controller interface {
	// Enter brackets a reader (or a writer about to scan/insert/erase)
	// critical section.
	Enter()
	// Exit closes a critical section opened by Enter.
	Exit()
	// Lock escalates the calling goroutine's already-open Enter bracket to
	// exclusive access, for the grow/rehash path.
	Lock()
	// Unlock releases exclusive access acquired by Lock.
	Unlock()
}

// soloController is used by the single-threaded table variants. It costs
// nothing at runtime and exists only so Table's operation code does not
// need to branch on whether it is running under contention.
type soloController struct{}

func (soloController) Enter()  {}
func (soloController) Exit()   {}
func (soloController) Lock()   {}
func (soloController) Unlock() {}

// concurrentController is used by the thread-safe table variants. It
// delegates directly to the resident-reader fence in internal/spinlock,
// which implements the literal "writer decrements its own resident count
// before waiting for residents to reach zero" dance the specification
// calls out as essential to avoid self-deadlock.
type concurrentController struct {
	fence spinlock.Fence
}

func (c *concurrentController) Enter()  { c.fence.Enter() }
func (c *concurrentController) Exit()   { c.fence.Exit() }
func (c *concurrentController) Lock()   { c.fence.Lock() }
func (c *concurrentController) Unlock() { c.fence.Unlock() }

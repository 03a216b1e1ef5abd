package broadcast

import "go.uber.org/atomic"

var defaultMTU = atomic.NewInt32(508)

// DefaultMTU returns the process-wide default MTU new Senders/Receivers
// pick up if their Config leaves MTU unset.
func DefaultMTU() int {
	return int(defaultMTU.Load())
}

// SetDefaultMTU changes the process-wide default MTU. Values are
// clamped to [minMTU, maxMTU].
func SetDefaultMTU(n int) {
	if n < minMTU {
		n = minMTU
	}
	if n > maxMTU {
		n = maxMTU
	}
	defaultMTU.Store(int32(n))
}

const (
	minMTU = 64
	maxMTU = 8192
)

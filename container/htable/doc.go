// Package htable implements the open-addressed, bucket-chained hash table
// engine shared by container/hmap and container/hset in both
// single-threaded and concurrent flavors.
//
// Geometry:
//
// A table has a bucket size b (a group of contiguous slots sharing a hash
// modulus), a bucket count n, and a table size t = n*b. A probe window for
// hash h is the 16*b slots starting at (h%n)*b, wrapping modulo t.
// BucketSearch = 16 is fixed; b starts at 1 and doubles (or steps by one
// past a very large threshold) when a probe window collides more than b
// times; n doubles when the table is at least half full. Both growth
// paths rehash into a freshly allocated slot array sized so the new
// geometry does not need to grow again mid-rehash.
//
// Concurrency:
//
// Table[K, V] is parameterized by a controller (see controller.go): the
// solo controller is all no-ops, the concurrent controller brackets every
// operation with a resident-reader fence and escalates to exclusive access
// only for the rare grow/rehash path. The same operation code runs under
// either controller.
//
// Tombstone-free erasure:
//
// Erase transitions a slot occupied -> tentative -> unoccupied and never
// introduces a tombstone. This is safe only because probe windows are
// contiguous regions anchored by hash modulus: removing a slot never
// breaks another key's probe path the way a tombstone-free scheme would
// under linear probing with unbounded runs.
package htable

import "go.uber.org/atomic"

// tag values for a slot's occupancy state machine.
const (
	unoccupied uint32 = iota
	tentative
	occupied
)

// BucketSearch is the fixed probe window length multiplier: a probe scans
// BucketSearch*b slots starting at the hash's bucket.
const BucketSearch = 16

// growthLinearThreshold is the point past which bucket-size and
// bucket-count growth switch from doubling to a linear +1 step: 10^8
// divided by BucketSearch, i.e. 6,250,000.
const growthLinearThreshold = 100_000_000 / BucketSearch

// Hasher computes a 64-bit hash for a key of type K.
type Hasher[K any] func(K) uint64

// Equal reports whether two keys of type K are equal.
type Equal[K any] func(a, b K) bool

type slot[K any, V any] struct {
	hash uint64
	tag  atomic.Uint32
	key  K
	val  V
}

// Package xhash supplies ready-made hash functions for callers to pass to
// the hash containers, whose constructors always take a hasher. It wraps
// github.com/cespare/xxhash/v2 rather than hand-rolling FNV or a similar
// weak hash, since the table's probe-window sizing assumes a hash with good
// avalanche behavior across the full 64-bit range.
package xhash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Bytes hashes an arbitrary byte slice.
func Bytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// String hashes a string without an intermediate allocation.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Uint64 mixes a 64-bit integer key through xxhash so that sequential keys
// (common for integer-keyed maps/sets) still spread across probe windows
// instead of clustering at low bucket indices.
func Uint64(v uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return xxhash.Sum64(buf[:])
}

// Int64 hashes a signed 64-bit integer key.
func Int64(v int64) uint64 {
	return Uint64(uint64(v))
}

// Float64 hashes a float64 key via its bit pattern.
func Float64(v float64) uint64 {
	return Uint64(math.Float64bits(v))
}

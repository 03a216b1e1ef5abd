// Package hmap provides hash map containers (unique-key and multi-key, each
// in single-threaded and concurrent forms) built on the shared
// open-addressing engine in container/htable.
//
// Map[K, V] and ConcurrentMap[K, V] enforce unique keys: Put overwrites
// the value of an existing key. MultiMap[K, V] and ConcurrentMultiMap[K, V]
// allow repeated keys: Put always appends a new (k, v) pair, and iterating
// by key visits every pair in insertion-unspecified (probe) order.
//
// Map and MultiMap serialize the same way (WriteTo/ReadFrom): geometry,
// element count, then a per-element stream through caller-supplied
// codecs, at whatever serial.Level the Output uses. ConcurrentMap and
// ConcurrentMultiMap have no serialization methods.
package hmap

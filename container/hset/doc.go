// Package hset provides hash set containers (unique-key and multi-key,
// each in single-threaded and concurrent forms) built on the shared
// open-addressing engine in container/htable.
//
// A set entry is the key itself; the engine is instantiated with an empty
// struct{} value so no storage is spent on a payload. Set's Add on an
// already-present key is a no-op (unlike hmap.Map, which overwrites);
// MultiSet's Add always inserts a new occurrence.
package hset

// Package list implements singly-linked list storage with head and tail
// pointers and a size counter, in two variants:
//
// List[T] assumes a single writer. Prepend/Append/InsertBefore/InsertAfter
// and iterator-based Erase/Remove all run without synchronization.
//
// AtomicList[T] uses atomic.Pointer for next/head/tail so that Prepend,
// Append, and TakeFront are safe under concurrent callers. It exposes no
// iterator-based insertion or erasure; its API is the set of operations
// container/deque needs.
//
// Nodes are owned exclusively by the list that contains them; removed
// nodes become unreferenced and are reclaimed by the garbage collector
// rather than requiring an explicit free, which is the Go-idiomatic
// substitute for the source's "freed immediately unless payload is moved
// out" rule.
package list

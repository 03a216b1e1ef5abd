package list_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norensa/libspl-go/container/list"
	"github.com/norensa/libspl-go/errs"
)

func TestListPrependAppendOrder(t *testing.T) {
	l := list.New[int]()
	l.Append(2)
	l.Append(3)
	l.Prepend(1)
	require.Equal(t, 3, l.Len())

	var got []int
	for v := range l.All() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestListInsertBeforeAfter(t *testing.T) {
	l := list.New[int]()
	l.Append(1)
	l.Append(3)

	it := l.Front()
	it.Advance() // now at 3
	l.InsertBefore(it, 2)

	require.NoError(t, l.InsertAfter(it, 4))

	var got []int
	for v := range l.All() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestListInsertAfterAtEndFails(t *testing.T) {
	l := list.New[int]()
	l.Append(1)
	it := l.Front()
	it.Advance() // past the end
	err := l.InsertAfter(it, 2)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestListEraseAndRemove(t *testing.T) {
	l := list.New[int]()
	l.Append(1)
	l.Append(2)
	l.Append(3)

	it := l.Front()
	it.Advance() // at 2
	v, err := l.Remove(it)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, l.Len())

	var got []int
	for v := range l.All() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 3}, got)
}

func TestAtomicListConcurrentPrependAppend(t *testing.T) {
	const (
		workers  = 8
		perWorer = 1_000
		total    = workers * perWorer
	)
	l := list.NewAtomic[int]()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorer; i++ {
				if i%2 == 0 {
					l.Append(w*perWorer + i)
				} else {
					l.Prepend(w*perWorer + i)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, total, l.Len())

	seen := make(map[int]bool, total)
	for v := range l.All() {
		seen[v] = true
	}
	assert.Len(t, seen, total)
}

func TestAtomicListTryTakeFrontDrains(t *testing.T) {
	l := list.NewAtomic[int]()
	_, ok := l.TryTakeFront()
	assert.False(t, ok)

	for i := 0; i < 5; i++ {
		l.Append(i)
	}

	var got []int
	for {
		v, ok := l.TryTakeFront()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, l.Len())
}

func TestAtomicListTakeFrontBlocksUntilAvailable(t *testing.T) {
	l := list.NewAtomic[int]()
	done := make(chan int, 1)
	go func() {
		done <- l.TakeFront()
	}()

	l.Append(42)
	assert.Equal(t, 42, <-done)
}

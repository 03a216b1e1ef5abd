package hmap_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norensa/libspl-go/container/hmap"
	"github.com/norensa/libspl-go/errs"
	"github.com/norensa/libspl-go/internal/xhash"
)

func intHasher(k int) uint64 { return xhash.Int64(int64(k)) }

// TestMapInsert1024 is concrete scenario 1: insert keys 0..1023 paired
// with values 2k, and confirm the full multiset is recoverable.
func TestMapInsert1024(t *testing.T) {
	m := hmap.New[int, int](1024, intHasher)
	for k := 0; k < 1024; k++ {
		m.Put(k, 2*k)
	}
	require.Equal(t, 1024, m.Len())

	for k := 0; k < 1024; k++ {
		v, err := m.Get(k)
		require.NoError(t, err)
		assert.Equal(t, 2*k, v)
	}

	seen := make(map[int]int)
	for k, v := range m.All() {
		seen[k] = v
	}
	assert.Len(t, seen, 1024)
	for k, v := range seen {
		assert.Equal(t, 2*k, v)
	}
}

func TestMapOverwriteAndRemove(t *testing.T) {
	m := hmap.New[string, int](16, xhash.String)
	m.Put("a", 1)
	m.Put("a", 2)
	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, m.Len())

	_, err = m.Remove("missing")
	assert.ErrorIs(t, err, errs.ErrElementNotFound)

	removed, err := m.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.False(t, m.Contains("a"))

	m.Erase("already-gone") // no-op, never an error
}

// TestConcurrentMap80k is concrete scenario 2: 8 goroutines each insert
// 10,000 distinct keys drawn from an 80,000-key space.
func TestConcurrentMap80k(t *testing.T) {
	const (
		workers   = 8
		perWorker = 10_000
		total     = workers * perWorker
	)
	m := hmap.NewConcurrent[int, int](total, intHasher)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				k := w*perWorker + i
				m.Put(k, k)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, total, m.Len())
	for k := 0; k < total; k++ {
		v, err := m.Get(k)
		require.NoError(t, err)
		assert.Equal(t, k, v)
	}
}

func TestMultiMapPreservesDuplicates(t *testing.T) {
	mm := hmap.NewMulti[string, int](8, xhash.String)
	mm.Put("k", 1)
	mm.Put("k", 2)
	mm.Put("k", 2)

	var vals []int
	mm.Values("k", func(v int) bool { vals = append(vals, v); return true })
	assert.ElementsMatch(t, []int{1, 2, 2}, vals)
	assert.Equal(t, 3, mm.Len())

	n := mm.RemoveAll("k")
	assert.Equal(t, 3, n)
	assert.False(t, mm.Contains("k"))
}

package hset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norensa/libspl-go/container/hset"
	"github.com/norensa/libspl-go/internal/xhash"
)

func TestSetAddContainsRemove(t *testing.T) {
	s := hset.New[int](16, func(k int) uint64 { return xhash.Int64(int64(k)) })

	assert.True(t, s.Add(1))
	assert.False(t, s.Add(1)) // already present
	assert.True(t, s.Contains(1))
	assert.Equal(t, 1, s.Len())

	assert.NoError(t, s.Remove(1))
	assert.False(t, s.Contains(1))
}

func TestMultiSetCounts(t *testing.T) {
	ms := hset.NewMulti[string](8, xhash.String)
	ms.Add("a")
	ms.Add("a")
	ms.Add("b")

	assert.Equal(t, 2, ms.Count("a"))
	assert.Equal(t, 1, ms.Count("b"))
	assert.Equal(t, 3, ms.Len())

	n := ms.RemoveAll("a")
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, ms.Count("a"))
}

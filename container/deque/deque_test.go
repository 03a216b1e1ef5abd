package deque_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norensa/libspl-go/container/deque"
	"github.com/norensa/libspl-go/errs"
)

func TestEnqueueDequeueOrder(t *testing.T) {
	d := deque.New[int]()
	for i := 0; i < 10; i++ {
		d.Enqueue(i)
	}
	for i := 0; i < 10; i++ {
		v, err := d.DequeueTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestDequeueTimeoutOnEmpty(t *testing.T) {
	d := deque.New[int]()
	start := time.Now()
	_, err := d.DequeueTimeout(50 * time.Millisecond)
	assert.ErrorIs(t, err, errs.ErrDequeueTimedOut)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDequeueAfterEnqueueOnEmptyQueue(t *testing.T) {
	d := deque.New[string]()
	d.Enqueue("x")
	v, err := d.DequeueTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

// TestConcurrentProducersConsumers is concrete scenario 3: 4 producers x
// 5,000 enqueues, 4 consumers draining until empty.
func TestConcurrentProducersConsumers(t *testing.T) {
	const (
		producers = 4
		perProd   = 5_000
		total     = producers * perProd
	)
	d := deque.New[int]()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				d.Enqueue(p*perProd + i)
			}
		}()
	}

	collected := make([]int, 0, total)
	var mu sync.Mutex
	var consumers sync.WaitGroup
	var drained int32
	for c := 0; c < producers; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				v, err := d.DequeueTimeout(200 * time.Millisecond)
				if err != nil {
					if int(drained) >= total {
						return
					}
					continue
				}
				mu.Lock()
				collected = append(collected, v)
				drained++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	consumers.Wait()

	assert.Len(t, collected, total)
	seen := make(map[int]bool, total)
	for _, v := range collected {
		seen[v] = true
	}
	assert.Len(t, seen, total)
}

func TestTryDequeueNonBlocking(t *testing.T) {
	d := deque.New[int]()
	_, ok := d.TryDequeue()
	assert.False(t, ok)

	d.Enqueue(42)
	v, ok := d.TryDequeue()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

package vproc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRQQueue_Empty_PopReportsEmpty(t *testing.T) {
	var q IRQQueue

	v, ok := q.Pop()

	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Equal(t, 0, q.Len())
}

func TestIRQQueue_FIFOOrder(t *testing.T) {
	// GIVEN vectors 1..k pushed onto an empty queue (k <= capacity)
	var q IRQQueue
	const k = 10
	for v := uint32(1); v <= k; v++ {
		assert.False(t, q.Push(v))
	}
	require.Equal(t, k, q.Len())

	// WHEN popped k times
	// THEN they come back in push order and the count falls to zero
	for want := uint32(1); want <= k; want++ {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, int(k-want), q.Len())
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestIRQQueue_Overflow_DropsOldest(t *testing.T) {
	// GIVEN capacity+1 distinct vectors pushed without popping
	var q IRQQueue
	drops := 0
	for v := uint32(1); v <= IRQQueueSize+1; v++ {
		if q.Push(v) {
			drops++
		}
	}

	// THEN exactly one vector was dropped and the queue is full
	assert.Equal(t, 1, drops)
	assert.Equal(t, IRQQueueSize, q.Len())

	// WHEN popped capacity times
	// THEN vectors 2..capacity+1 come back; vector 1 was lost
	for want := uint32(2); want <= IRQQueueSize+1; want++ {
		got, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestIRQQueue_IndexWrap_KeepsOrder(t *testing.T) {
	// GIVEN indices positioned just below the 2^32 wrap
	var q IRQQueue
	start := ^uint32(0) - 3
	q.push.Store(start)
	q.pop.Store(start)

	// WHEN vectors are pushed across the wrap
	for v := uint32(100); v < 110; v++ {
		q.Push(v)
	}

	// THEN length and order are preserved
	assert.Equal(t, 10, q.Len())
	for want := uint32(100); want < 110; want++ {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestIRQQueue_ConcurrentProducerConsumer_NoTornReads(t *testing.T) {
	// GIVEN one producer pushing increasing vectors and one consumer popping
	var q IRQQueue
	const total = 100000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for v := uint32(1); v <= total; v++ {
			q.Push(v)
		}
	}()

	// THEN every popped vector is strictly larger than the previous one:
	// drops may skip values but never reorder or repeat them
	last := uint32(0)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		v, ok := q.Pop()
		if ok {
			require.Greater(t, v, last)
			last = v
			continue
		}
		select {
		case <-done:
			if q.Len() == 0 {
				return
			}
		default:
		}
	}
}

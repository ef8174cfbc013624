package vproc

import "sync/atomic"

// IRQQueue is a fixed-capacity ring of interrupt vectors shared by one
// producer (the vectored IRQ callback, on the driving goroutine) and one
// consumer (the worker polling for events).
//
// The push and pop indices run freely and wrap at 2^32; IRQQueueSize divides
// 2^32 so slot = index & mask stays consistent across the wrap. Pushing onto a
// full queue discards the oldest unread vector.
type IRQQueue struct {
	slots [IRQQueueSize]atomic.Uint32
	push  atomic.Uint32
	pop   atomic.Uint32
}

// Push appends vector, dropping the oldest unread entry when the queue is
// full. It never blocks. dropped reports whether an entry was discarded.
func (q *IRQQueue) Push(vector uint32) (dropped bool) {
	head := q.push.Load()
	for {
		tail := q.pop.Load()
		if head-tail < IRQQueueSize {
			break
		}
		// Full: retire the oldest entry before its slot is reused. A failed
		// CAS means the consumer popped it first.
		if q.pop.CompareAndSwap(tail, tail+1) {
			dropped = true
			break
		}
	}
	q.slots[head&irqQueueMask].Store(vector)
	q.push.Store(head + 1)
	return dropped
}

// Pop removes and returns the oldest unread vector. ok is false when the
// queue is empty.
func (q *IRQQueue) Pop() (vector uint32, ok bool) {
	for {
		tail := q.pop.Load()
		if tail == q.push.Load() {
			return 0, false
		}
		vector = q.slots[tail&irqQueueMask].Load()
		// If the producer overwrote this slot it advanced pop first, so the
		// CAS fails and the read is retried against the new oldest entry.
		if q.pop.CompareAndSwap(tail, tail+1) {
			return vector, true
		}
	}
}

// Len returns the number of unread vectors.
func (q *IRQQueue) Len() int {
	// Load pop first: a concurrent push can only grow the difference.
	tail := q.pop.Load()
	head := q.push.Load()
	n := int(head - tail)
	if n > IRQQueueSize {
		n = IRQQueueSize
	}
	return n
}

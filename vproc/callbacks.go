package vproc

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// IRQKind identifies which vectored interrupt callback a node has.
type IRQKind uint8

const (
	IRQNone IRQKind = iota
	IRQNative
	IRQEmbedded
)

func (k IRQKind) String() string {
	switch k {
	case IRQNative:
		return "native"
	case IRQEmbedded:
		return "embedded"
	default:
		return "none"
	}
}

// IRQCallback is a vectored interrupt handler: either a NativeIRQ or an
// EmbeddedIRQ. A node holds at most one.
type IRQCallback interface {
	Kind() IRQKind
}

// NativeIRQ handles a vector directly on the driving goroutine.
type NativeIRQ func(vector uint32)

// Kind implements IRQCallback.
func (NativeIRQ) Kind() IRQKind { return IRQNative }

// EmbeddedIRQ is an interrupt handler hosted by an embedded language runtime.
// It receives the vector and node id and is expected to queue the vector
// with Scheduler.PushIRQ for the worker to poll.
type EmbeddedIRQ func(vector uint32, node int)

// Kind implements IRQCallback.
func (EmbeddedIRQ) Kind() IRQKind { return IRQEmbedded }

type irqBinding struct {
	native   NativeIRQ
	embedded EmbeddedIRQ
}

func (b *irqBinding) kind() IRQKind {
	switch {
	case b == nil:
		return IRQNone
	case b.native != nil:
		return IRQNative
	case b.embedded != nil:
		return IRQEmbedded
	}
	return IRQNone
}

func (n *Node) setIRQCallback(cb IRQCallback) error {
	if cb == nil {
		n.irqCB.Store(nil)
		return nil
	}
	b := &irqBinding{}
	switch fn := cb.(type) {
	case NativeIRQ:
		b.native = fn
	case EmbeddedIRQ:
		b.embedded = fn
	default:
		return fmt.Errorf("unsupported IRQ callback type %T", cb)
	}
	if b.kind() == IRQNone {
		n.irqCB.Store(nil)
		return nil
	}
	// Worker and driver may register concurrently; the kind check and the
	// store must be one atomic step.
	for {
		cur := n.irqCB.Load()
		if k := cur.kind(); k != IRQNone && k != cb.Kind() {
			return fmt.Errorf("node %d: registering %s callback over %s: %w", n.id, cb.Kind(), k, ErrIRQCallbackConflict)
		}
		if n.irqCB.CompareAndSwap(cur, b) {
			return nil
		}
	}
}

func (n *Node) setUserCallback(fn func(int32)) {
	if fn == nil {
		n.userCB.Store(nil)
		return
	}
	n.userCB.Store(&fn)
}

// IRQKind returns the kind of vectored callback registered on the node.
func (n *Node) IRQKind() IRQKind {
	return n.irqCB.Load().kind()
}

func (n *Node) invokeUser(value int32) {
	if fn := n.userCB.Load(); fn != nil {
		n.stats.userCalls.Add(1)
		(*fn)(value)
	}
}

// invokeIRQ dispatches vector to the registered callback. It returns false
// when no vectored callback is registered, in which case the interrupt must
// be delivered as a level interrupt.
func (n *Node) invokeIRQ(vector uint32) bool {
	b := n.irqCB.Load()
	switch {
	case b == nil:
		return false
	case b.native != nil:
		n.stats.irqsNative.Add(1)
		b.native(vector)
	case b.embedded != nil:
		n.stats.irqsEmbedded.Add(1)
		b.embedded(vector, n.id)
	default:
		return false
	}
	return true
}

func (n *Node) pushIRQ(vector uint32) {
	n.stats.irqsQueued.Add(1)
	if n.irqs.Push(vector) {
		n.stats.irqsDropped.Add(1)
		logrus.WithField("node", n.id).Debugf("IRQ queue full; dropped oldest vector for %#x", vector)
	}
}

func (n *Node) blockAccess(index int, in uint32) uint32 {
	if index < 0 || index >= len(n.block) {
		fatalf(n.id, ExitBlockRange, "BlockAccess(%d): index %d outside block buffer of %d words", n.id, index, len(n.block))
	}
	n.stats.blockAccesses.Add(1)
	return n.block[index].Swap(in)
}

package vproc

import "sync/atomic"

// Node is the per-worker state owned by one registry slot.
//
// inputs and output are written by one side of the rendezvous and read by
// the other; the alternation of the gates orders every access, so they are
// plain fields.
type Node struct {
	id int

	inputs Inputs
	output Transaction

	block []atomic.Uint32
	rdv   *Rendezvous
	irqs  IRQQueue

	userCB atomic.Pointer[func(int32)]
	irqCB  atomic.Pointer[irqBinding]

	// level ISRs are installed and run on the worker goroutine only.
	isrs  map[uint32]func(*Proc)
	inISR bool

	finished atomic.Bool
	stats    nodeCounters
}

func newNode(id int, blockWords int) *Node {
	if blockWords <= 0 {
		blockWords = DefaultBlockWords
	}
	return &Node{
		id:    id,
		block: make([]atomic.Uint32, blockWords),
		rdv:   NewRendezvous(),
		isrs:  make(map[uint32]func(*Proc)),
	}
}

// ID returns the node identifier.
func (n *Node) ID() int { return n.id }

// BlockWords returns the length of the block-transfer buffer.
func (n *Node) BlockWords() int { return len(n.block) }

// Finished reports whether the node's worker has returned a Forever advance.
func (n *Node) Finished() bool { return n.finished.Load() }

// NodeStats is a snapshot of a node's scheduling counters.
type NodeStats struct {
	Handshakes    int64 // Schedule calls that woke the worker
	ShortCircuits int64 // Schedule calls answered without a handshake
	UserCalls     int64 // NotifyUser calls dispatched to a callback
	IRQsNative    int64 // vectors delivered to a NativeIRQ callback
	IRQsEmbedded  int64 // vectors delivered to an EmbeddedIRQ callback
	IRQsQueued    int64 // vectors pushed onto the IRQ queue
	IRQsDropped   int64 // queued vectors lost to overflow
	BlockAccesses int64
}

type nodeCounters struct {
	handshakes    atomic.Int64
	shortCircuits atomic.Int64
	userCalls     atomic.Int64
	irqsNative    atomic.Int64
	irqsEmbedded  atomic.Int64
	irqsQueued    atomic.Int64
	irqsDropped   atomic.Int64
	blockAccesses atomic.Int64
}

func (c *nodeCounters) snapshot() NodeStats {
	return NodeStats{
		Handshakes:    c.handshakes.Load(),
		ShortCircuits: c.shortCircuits.Load(),
		UserCalls:     c.userCalls.Load(),
		IRQsNative:    c.irqsNative.Load(),
		IRQsEmbedded:  c.irqsEmbedded.Load(),
		IRQsQueued:    c.irqsQueued.Load(),
		IRQsDropped:   c.irqsDropped.Load(),
		BlockAccesses: c.blockAccesses.Load(),
	}
}

package vproc

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Entry is a worker program. It runs on the node's dedicated goroutine and
// drives the bus through p. When it returns the node is retired.
type Entry func(p *Proc)

// Config groups scheduler parameters.
type Config struct {
	BlockWords int // block-transfer buffer length per node (DefaultBlockWords when 0)
}

// Scheduler is the driving-side entry point: it owns the node registry and
// starts one worker goroutine per node.
type Scheduler struct {
	registry *Registry
	entry    Entry
}

// NewScheduler returns a Scheduler that runs entry for every node it
// initialises. entry must not be nil.
func NewScheduler(cfg Config, entry Entry) *Scheduler {
	if entry == nil {
		panic("NewScheduler: entry must not be nil")
	}
	return &Scheduler{
		registry: NewRegistry(cfg.BlockWords),
		entry:    entry,
	}
}

// Registry returns the scheduler's node registry.
func (s *Scheduler) Registry() *Registry { return s.registry }

// InitNode creates node id and starts its worker goroutine. An id outside
// [0, MaxNodes) is fatal. Initialising an existing node is a no-op.
func (s *Scheduler) InitNode(id int) {
	if !ValidID(id) {
		fatalf(id, ExitNodeRange, "InitNode() got out of range node number (%d)", id)
	}
	n, created := s.registry.Init(id)
	if !created {
		return
	}
	logrus.Infof("InitNode(%d): starting worker", id)
	go runWorker(n, s.entry)
}

// Schedule is called once per clock edge for node id. It samples irq and
// dataIn into the node's receive buffer and returns the worker's next
// transaction.
//
// If irq is asserted and the node has a vectored IRQ callback, the worker is
// not woken: the interrupt is delivered out of band by NotifyIRQ and Schedule
// returns an idle DeltaCycle transaction. Otherwise Schedule blocks, without
// timeout, until the worker yields.
func (s *Scheduler) Schedule(id int, irq, dataIn uint32) Transaction {
	n := s.node(id, "Schedule")
	if n.finished.Load() {
		fatalf(id, ExitProtocol, "Schedule(%d): node already returned a Forever advance", id)
	}

	n.inputs = Inputs{DataIn: dataIn, Interrupt: irq}

	if irq != 0 && n.irqCB.Load().kind() != IRQNone {
		n.stats.shortCircuits.Add(1)
		logrus.Tracef("Schedule(%d): irq %#x handled out of band", id, irq)
		return Transaction{Ticks: DeltaCycle}
	}

	logrus.Tracef("Schedule(%d): resuming worker", id)
	n.rdv.Resume()
	n.stats.handshakes.Add(1)

	tx := n.output
	if tx.Ticks < DeltaCycle {
		tx.Ticks = DeltaCycle
	}
	if tx.Finished() {
		n.finished.Store(true)
		logrus.Infof("Schedule(%d): worker finished", id)
	}
	logrus.Tracef("Schedule(%d): returning %v", id, tx)
	return tx
}

// NotifyUser calls the node's user callback with value, if one is registered.
func (s *Scheduler) NotifyUser(id int, value int32) {
	s.node(id, "NotifyUser").invokeUser(value)
}

// NotifyIRQ delivers vector to the node's vectored IRQ callback. It reports
// whether a callback took the interrupt; when it did not, the caller should
// present the vector on the interrupt line of a later Schedule call.
func (s *Scheduler) NotifyIRQ(id int, vector uint32) bool {
	return s.node(id, "NotifyIRQ").invokeIRQ(vector)
}

// BlockAccess swaps in into word index of the node's block buffer and
// returns the previous word. An out-of-range index is fatal.
func (s *Scheduler) BlockAccess(id, index int, in uint32) uint32 {
	return s.node(id, "BlockAccess").blockAccess(index, in)
}

// PushIRQ queues vector for the node, discarding the oldest unread vector if
// the queue is full.
func (s *Scheduler) PushIRQ(id int, vector uint32) {
	s.node(id, "PushIRQ").pushIRQ(vector)
}

// PollIRQ removes and returns the oldest queued vector for the node.
func (s *Scheduler) PollIRQ(id int) (uint32, bool) {
	return s.node(id, "PollIRQ").irqs.Pop()
}

// PendingIRQs returns the number of queued vectors for the node.
func (s *Scheduler) PendingIRQs(id int) int {
	return s.node(id, "PendingIRQs").irqs.Len()
}

// SetIRQCallback registers cb as the node's vectored IRQ callback; nil
// clears it. Registering a callback of the other kind than the current one
// fails with ErrIRQCallbackConflict.
func (s *Scheduler) SetIRQCallback(id int, cb IRQCallback) error {
	n := s.registry.Get(id)
	if n == nil {
		return fmt.Errorf("SetIRQCallback(%d): %w", id, ErrUnknownNode)
	}
	return n.setIRQCallback(cb)
}

// SetUserCallback registers fn as the node's user callback; nil clears it.
func (s *Scheduler) SetUserCallback(id int, fn func(int32)) error {
	n := s.registry.Get(id)
	if n == nil {
		return fmt.Errorf("SetUserCallback(%d): %w", id, ErrUnknownNode)
	}
	n.setUserCallback(fn)
	return nil
}

// HasVectoredIRQ reports whether the node takes interrupts through a
// vectored callback rather than the interrupt line.
func (s *Scheduler) HasVectoredIRQ(id int) bool {
	n := s.registry.Get(id)
	return n != nil && n.IRQKind() != IRQNone
}

// Finished reports whether the node has retired.
func (s *Scheduler) Finished(id int) bool {
	n := s.registry.Get(id)
	return n != nil && n.Finished()
}

// Stats returns a snapshot of the node's counters.
func (s *Scheduler) Stats(id int) (NodeStats, error) {
	n := s.registry.Get(id)
	if n == nil {
		return NodeStats{}, fmt.Errorf("Stats(%d): %w", id, ErrUnknownNode)
	}
	return n.stats.snapshot(), nil
}

func (s *Scheduler) node(id int, op string) *Node {
	n := s.registry.Get(id)
	if n == nil {
		fatalf(id, ExitProtocol, "%s(%d): node not initialised", op, id)
	}
	return n
}

package engine

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cosim-bridge/vproc/vproc"
	"github.com/cosim-bridge/vproc/vproc/trace"
)

// MaxDeltaCycles bounds how many DeltaCycle advances a node may take within
// one cycle before the run is aborted.
const MaxDeltaCycles = 1000

// ErrDeltaLoop is returned by Run when a node exceeds MaxDeltaCycles.
var ErrDeltaLoop = errors.New("node exceeded delta-cycle limit")

// Options groups engine parameters.
type Options struct {
	Horizon int64 // last cycle to simulate; 0 means until every node retires
	Trace   trace.TraceConfig
	Memory  *Memory // initial memory contents (a fresh Memory when nil)
}

type nodeState struct {
	id       int
	dataIn   uint32 // presented on the next Schedule call
	level    uint32 // latched level interrupt
	retired  bool
	deltaAt  int64
	deltaRun int
}

// Engine drives a vproc.Scheduler cycle by cycle.
type Engine struct {
	Clock   int64
	Horizon int64
	Memory  *Memory
	// Trace is nil when tracing is disabled.
	Trace *trace.SimulationTrace

	sched  *vproc.Scheduler
	queue  EventQueue
	seq    int64
	nodes  map[int]*nodeState
	active int
	err    error
}

// New returns an engine driving sched.
func New(sched *vproc.Scheduler, opts Options) *Engine {
	mem := opts.Memory
	if mem == nil {
		mem = NewMemory()
	}
	e := &Engine{
		Horizon: opts.Horizon,
		Memory:  mem,
		sched:   sched,
		queue:   make(EventQueue, 0),
		nodes:   make(map[int]*nodeState),
	}
	if opts.Trace.Enabled() {
		e.Trace = trace.NewSimulationTrace(opts.Trace)
	}
	return e
}

// Schedule queues ev.
func (e *Engine) Schedule(ev Event) {
	heap.Push(&e.queue, eventEntry{event: ev, seqID: e.seq})
	e.seq++
}

// AddNode initialises node id on the scheduler and wakes it at cycle 0.
func (e *Engine) AddNode(id int) {
	if _, ok := e.nodes[id]; ok {
		return
	}
	e.sched.InitNode(id)
	e.nodes[id] = &nodeState{id: id, deltaAt: -1}
	e.active++
	e.Schedule(&WakeEvent{time: 0, node: id})
}

// RaiseIRQ asserts vector on node at cycle. Vector 0 means "no interrupt"
// and is rejected.
func (e *Engine) RaiseIRQ(node int, cycle int64, vector uint32) error {
	if vector == 0 {
		return fmt.Errorf("RaiseIRQ(node %d, cycle %d): vector must be nonzero", node, cycle)
	}
	if _, ok := e.nodes[node]; !ok {
		return fmt.Errorf("RaiseIRQ(node %d): %w", node, vproc.ErrUnknownNode)
	}
	e.Schedule(&IRQEvent{time: cycle, node: node, vector: vector})
	return nil
}

// NotifyUserAt calls the node's user callback with value at cycle.
func (e *Engine) NotifyUserAt(node int, cycle int64, value int32) error {
	if _, ok := e.nodes[node]; !ok {
		return fmt.Errorf("NotifyUserAt(node %d): %w", node, vproc.ErrUnknownNode)
	}
	e.Schedule(&UserEvent{time: cycle, node: node, value: value})
	return nil
}

// Run processes events until every node has retired, the queue empties or
// the horizon is passed.
func (e *Engine) Run() error {
	for len(e.queue) > 0 && e.active > 0 && e.err == nil {
		entry := heap.Pop(&e.queue).(eventEntry)
		ev := entry.event
		if e.Horizon > 0 && ev.Timestamp() > e.Horizon {
			logrus.Infof("[cycle %07d] horizon reached", e.Horizon)
			e.Clock = e.Horizon
			break
		}
		e.Clock = ev.Timestamp()
		logrus.Debugf("[cycle %07d] Executing %T", e.Clock, ev)
		ev.Execute(e)
	}
	logrus.Infof("[cycle %07d] Simulation ended, %d of %d nodes retired", e.Clock, len(e.nodes)-e.active, len(e.nodes))
	return e.err
}

// Retired reports whether node has returned a Forever advance.
func (e *Engine) Retired(node int) bool {
	ns, ok := e.nodes[node]
	return ok && ns.retired
}

// Active returns the number of nodes still running.
func (e *Engine) Active() int { return e.active }

func (e *Engine) wake(id int, now int64) {
	ns := e.nodes[id]
	if ns.retired {
		return
	}
	irq := ns.level
	ns.level = 0
	if irq != 0 && e.sched.HasVectoredIRQ(id) {
		// The node switched to vectored delivery after the level was latched.
		e.deliverVectored(ns, irq, now)
		irq = 0
	}

	tx := e.sched.Schedule(id, irq, ns.dataIn)
	e.apply(ns, tx)
	e.record(ns, tx, now, false)

	if tx.Finished() {
		ns.retired = true
		e.active--
		return
	}
	next := e.nextWake(ns, tx, now)
	if e.err != nil {
		return
	}
	e.Schedule(&WakeEvent{time: next, node: id})
}

// apply performs the bus side of tx against memory.
func (e *Engine) apply(ns *nodeState, tx vproc.Transaction) {
	switch tx.RW {
	case vproc.AccessRead:
		if tx.Burst > 0 {
			for i := 0; i < tx.Burst; i++ {
				e.sched.BlockAccess(ns.id, i, e.Memory.Load(tx.Addr+uint32(i)*4))
			}
			return
		}
		ns.dataIn = e.Memory.Load(tx.Addr)
	case vproc.AccessWrite:
		if tx.Burst > 0 {
			for i := 0; i < tx.Burst; i++ {
				e.Memory.Store(tx.Addr+uint32(i)*4, e.sched.BlockAccess(ns.id, i, 0))
			}
			return
		}
		e.Memory.Store(tx.Addr, tx.DataOut)
	}
}

// nextWake converts the requested advance into the cycle of the next
// Schedule call. An access occupies the bus for one cycle per word.
func (e *Engine) nextWake(ns *nodeState, tx vproc.Transaction, now int64) int64 {
	if tx.Ticks == vproc.DeltaCycle {
		if ns.deltaAt != now {
			ns.deltaAt, ns.deltaRun = now, 0
		}
		ns.deltaRun++
		if ns.deltaRun > MaxDeltaCycles {
			e.err = fmt.Errorf("node %d at cycle %d: %w", ns.id, now, ErrDeltaLoop)
		}
		return now
	}
	busCycles := int64(1)
	if tx.Burst > 1 {
		busCycles = int64(tx.Burst)
	}
	return now + busCycles + int64(tx.Ticks)
}

func (e *Engine) raise(id int, vector uint32, now int64) {
	ns := e.nodes[id]
	if ns.retired {
		logrus.WithField("node", id).Debugf("IRQ %#x dropped: node retired", vector)
		return
	}
	if !e.sched.HasVectoredIRQ(id) {
		ns.level = vector
		e.recordIRQ(id, vector, now, trace.DeliveryLevel)
		return
	}
	e.deliverVectored(ns, vector, now)
}

// deliverVectored runs the node's vectored callback, then presents the
// vector on the interrupt line; the scheduler answers that call without
// waking the worker.
func (e *Engine) deliverVectored(ns *nodeState, vector uint32, now int64) {
	e.sched.NotifyIRQ(ns.id, vector)
	e.recordIRQ(ns.id, vector, now, trace.DeliveryVectored)
	tx := e.sched.Schedule(ns.id, vector, ns.dataIn)
	e.record(ns, tx, now, true)
}

func (e *Engine) notifyUser(id int, value int32) {
	if e.nodes[id].retired {
		return
	}
	e.sched.NotifyUser(id, value)
}

func (e *Engine) record(ns *nodeState, tx vproc.Transaction, now int64, async bool) {
	if e.Trace == nil {
		return
	}
	data := tx.DataOut
	if tx.RW == vproc.AccessRead && tx.Burst == 0 {
		data = ns.dataIn
	}
	e.Trace.RecordTransaction(trace.TransactionRecord{
		Node:    ns.id,
		Cycle:   now,
		Access:  tx.RW.String(),
		Addr:    tx.Addr,
		Data:    data,
		Burst:   tx.Burst,
		Ticks:   tx.Ticks,
		Async:   async,
		Retired: tx.Finished(),
	})
}

func (e *Engine) recordIRQ(id int, vector uint32, now int64, d trace.Delivery) {
	if e.Trace == nil {
		return
	}
	e.Trace.RecordInterrupt(trace.InterruptRecord{Node: id, Cycle: now, Vector: vector, Delivery: d})
}

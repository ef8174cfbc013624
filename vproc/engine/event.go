package engine

// Event priorities within one cycle (lower runs first).
const (
	PriorityIRQ  = 0
	PriorityUser = 1
	PriorityWake = 2
)

// Event is a unit of work scheduled at a simulation cycle.
type Event interface {
	Timestamp() int64
	Priority() int
	Execute(*Engine)
}

// eventEntry wraps an Event with a sequence ID for deterministic FIFO
// tie-breaking when timestamp and priority are equal.
type eventEntry struct {
	event Event
	seqID int64
}

// EventQueue is a min-heap ordered by (Timestamp, Priority, seqID).
// Implements heap.Interface.
type EventQueue []eventEntry

func (q EventQueue) Len() int { return len(q) }

func (q EventQueue) Less(i, j int) bool {
	if q[i].event.Timestamp() != q[j].event.Timestamp() {
		return q[i].event.Timestamp() < q[j].event.Timestamp()
	}
	if q[i].event.Priority() != q[j].event.Priority() {
		return q[i].event.Priority() < q[j].event.Priority()
	}
	return q[i].seqID < q[j].seqID
}

func (q EventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *EventQueue) Push(x any) {
	*q = append(*q, x.(eventEntry))
}

func (q *EventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// WakeEvent calls Schedule for a node on a clock edge.
type WakeEvent struct {
	time int64
	node int
}

func (e *WakeEvent) Timestamp() int64 { return e.time }
func (e *WakeEvent) Priority() int    { return PriorityWake }

// Execute schedules the node and queues its next wake.
func (e *WakeEvent) Execute(eng *Engine) {
	eng.wake(e.node, e.time)
}

// IRQEvent asserts an interrupt vector on a node.
type IRQEvent struct {
	time   int64
	node   int
	vector uint32
}

func (e *IRQEvent) Timestamp() int64 { return e.time }
func (e *IRQEvent) Priority() int    { return PriorityIRQ }

// Execute delivers the interrupt out of band when the node has a vectored
// callback, otherwise latches it as a level interrupt for the next wake.
func (e *IRQEvent) Execute(eng *Engine) {
	eng.raise(e.node, e.vector, e.time)
}

// UserEvent passes a value to a node's user callback.
type UserEvent struct {
	time  int64
	node  int
	value int32
}

func (e *UserEvent) Timestamp() int64 { return e.time }
func (e *UserEvent) Priority() int    { return PriorityUser }

// Execute calls NotifyUser.
func (e *UserEvent) Execute(eng *Engine) {
	eng.notifyUser(e.node, e.value)
}

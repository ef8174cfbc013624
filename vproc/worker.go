package vproc

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Proc is the worker-side handle on a node. Every bus method performs one
// rendezvous: it publishes a Transaction, yields to the driver and returns
// once the driver schedules the node again. A Proc must only be used from
// the worker goroutine that received it.
type Proc struct {
	node     *Node
	last     Inputs
	finished bool
}

func runWorker(n *Node, entry Entry) {
	p := &Proc{node: n}
	// Nothing runs until the first Schedule call; this keeps every
	// worker-side mutation inside a handshake window.
	n.rdv.Wait()
	p.last = n.inputs
	logrus.Debugf("worker %d: started", n.id)

	entry(p)

	if !p.finished {
		logrus.Debugf("worker %d: entry returned, retiring node", n.id)
		p.Tick(Forever)
	}
}

// Node returns the node id.
func (p *Proc) Node() int { return p.node.id }

// Inputs returns the receive buffer sampled by the most recent exchange.
func (p *Proc) Inputs() Inputs { return p.last }

// Interrupt returns the interrupt line sampled by the most recent exchange.
func (p *Proc) Interrupt() uint32 { return p.last.Interrupt }

// Finished reports whether the worker has issued a Forever advance.
func (p *Proc) Finished() bool { return p.finished }

// exchange publishes tx, waits for the next Schedule call and then runs any
// level ISR for the returned interrupt line.
func (p *Proc) exchange(tx Transaction) Inputs {
	in := p.handshake(tx)
	p.dispatchLevel()
	return in
}

// handshake publishes tx and waits for the next Schedule call. After a
// Forever advance it returns without waiting: the driver will never resume
// the node again.
func (p *Proc) handshake(tx Transaction) Inputs {
	if p.finished {
		panic(fmt.Sprintf("node %d: bus access after Forever advance", p.node.id))
	}
	p.node.output = tx
	if tx.Finished() {
		p.finished = true
		p.node.rdv.Yield()
		return p.last
	}
	p.node.rdv.Exchange()
	p.last = p.node.inputs
	return p.last
}

// dispatchLevel runs the level ISR for an asserted interrupt line. ISRs may
// issue bus accesses themselves; they are not re-entered while running. An
// ISR that retires the node ends the worker goroutine: the interrupted
// program never resumes.
func (p *Proc) dispatchLevel() {
	level := p.last.Interrupt
	if level == 0 || p.finished || p.node.inISR {
		return
	}
	isr, ok := p.node.isrs[level]
	if !ok {
		return
	}
	saved := p.last
	p.node.inISR = true
	isr(p)
	p.node.inISR = false
	if p.finished {
		logrus.Debugf("worker %d: retired by level %d ISR", p.node.id, level)
		runtime.Goexit()
	}
	// The access that triggered the ISR still sees its own inputs.
	p.last = saved
}

// Write writes data to addr and returns on the next clock edge.
func (p *Proc) Write(addr, data uint32) {
	p.exchange(Transaction{Addr: addr, DataOut: data, RW: AccessWrite})
}

// Read reads the word at addr. The value is sampled by the driver on the
// next clock edge.
func (p *Proc) Read(addr uint32) uint32 {
	return p.exchange(Transaction{Addr: addr, RW: AccessRead}).DataIn
}

// WriteByte writes one byte lane of the word containing addr.
func (p *Proc) WriteByte(addr uint32, b byte) {
	word := addr &^ 3
	shift := (addr & 3) * 8
	old := p.Read(word)
	p.Write(word, old&^(0xff<<shift)|uint32(b)<<shift)
}

// ReadByte reads one byte lane of the word containing addr.
func (p *Proc) ReadByte(addr uint32) byte {
	shift := (addr & 3) * 8
	return byte(p.Read(addr&^3) >> shift)
}

// BurstWrite writes words to consecutive word addresses from addr in one
// transaction. The driver collects the data with BlockAccess.
func (p *Proc) BurstWrite(addr uint32, words []uint32) {
	p.checkBurst("BurstWrite", len(words))
	for i, w := range words {
		p.node.block[i].Store(w)
	}
	p.exchange(Transaction{Addr: addr, RW: AccessWrite, Burst: len(words)})
}

// BurstRead fills words from consecutive word addresses from addr in one
// transaction. The driver deposits the data with BlockAccess. The words are
// copied out of the block buffer before a level ISR can reuse it.
func (p *Proc) BurstRead(addr uint32, words []uint32) {
	p.checkBurst("BurstRead", len(words))
	p.handshake(Transaction{Addr: addr, RW: AccessRead, Burst: len(words)})
	for i := range words {
		words[i] = p.node.block[i].Load()
	}
	p.dispatchLevel()
}

func (p *Proc) checkBurst(op string, n int) {
	if n == 0 || n > len(p.node.block) {
		panic(fmt.Sprintf("%s: burst of %d words outside block buffer of %d", op, n, len(p.node.block)))
	}
}

// Tick idles for ticks cycles. Tick(Forever) retires the node; Tick(DeltaCycle)
// yields without advancing simulation time.
func (p *Proc) Tick(ticks int32) {
	p.exchange(Transaction{RW: AccessIdle, Ticks: ticks})
}

// PollIRQ removes and returns the oldest queued interrupt vector.
func (p *Proc) PollIRQ() (uint32, bool) {
	return p.node.irqs.Pop()
}

// PendingIRQs returns the number of queued interrupt vectors.
func (p *Proc) PendingIRQs() int {
	return p.node.irqs.Len()
}

// RegisterUserCallback installs fn as the node's user callback.
func (p *Proc) RegisterUserCallback(fn func(int32)) {
	p.node.setUserCallback(fn)
}

// RegisterIRQCallback installs a native vectored IRQ callback. It runs on
// the driving goroutine, not the worker's.
func (p *Proc) RegisterIRQCallback(fn NativeIRQ) error {
	return p.node.setIRQCallback(fn)
}

// RegisterEmbeddedIRQ installs an embedded-language vectored IRQ callback.
func (p *Proc) RegisterEmbeddedIRQ(fn EmbeddedIRQ) error {
	return p.node.setIRQCallback(fn)
}

// IRQKind returns the kind of vectored IRQ callback registered on the node,
// whether by this worker or by the driving side.
func (p *Proc) IRQKind() IRQKind {
	return p.node.IRQKind()
}

// QueueIRQ returns an EmbeddedIRQ that queues every vector for this node.
// It is the default embedded handler when no script filters the vectors.
func (p *Proc) QueueIRQ() EmbeddedIRQ {
	n := p.node
	return func(vector uint32, _ int) { n.pushIRQ(vector) }
}

// RegisterLevelISR installs fn to run whenever an exchange returns with the
// interrupt line at level. A nil fn removes the handler.
func (p *Proc) RegisterLevelISR(level uint32, fn func(*Proc)) {
	if level == 0 {
		panic("RegisterLevelISR: level 0 means no interrupt")
	}
	if fn == nil {
		delete(p.node.isrs, level)
		return
	}
	p.node.isrs[level] = fn
}

package vproc

import "fmt"

// Access is the kind of bus access a Transaction requests.
type Access uint8

const (
	AccessIdle  Access = iota // no bus activity, only an advance
	AccessRead                // read Addr; data arrives as Inputs.DataIn on the next call
	AccessWrite               // write DataOut to Addr
)

func (a Access) String() string {
	switch a {
	case AccessIdle:
		return "idle"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return fmt.Sprintf("access(%d)", uint8(a))
	}
}

// Inputs is a node's receive buffer: the values sampled by the driving side
// on the current Schedule call.
type Inputs struct {
	DataIn    uint32
	Interrupt uint32 // 0 = none, otherwise the asserted level or vector
}

// Transaction is a node's send buffer: the bus access a worker requests and
// how far the simulation should advance before scheduling the node again.
type Transaction struct {
	DataOut uint32
	Addr    uint32
	RW      Access
	// Burst is the number of block-buffer words the access covers.
	// Zero means a single-word access through DataOut / Inputs.DataIn.
	Burst int
	// Ticks is the number of whole cycles to wait before the next Schedule
	// call; DeltaCycle re-schedules in the same cycle and Forever retires
	// the node.
	Ticks int32
}

// ReadWrite returns the transaction's read/write line: 1 for a write, else 0.
func (t Transaction) ReadWrite() int {
	if t.RW == AccessWrite {
		return 1
	}
	return 0
}

// Finished reports whether the transaction retires its node.
func (t Transaction) Finished() bool {
	return t.Ticks == Forever
}

func (t Transaction) String() string {
	return fmt.Sprintf("{%s addr=%#08x data=%#08x burst=%d ticks=%d}", t.RW, t.Addr, t.DataOut, t.Burst, t.Ticks)
}

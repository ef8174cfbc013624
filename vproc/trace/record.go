// Package trace provides transaction and interrupt trace recording for
// co-simulation runs. This package has no dependencies on vproc/; it stores
// pure data types.
package trace

// TransactionRecord captures the result of a single Schedule call.
type TransactionRecord struct {
	Node    int
	Cycle   int64
	Access  string // "idle", "read" or "write"
	Addr    uint32
	Data    uint32 // written data, or read data once sampled
	Burst   int
	Ticks   int32
	Async   bool // answered by the vectored IRQ short-circuit
	Retired bool // the transaction carried the Forever advance
}

// Delivery names how an interrupt reached a node.
type Delivery string

const (
	DeliveryVectored Delivery = "vectored"
	DeliveryLevel    Delivery = "level"
)

// InterruptRecord captures one interrupt raised by the engine.
type InterruptRecord struct {
	Node     int
	Cycle    int64
	Vector   uint32
	Delivery Delivery
}

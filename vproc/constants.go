package vproc

import "math"

const (
	// MaxNodes is the number of node slots in a Registry. Valid node ids are
	// in [0, MaxNodes).
	MaxNodes = 64

	// IRQQueueSize is the capacity of each node's vectored interrupt queue.
	// Must be a power of two.
	IRQQueueSize = 256

	// DeltaCycle is the smallest indivisible advance: the caller should call
	// Schedule again for the node without advancing the clock.
	DeltaCycle int32 = -1

	// Forever is the advance a worker returns when it will never issue
	// another transaction. Schedule must not be called for the node again.
	Forever int32 = math.MaxInt32

	// DefaultBlockWords is the block-transfer buffer length used when
	// Config.BlockWords is zero.
	DefaultBlockWords = 4096
)

// Process exit codes for fatal configuration and protocol errors.
const (
	ExitNodeRange  = 3 // node id outside [0, MaxNodes)
	ExitProtocol   = 4 // Schedule on an unknown or finished node
	ExitBlockRange = 5 // BlockAccess index outside the block buffer
)

const irqQueueMask = IRQQueueSize - 1

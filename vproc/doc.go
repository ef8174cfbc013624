// Package vproc is the synchronization core of a lockstep co-simulation bridge.
//
// # Reading Guide
//
// Start with these files:
//   - transaction.go: the receive buffer (Inputs) and send buffer (Transaction)
//   - rendezvous.go: the two binary gates that alternate control between the
//     driving goroutine and a node's worker goroutine
//   - scheduler.go: InitNode and Schedule, the per-clock-edge entry point
//   - worker.go: Proc, the API a worker program uses to issue bus accesses
//
// # Architecture
//
// A Scheduler owns a Registry of at most MaxNodes nodes. Each node has exactly
// one worker goroutine, started by InitNode, which runs an Entry function.
// The driving goroutine (normally a simulation engine, see vproc/engine) calls
// Schedule once per clock edge per node. Schedule hands the sampled inputs to
// the worker, blocks until the worker produces its next Transaction and
// returns it. Only one of the two goroutines is ever runnable for a given
// node, so node buffers need no locks.
//
// Interrupts reach a worker in one of two ways:
//   - level: the interrupt line is sampled into the receive buffer on the next
//     Schedule call and the worker sees it when its exchange returns
//   - vectored: NotifyIRQ runs a registered NativeIRQ or EmbeddedIRQ callback
//     on the driving goroutine; embedded callbacks queue the vector in the
//     node's IRQQueue for the worker to poll. While a vectored callback is
//     registered, Schedule calls with an asserted interrupt line return
//     immediately with a DeltaCycle advance instead of waking the worker.
//
// Sub-packages:
//   - vproc/engine/: a cycle-driven simulation engine that drives Schedule
//   - vproc/script/: JavaScript IRQ handlers and worker programs (goja)
//   - vproc/trace/: transaction and interrupt trace recording
//   - vproc/workload/: built-in worker programs
package vproc

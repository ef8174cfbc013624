// Package script hosts JavaScript code for the scheduler using goja.
//
// Two kinds of script are supported:
//   - IRQ handlers (IRQHandler): compiled once and registered on a node as a
//     vproc.EmbeddedIRQ. The script defines onIRQ(vector, node) and decides
//     which vectors to queue with the host function pushIRQ(node, vector).
//   - worker programs (Program): a main() function run on a node's worker
//     goroutine, driving the bus through the global proc object.
//
// A goja.Runtime is not safe for concurrent use. IRQ handlers run on the
// driving goroutine and serialise calls with a mutex; each worker program
// gets its own runtime on its own goroutine.
package script

// Package engine is a deterministic cycle-driven simulation engine that
// drives a vproc.Scheduler the way an HDL simulator drives its foreign
// tasks: once per clock edge per node, with interrupts raised at chosen
// cycles and bus transactions applied to a sparse word memory.
//
// Events are ordered by (cycle, priority, sequence). At equal cycles
// interrupts are raised before user notifications, and both before node
// wakes, so an interrupt asserted at cycle c is sampled by a wake at c.
package engine

// Package workload provides built-in worker programs for the scheduler.
package workload

import (
	"fmt"
	"sort"

	"github.com/cosim-bridge/vproc/vproc"
)

// Params configures a built-in program.
type Params struct {
	Base       uint32 // first byte address the program touches
	Words      uint32 // size of the memory window in words
	Iterations int    // loop count for periodic programs
	Interval   int32  // idle cycles between iterations
	Seed       int64  // master seed for randomised programs
}

// DefaultParams returns the parameters used when a run file gives none.
func DefaultParams() Params {
	return Params{Base: 0, Words: 1024, Iterations: 16, Interval: 10, Seed: 42}
}

// Factory builds a worker Entry from params.
type Factory func(Params) vproc.Entry

var programs = map[string]Factory{
	"bitswap":  BitSwap,
	"idle":     Idle,
	"irqcount": IRQCount,
	"irqpoll":  IRQPoll,
	"levelisr": LevelISR,
	"memcopy":  MemCopy,
	"random":   Random,
}

// ValidPrograms reports whether name is a built-in program.
func ValidPrograms(name string) bool {
	_, ok := programs[name]
	return ok
}

// Names returns the built-in program names in sorted order.
func Names() []string {
	names := make([]string, 0, len(programs))
	for n := range programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the factory for a built-in program.
func Lookup(name string) (Factory, error) {
	f, ok := programs[name]
	if !ok {
		return nil, fmt.Errorf("unknown program %q (valid: %v)", name, Names())
	}
	return f, nil
}

// ByNode returns an Entry that runs entries[p.Node()], retiring nodes
// without an entry immediately.
func ByNode(entries map[int]vproc.Entry) vproc.Entry {
	return func(p *vproc.Proc) {
		if e, ok := entries[p.Node()]; ok && e != nil {
			e(p)
		}
	}
}

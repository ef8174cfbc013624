package vproc

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Registry is a fixed arena of MaxNodes node slots. A slot is filled once by
// Init and never emptied.
//
// Init is not meant to race with itself for the same id: the driving side
// issues exactly one initialisation per node before scheduling it. Lookups
// of distinct ids are safe from any goroutine.
type Registry struct {
	slots      [MaxNodes]atomic.Pointer[Node]
	blockWords int
}

// NewRegistry returns an empty registry whose nodes get block buffers of
// blockWords words (DefaultBlockWords when zero).
func NewRegistry(blockWords int) *Registry {
	if blockWords <= 0 {
		blockWords = DefaultBlockWords
	}
	return &Registry{blockWords: blockWords}
}

// ValidID reports whether id names a registry slot.
func ValidID(id int) bool {
	return id >= 0 && id < MaxNodes
}

// Init returns the node for id, creating it on first use. created is true
// only for the call that allocated the node. Init panics on an invalid id;
// callers validate first.
func (r *Registry) Init(id int) (n *Node, created bool) {
	if !ValidID(id) {
		panic("Registry.Init: node id out of range")
	}
	if n = r.slots[id].Load(); n != nil {
		logrus.WithField("node", id).Warn("node already initialised; keeping existing state")
		return n, false
	}
	n = newNode(id, r.blockWords)
	if !r.slots[id].CompareAndSwap(nil, n) {
		return r.slots[id].Load(), false
	}
	return n, true
}

// Get returns the node for id, or nil when id is out of range or the slot is
// still empty.
func (r *Registry) Get(id int) *Node {
	if !ValidID(id) {
		return nil
	}
	return r.slots[id].Load()
}

// Len returns the number of initialised nodes.
func (r *Registry) Len() int {
	count := 0
	for i := range r.slots {
		if r.slots[i].Load() != nil {
			count++
		}
	}
	return count
}

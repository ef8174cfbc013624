package engine

import "sort"

// Memory is a sparse word-addressed memory. Addresses are byte addresses;
// the low two bits are ignored.
type Memory struct {
	words map[uint32]uint32
}

// NewMemory returns an empty memory; unwritten words read as zero.
func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]uint32)}
}

// Load returns the word containing addr.
func (m *Memory) Load(addr uint32) uint32 {
	return m.words[addr&^3]
}

// Store writes the word containing addr.
func (m *Memory) Store(addr, value uint32) {
	m.words[addr&^3] = value
}

// Fill stores words at consecutive word addresses from base.
func (m *Memory) Fill(base uint32, words []uint32) {
	for i, w := range words {
		m.Store(base+uint32(i)*4, w)
	}
}

// Len returns the number of words ever written.
func (m *Memory) Len() int {
	return len(m.words)
}

// Addresses returns the written word addresses in ascending order.
func (m *Memory) Addresses() []uint32 {
	addrs := make([]uint32, 0, len(m.words))
	for a := range m.words {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

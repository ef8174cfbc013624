package workload

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// NodeRNG returns a deterministically seeded RNG for node.
//
// Derivation: seed XOR fnv1a64("node_<id>"), so nodes sharing a master seed
// draw independent streams and a run is reproducible from its seed alone.
// Not safe for concurrent use; each worker owns its own.
func NodeRNG(seed int64, node int) *rand.Rand {
	return rand.New(rand.NewSource(seed ^ fnv1a64("node_"+strconv.Itoa(node))))
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}

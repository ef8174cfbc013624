package workload

import (
	"math"

	"github.com/cosim-bridge/vproc/vproc"
)

// Random issues Iterations randomly chosen bus operations inside the
// window: single reads, single writes of random data, and idle gaps of up to
// Interval cycles. The sequence depends only on Seed and the node id.
func Random(params Params) vproc.Entry {
	return func(p *vproc.Proc) {
		if params.Words == 0 {
			return
		}
		rng := NodeRNG(params.Seed, p.Node())
		gap := params.Interval
		switch {
		case gap < 0:
			gap = 0
		case gap == math.MaxInt32:
			// Int31n(gap+1) would overflow; Forever is not an idle gap anyway.
			gap = math.MaxInt32 - 1
		}
		for i := 0; i < params.Iterations; i++ {
			addr := params.Base + uint32(rng.Intn(int(params.Words)))*4
			switch rng.Intn(3) {
			case 0:
				p.Read(addr)
			case 1:
				p.Write(addr, rng.Uint32())
			default:
				p.Tick(rng.Int31n(gap + 1))
			}
		}
	}
}

package workload

import (
	"math/bits"

	"github.com/sirupsen/logrus"

	"github.com/cosim-bridge/vproc/vproc"
)

// bitSwapBlockWords is the largest burst the bit-swap walker issues.
const bitSwapBlockWords = 4

// BitSwap walks the memory window, replacing every word with its bit
// reversal: first with single interleaved reads and writes, then with bursts
// of growing size, then single accesses again for the tail.
func BitSwap(params Params) vproc.Entry {
	return func(p *vproc.Proc) {
		log := logrus.WithField("node", p.Node())
		end := params.Base + params.Words*4
		addr := params.Base

		log.Info("bitswap: single interleaved reads and writes")
		for i := 0; i < 16 && addr < end; i++ {
			p.Write(addr, bits.Reverse32(p.Read(addr)))
			addr += 4
		}
		p.Tick(10)

		log.Info("bitswap: burst reads and writes of different sizes")
		buf := make([]uint32, bitSwapBlockWords)
		size := 0
		for addr < end {
			size = size%bitSwapBlockWords + 1
			if remaining := int((end - addr) / 4); size > remaining {
				break
			}
			block := buf[:size]
			p.BurstRead(addr, block)
			for i := range block {
				block[i] = bits.Reverse32(block[i])
			}
			p.BurstWrite(addr, block)
			addr += uint32(size) * 4
		}
		p.Tick(10)

		log.Info("bitswap: finishing with single accesses")
		for addr < end {
			p.Write(addr, bits.Reverse32(p.Read(addr)))
			addr += 4
		}
		p.Tick(vproc.Forever)
	}
}

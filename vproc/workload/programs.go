package workload

import (
	"github.com/sirupsen/logrus"

	"github.com/cosim-bridge/vproc/vproc"
)

// Idle waits Iterations*Interval cycles and retires.
func Idle(params Params) vproc.Entry {
	return func(p *vproc.Proc) {
		for i := 0; i < params.Iterations; i++ {
			p.Tick(params.Interval)
		}
	}
}

// MemCopy copies the first half of the window onto the second half, one
// word at a time.
func MemCopy(params Params) vproc.Entry {
	return func(p *vproc.Proc) {
		half := params.Words / 2
		for i := uint32(0); i < half; i++ {
			src := params.Base + i*4
			p.Write(src+half*4, p.Read(src))
		}
	}
}

// IRQCount installs a native vectored IRQ callback that counts interrupts
// and, every Interval cycles, writes the count to Base and the last vector
// to Base+4.
func IRQCount(params Params) vproc.Entry {
	return func(p *vproc.Proc) {
		var count, last uint32
		if err := p.RegisterIRQCallback(func(vector uint32) {
			count++
			last = vector
		}); err != nil {
			logrus.WithField("node", p.Node()).Errorf("irqcount: %v", err)
			return
		}
		for i := 0; i < params.Iterations; i++ {
			p.Tick(params.Interval)
			p.Write(params.Base, count)
			p.Write(params.Base+4, last)
		}
	}
}

// IRQPoll queues vectored interrupts (through a script handler when the
// driver installed one, otherwise directly) and logs each polled vector to
// consecutive words from Base+4, keeping the count at Base.
func IRQPoll(params Params) vproc.Entry {
	return func(p *vproc.Proc) {
		if p.IRQKind() == vproc.IRQNone {
			if err := p.RegisterEmbeddedIRQ(p.QueueIRQ()); err != nil {
				logrus.WithField("node", p.Node()).Errorf("irqpoll: %v", err)
				return
			}
		}
		var n uint32
		for i := 0; i < params.Iterations; i++ {
			p.Tick(params.Interval)
			for {
				v, ok := p.PollIRQ()
				if !ok {
					break
				}
				n++
				if n < params.Words {
					p.Write(params.Base+n*4, v)
				}
				p.Write(params.Base, n)
			}
		}
	}
}

// LevelISR installs level ISRs for levels 1 to 7. Each ISR increments the
// counter word at Base+level*4.
func LevelISR(params Params) vproc.Entry {
	return func(p *vproc.Proc) {
		for level := uint32(1); level <= 7; level++ {
			addr := params.Base + level*4
			p.RegisterLevelISR(level, func(p *vproc.Proc) {
				p.Write(addr, p.Read(addr)+1)
			})
		}
		for i := 0; i < params.Iterations; i++ {
			p.Tick(params.Interval)
		}
	}
}

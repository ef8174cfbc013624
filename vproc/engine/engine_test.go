package engine

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosim-bridge/vproc/vproc"
	"github.com/cosim-bridge/vproc/vproc/trace"
)

func newEngine(t *testing.T, entry vproc.Entry, opts Options) *Engine {
	t.Helper()
	s := vproc.NewScheduler(vproc.Config{BlockWords: 16}, entry)
	return New(s, opts)
}

func TestEngine_ReadWrite_AppliesToMemory(t *testing.T) {
	// GIVEN a worker that writes, reads back and copies a word
	got := make(chan uint32, 1)
	eng := newEngine(t, func(p *vproc.Proc) {
		p.Write(0x10, 5)
		v := p.Read(0x10)
		got <- v
		p.Write(0x14, v+1)
		p.Tick(10)
	}, Options{})
	eng.AddNode(0)

	// WHEN the engine runs to completion
	require.NoError(t, eng.Run())

	// THEN memory holds both writes and the read saw the first one
	assert.Equal(t, uint32(5), <-got)
	assert.Equal(t, uint32(5), eng.Memory.Load(0x10))
	assert.Equal(t, uint32(6), eng.Memory.Load(0x14))
	// writes at 0,2; read at 1; tick(10) at 3 wakes at 3+1+10
	assert.Equal(t, int64(14), eng.Clock)
	assert.True(t, eng.Retired(0))
	assert.Equal(t, 0, eng.Active())
}

func TestEngine_LevelInterrupt_SampledOnNextWake(t *testing.T) {
	// GIVEN a worker polling the interrupt line each cycle
	eng := newEngine(t, func(p *vproc.Proc) {
		for p.Interrupt() == 0 {
			p.Tick(0)
		}
		p.Write(0x100, p.Interrupt())
	}, Options{Trace: trace.TraceConfig{Level: trace.TraceLevelTransactions}})
	eng.AddNode(0)

	// WHEN an interrupt is raised at cycle 5
	require.NoError(t, eng.RaiseIRQ(0, 5, 7))
	require.NoError(t, eng.Run())

	// THEN the worker saw it at cycle 5 through the receive buffer
	assert.Equal(t, uint32(7), eng.Memory.Load(0x100))
	require.Len(t, eng.Trace.Interrupts, 1)
	assert.Equal(t, trace.DeliveryLevel, eng.Trace.Interrupts[0].Delivery)
	sum := trace.Summarize(eng.Trace)
	require.Len(t, sum.Nodes, 1)
	assert.Equal(t, 1, sum.Nodes[0].Writes)
	assert.Zero(t, sum.Nodes[0].ShortCircuits)
	assert.Equal(t, int64(6), sum.Nodes[0].RetiredAtCycle)
}

func TestEngine_VectoredInterrupt_ShortCircuitsAndQueues(t *testing.T) {
	// GIVEN a worker that queues vectored interrupts and polls for them
	eng := newEngine(t, func(p *vproc.Proc) {
		if err := p.RegisterEmbeddedIRQ(p.QueueIRQ()); err != nil {
			panic(err)
		}
		for p.PendingIRQs() == 0 {
			p.Tick(0)
		}
		v, _ := p.PollIRQ()
		p.Write(0x200, v)
	}, Options{Trace: trace.TraceConfig{Level: trace.TraceLevelTransactions}})
	eng.AddNode(0)

	// WHEN a vector is raised at cycle 3
	require.NoError(t, eng.RaiseIRQ(0, 3, 9))
	require.NoError(t, eng.Run())

	// THEN it was delivered out of band without an extra handshake
	assert.Equal(t, uint32(9), eng.Memory.Load(0x200))
	sum := trace.Summarize(eng.Trace)
	require.Len(t, sum.Nodes, 1)
	assert.Equal(t, 1, sum.Nodes[0].ShortCircuits)
	assert.Equal(t, 1, sum.Nodes[0].VectoredIRQs)
}

func TestEngine_Burst_UsesBlockAccess(t *testing.T) {
	sum := make(chan uint32, 1)
	eng := newEngine(t, func(p *vproc.Proc) {
		p.BurstWrite(0x400, []uint32{1, 2, 3})
		buf := make([]uint32, 3)
		p.BurstRead(0x400, buf)
		sum <- buf[0] + buf[1] + buf[2]
	}, Options{})
	eng.AddNode(0)

	require.NoError(t, eng.Run())

	assert.Equal(t, uint32(6), <-sum)
	assert.Equal(t, uint32(3), eng.Memory.Load(0x408))
	// two 3-word bursts occupy cycles 0-5
	assert.Equal(t, int64(6), eng.Clock)
}

func TestEngine_Horizon_StopsRun(t *testing.T) {
	eng := newEngine(t, func(p *vproc.Proc) {
		for {
			p.Tick(100)
		}
	}, Options{Horizon: 250})
	eng.AddNode(0)

	require.NoError(t, eng.Run())

	assert.Equal(t, int64(250), eng.Clock)
	assert.Equal(t, 1, eng.Active())
	assert.False(t, eng.Retired(0))
}

func TestEngine_DeltaLoop_Aborts(t *testing.T) {
	eng := newEngine(t, func(p *vproc.Proc) {
		for {
			p.Tick(vproc.DeltaCycle)
		}
	}, Options{})
	eng.AddNode(0)

	err := eng.Run()

	assert.ErrorIs(t, err, ErrDeltaLoop)
	assert.Equal(t, int64(0), eng.Clock)
}

func TestEngine_UserEvent_CallsCallback(t *testing.T) {
	var got []int32
	eng := newEngine(t, func(p *vproc.Proc) {
		p.RegisterUserCallback(func(v int32) { got = append(got, v) })
		p.Tick(5)
	}, Options{})
	eng.AddNode(0)
	require.NoError(t, eng.NotifyUserAt(0, 2, 77))

	require.NoError(t, eng.Run())

	assert.Equal(t, []int32{77}, got)
}

func TestEngine_MultipleNodes_Lockstep(t *testing.T) {
	// GIVEN three nodes each writing their id at a node-specific cycle
	eng := newEngine(t, func(p *vproc.Proc) {
		p.Tick(int32(p.Node()))
		p.Write(uint32(p.Node())*4, uint32(p.Node())+100)
	}, Options{})
	for id := 0; id < 3; id++ {
		eng.AddNode(id)
	}

	require.NoError(t, eng.Run())

	for id := uint32(0); id < 3; id++ {
		assert.Equal(t, id+100, eng.Memory.Load(id*4))
	}
	assert.Equal(t, 0, eng.Active())
}

func TestEngine_RaiseIRQ_Validation(t *testing.T) {
	eng := newEngine(t, func(p *vproc.Proc) {}, Options{})
	eng.AddNode(0)

	assert.Error(t, eng.RaiseIRQ(0, 1, 0))
	assert.ErrorIs(t, eng.RaiseIRQ(5, 1, 1), vproc.ErrUnknownNode)
	assert.ErrorIs(t, eng.NotifyUserAt(5, 1, 1), vproc.ErrUnknownNode)
}

func TestEventQueue_OrdersByTimePriorityThenSequence(t *testing.T) {
	q := &EventQueue{}
	push := func(seq int64, ev Event) { heap.Push(q, eventEntry{event: ev, seqID: seq}) }
	push(0, &WakeEvent{time: 5, node: 1})
	push(1, &IRQEvent{time: 5, node: 1, vector: 1})
	push(2, &WakeEvent{time: 2, node: 0})
	push(3, &UserEvent{time: 5, node: 1})
	push(4, &WakeEvent{time: 5, node: 0})

	var order []string
	for q.Len() > 0 {
		e := heap.Pop(q).(eventEntry)
		switch e.event.(type) {
		case *WakeEvent:
			order = append(order, "wake")
		case *IRQEvent:
			order = append(order, "irq")
		case *UserEvent:
			order = append(order, "user")
		}
	}

	assert.Equal(t, []string{"wake", "irq", "user", "wake", "wake"}, order)
}

func TestMemory_FillAndAddresses(t *testing.T) {
	m := NewMemory()
	m.Fill(0x100, []uint32{1, 2})
	m.Store(0x3, 9)

	assert.Equal(t, uint32(9), m.Load(0x0))
	assert.Equal(t, uint32(2), m.Load(0x104))
	assert.Equal(t, []uint32{0x0, 0x100, 0x104}, m.Addresses())
	assert.Equal(t, 3, m.Len())
}

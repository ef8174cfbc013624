package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cosim-bridge/vproc/vproc"
	"github.com/cosim-bridge/vproc/vproc/engine"
	"github.com/cosim-bridge/vproc/vproc/script"
	"github.com/cosim-bridge/vproc/vproc/trace"
	"github.com/cosim-bridge/vproc/vproc/workload"
)

// buildRun turns a validated RunConfig into a scheduler and an engine ready
// to Run.
func buildRun(cfg *RunConfig) (*vproc.Scheduler, *engine.Engine, error) {
	entries := make(map[int]vproc.Entry, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		entry, err := nodeEntry(n, cfg.Seed)
		if err != nil {
			return nil, nil, err
		}
		entries[n.ID] = entry
	}

	sched := vproc.NewScheduler(vproc.Config{BlockWords: cfg.BlockWords}, workload.ByNode(entries))

	mem := engine.NewMemory()
	for _, r := range cfg.Memory {
		if r.Fill != nil {
			words := make([]uint32, r.Count)
			for i := range words {
				words[i] = *r.Fill
			}
			mem.Fill(r.Base, words)
			continue
		}
		mem.Fill(r.Base, r.Words)
	}

	eng := engine.New(sched, engine.Options{
		Horizon: cfg.Horizon,
		Trace:   trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace)},
		Memory:  mem,
	})

	for _, n := range cfg.Nodes {
		eng.AddNode(n.ID)
		if n.IRQScript == "" {
			continue
		}
		src, err := os.ReadFile(n.IRQScript)
		if err != nil {
			return nil, nil, fmt.Errorf("node %d: reading IRQ script: %w", n.ID, err)
		}
		h, err := script.NewIRQHandler(n.IRQScript, string(src), sched.PushIRQ)
		if err != nil {
			return nil, nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		if err := sched.SetIRQCallback(n.ID, h.Callback()); err != nil {
			return nil, nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		logrus.Infof("node %d: vectored IRQs handled by %s", n.ID, n.IRQScript)
	}

	for _, irq := range cfg.Interrupts {
		if err := eng.RaiseIRQ(irq.Node, irq.Cycle, irq.Vector); err != nil {
			return nil, nil, err
		}
	}
	for _, u := range cfg.UserEvents {
		if err := eng.NotifyUserAt(u.Node, u.Cycle, u.Value); err != nil {
			return nil, nil, err
		}
	}
	return sched, eng, nil
}

func nodeEntry(n NodeConfig, seed int64) (vproc.Entry, error) {
	if n.Script != "" {
		pr, err := script.LoadProgram(n.Script)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		return pr.Entry(), nil
	}
	factory, err := workload.Lookup(n.Program)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", n.ID, err)
	}
	return factory(n.params(seed)), nil
}

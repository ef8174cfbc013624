package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/cosim-bridge/vproc/vproc"
	"github.com/cosim-bridge/vproc/vproc/engine"
	"github.com/cosim-bridge/vproc/vproc/trace"
)

// printReport writes the end-of-run summary: per-node scheduler statistics
// and, when tracing was enabled, the trace summary.
func printReport(w io.Writer, sched *vproc.Scheduler, eng *engine.Engine, ids []int, start time.Time) {
	fmt.Fprintln(w, "=== Co-simulation Report ===")
	fmt.Fprintf(w, "Final cycle          : %d\n", eng.Clock)
	fmt.Fprintf(w, "Nodes retired        : %d/%d\n", len(ids)-eng.Active(), len(ids))
	fmt.Fprintf(w, "Memory words touched : %d\n", eng.Memory.Len())
	fmt.Fprintf(w, "Wall time            : %s\n", time.Since(start).Round(time.Millisecond))

	for _, id := range ids {
		st, err := sched.Stats(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "--- node %d (retired=%t) ---\n", id, eng.Retired(id))
		fmt.Fprintf(w, "  handshakes     : %d\n", st.Handshakes)
		fmt.Fprintf(w, "  short-circuits : %d\n", st.ShortCircuits)
		fmt.Fprintf(w, "  block accesses : %d\n", st.BlockAccesses)
		fmt.Fprintf(w, "  user calls     : %d\n", st.UserCalls)
		fmt.Fprintf(w, "  irqs           : native=%d embedded=%d queued=%d dropped=%d\n",
			st.IRQsNative, st.IRQsEmbedded, st.IRQsQueued, st.IRQsDropped)
	}

	if eng.Trace == nil {
		return
	}
	sum := trace.Summarize(eng.Trace)
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Run ID               : %s\n", sum.RunID)
	fmt.Fprintf(w, "Transactions         : %d\n", sum.TotalTransactions)
	fmt.Fprintf(w, "Interrupts           : %d\n", sum.TotalInterrupts)
	for _, ns := range sum.Nodes {
		fmt.Fprintf(w, "  node %d: reads=%d writes=%d idles=%d burst_words=%d short_circuits=%d level_irqs=%d vectored_irqs=%d last_cycle=%d",
			ns.Node, ns.Reads, ns.Writes, ns.Idles, ns.BurstWords, ns.ShortCircuits, ns.LevelIRQs, ns.VectoredIRQs, ns.LastCycle)
		if ns.Retired {
			fmt.Fprintf(w, " retired_at=%d", ns.RetiredAtCycle)
		}
		fmt.Fprintln(w)
	}
}

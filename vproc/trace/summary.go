package trace

import "sort"

// NodeSummary aggregates one node's records.
type NodeSummary struct {
	Node           int
	Reads          int
	Writes         int
	Idles          int
	BurstWords     int
	ShortCircuits  int
	LevelIRQs      int
	VectoredIRQs   int
	LastCycle      int64
	Retired        bool
	RetiredAtCycle int64
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	RunID             string
	TotalTransactions int
	TotalInterrupts   int
	Nodes             []NodeSummary // sorted by node id
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}
	summary.RunID = st.RunID
	summary.TotalTransactions = len(st.Transactions)
	summary.TotalInterrupts = len(st.Interrupts)

	byNode := make(map[int]*NodeSummary)
	get := func(id int) *NodeSummary {
		ns, ok := byNode[id]
		if !ok {
			ns = &NodeSummary{Node: id}
			byNode[id] = ns
		}
		return ns
	}

	for _, r := range st.Transactions {
		ns := get(r.Node)
		if r.Cycle > ns.LastCycle {
			ns.LastCycle = r.Cycle
		}
		if r.Async {
			ns.ShortCircuits++
			continue
		}
		switch r.Access {
		case "read":
			ns.Reads++
		case "write":
			ns.Writes++
		default:
			ns.Idles++
		}
		ns.BurstWords += r.Burst
		if r.Retired {
			ns.Retired = true
			ns.RetiredAtCycle = r.Cycle
		}
	}
	for _, r := range st.Interrupts {
		ns := get(r.Node)
		switch r.Delivery {
		case DeliveryVectored:
			ns.VectoredIRQs++
		case DeliveryLevel:
			ns.LevelIRQs++
		}
	}

	for _, ns := range byNode {
		summary.Nodes = append(summary.Nodes, *ns)
	}
	sort.Slice(summary.Nodes, func(i, j int) bool {
		return summary.Nodes[i].Node < summary.Nodes[j].Node
	})
	return summary
}

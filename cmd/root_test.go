package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosim-bridge/vproc/vproc/workload"
)

func u32(v uint32) *uint32 { return &v }

func TestBuildRun_MemCopyAgainstPreloadedMemory(t *testing.T) {
	// GIVEN a memcopy node over an eight-word window with the low half preloaded
	cfg := &RunConfig{
		Nodes:  []NodeConfig{{ID: 0, Program: "memcopy", Params: &ParamsConfig{Base: u32(0x100), Words: u32(8)}}},
		Memory: []MemRegion{{Base: 0x100, Words: []uint32{1, 2, 3, 4}}},
	}
	require.NoError(t, cfg.Validate())

	// WHEN the run is built and executed
	sched, eng, err := buildRun(cfg)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	// THEN the high half holds a copy and the node retired
	for i := uint32(0); i < 4; i++ {
		assert.Equal(t, i+1, eng.Memory.Load(0x110+i*4), "word %d", i)
	}
	assert.True(t, eng.Retired(0))
	assert.True(t, sched.Finished(0))
}

func TestBuildRun_FillRegion(t *testing.T) {
	cfg := &RunConfig{
		Nodes:  []NodeConfig{{ID: 0, Program: "idle"}},
		Memory: []MemRegion{{Base: 0x40, Fill: u32(0xabcd), Count: 3}},
	}
	_, eng, err := buildRun(cfg)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x40, 0x44, 0x48}, eng.Memory.Addresses())
	assert.Equal(t, uint32(0xabcd), eng.Memory.Load(0x48))
}

func TestBuildRun_ScriptedNodeWithIRQScript(t *testing.T) {
	// GIVEN a scripted worker that idles, then stores the first queued vector,
	// and a script IRQ handler that queues vectors for it
	dir := t.TempDir()
	writeFile(t, dir, "worker.js", `
function main() {
  proc.tick(20);
  var v = proc.pollIRQ();
  proc.write(0x200, v === null ? 0 : v);
}
`)
	writeFile(t, dir, "irq.js", `function onIRQ(vector, node) { pushIRQ(node, vector + 1); }`)
	path := writeFile(t, dir, "run.yaml", `
nodes:
  - {id: 2, script: worker.js, irq_script: irq.js}
interrupts:
  - {node: 2, cycle: 5, vector: 0x41}
`)
	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	// WHEN the run executes
	sched, eng, err := buildRun(cfg)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	// THEN the handler's rewritten vector reached the worker through the queue
	assert.Equal(t, uint32(0x42), eng.Memory.Load(0x200))
	st, err := sched.Stats(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.IRQsEmbedded)
	assert.Equal(t, int64(1), st.ShortCircuits)
	assert.True(t, eng.Retired(2))
}

func TestBuildRun_MissingScript(t *testing.T) {
	cfg := &RunConfig{Nodes: []NodeConfig{{ID: 0, Script: t.TempDir() + "/missing.js"}}}
	_, _, err := buildRun(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node 0")
}

func TestRunSimulation_PrintsReport(t *testing.T) {
	// GIVEN two bitswap nodes with transaction tracing
	cfg := &RunConfig{
		Trace: "transactions",
		Nodes: []NodeConfig{{ID: 1, Program: "bitswap"}, {ID: 0, Program: "bitswap", Params: &ParamsConfig{Base: u32(0x1000)}}},
	}
	require.NoError(t, cfg.Validate())
	var out bytes.Buffer

	// WHEN the simulation runs
	err := runSimulation(cfg, &out)

	// THEN the report lists both nodes, in id order, and the trace summary
	require.NoError(t, err)
	s := out.String()
	assert.Contains(t, s, "Co-simulation Report")
	assert.Contains(t, s, "Nodes retired        : 2/2")
	assert.Contains(t, s, "Trace Summary")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("--- node 0")), bytes.Index(out.Bytes(), []byte("--- node 1")))
}

func TestRunSimulation_HorizonStopsEarly(t *testing.T) {
	// GIVEN an idle node that would run for 1000 cycles and a 50-cycle horizon
	iters, interval := 100, int32(10)
	cfg := &RunConfig{
		Horizon: 50,
		Nodes:   []NodeConfig{{ID: 0, Program: "idle", Params: &ParamsConfig{Iterations: &iters, Interval: &interval}}},
	}
	var out bytes.Buffer

	// WHEN the simulation runs
	require.NoError(t, runSimulation(cfg, &out))

	// THEN it stops at the horizon with the node still active
	assert.Contains(t, out.String(), "Final cycle          : 50")
	assert.Contains(t, out.String(), "Nodes retired        : 0/1")
	assert.NotContains(t, out.String(), "Trace Summary")
}

func TestProgramsCmd_ListsBuiltins(t *testing.T) {
	var out bytes.Buffer
	programsCmd.SetOut(&out)
	defer programsCmd.SetOut(nil)

	programsCmd.Run(programsCmd, nil)

	for _, name := range workload.Names() {
		assert.Contains(t, out.String(), name+"\n")
	}
}

func TestRunConfigFromFlags_NoRunFile(t *testing.T) {
	// GIVEN flag values without a run file
	configPath, numNodes, program, horizon = "", 3, "idle", 99
	defer func() { configPath, numNodes, program, horizon = "", 1, "bitswap", 0 }()

	// WHEN the run config is derived
	cfg, err := runConfigFromFlags(runCmd)

	// THEN one node per id runs the chosen program
	require.NoError(t, err)
	require.Len(t, cfg.Nodes, 3)
	for i, n := range cfg.Nodes {
		assert.Equal(t, i, n.ID)
		assert.Equal(t, "idle", n.Program)
	}
	assert.Equal(t, int64(99), cfg.Horizon)
}

func TestBuildRun_NegativeFillCountRejectedBeforeBuild(t *testing.T) {
	// GIVEN a run file whose fill region has a negative count
	path := writeFile(t, t.TempDir(), "run.yaml", `
nodes:
  - {id: 0, program: idle}
memory:
  - {base: 0x40, fill: 0xff, count: -1}
`)
	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)

	// WHEN it is validated
	err = cfg.Validate()

	// THEN it is rejected instead of reaching buildRun
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory[0]")
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cosim-bridge/vproc/vproc"
	"github.com/cosim-bridge/vproc/vproc/trace"
	"github.com/cosim-bridge/vproc/vproc/workload"
)

// RunConfig is the structure of a run file passed with --config.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type RunConfig struct {
	Horizon    int64        `yaml:"horizon"`
	BlockWords int          `yaml:"block_words"`
	Trace      string       `yaml:"trace"`
	Seed       int64        `yaml:"seed"` // master seed for randomised programs (default when 0)
	Nodes      []NodeConfig `yaml:"nodes"`
	Interrupts []IRQConfig  `yaml:"interrupts"`
	UserEvents []UserConfig `yaml:"user_events"`
	Memory     []MemRegion  `yaml:"memory"`
}

// NodeConfig selects the worker program for one node. Exactly one of
// Program and Script is set.
type NodeConfig struct {
	ID        int           `yaml:"id"`
	Program   string        `yaml:"program"`    // built-in program name
	Script    string        `yaml:"script"`     // JavaScript worker program path
	IRQScript string        `yaml:"irq_script"` // JavaScript vectored IRQ handler path
	Params    *ParamsConfig `yaml:"params"`
}

// ParamsConfig overrides built-in program parameters. Nil fields keep the
// defaults.
type ParamsConfig struct {
	Base       *uint32 `yaml:"base"`
	Words      *uint32 `yaml:"words"`
	Iterations *int    `yaml:"iterations"`
	Interval   *int32  `yaml:"interval"`
	Seed       *int64  `yaml:"seed"`
}

// IRQConfig raises Vector on Node at Cycle.
type IRQConfig struct {
	Node   int    `yaml:"node"`
	Cycle  int64  `yaml:"cycle"`
	Vector uint32 `yaml:"vector"`
}

// UserConfig passes Value to Node's user callback at Cycle.
type UserConfig struct {
	Node  int   `yaml:"node"`
	Cycle int64 `yaml:"cycle"`
	Value int32 `yaml:"value"`
}

// MemRegion preloads memory. Words are stored at consecutive word
// addresses from Base; Fill, if set, repeats one value Count times instead.
type MemRegion struct {
	Base  uint32   `yaml:"base"`
	Words []uint32 `yaml:"words"`
	Fill  *uint32  `yaml:"fill"`
	Count int      `yaml:"count"`
}

// LoadRunConfig parses a run file with strict field checking. Relative
// script paths are resolved against the run file's directory.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var cfg RunConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	dir := filepath.Dir(path)
	for i := range cfg.Nodes {
		cfg.Nodes[i].Script = resolve(dir, cfg.Nodes[i].Script)
		cfg.Nodes[i].IRQScript = resolve(dir, cfg.Nodes[i].IRQScript)
	}
	return &cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks node ids, program names and event targets.
func (c *RunConfig) Validate() error {
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must be >= 0, got %d", c.Horizon)
	}
	if c.BlockWords < 0 {
		return fmt.Errorf("block_words must be >= 0, got %d", c.BlockWords)
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	if len(c.Nodes) == 0 {
		return fmt.Errorf("no nodes configured")
	}
	seen := make(map[int]bool)
	for _, n := range c.Nodes {
		if !vproc.ValidID(n.ID) {
			return fmt.Errorf("node id %d outside [0, %d)", n.ID, vproc.MaxNodes)
		}
		if seen[n.ID] {
			return fmt.Errorf("node %d configured twice", n.ID)
		}
		seen[n.ID] = true
		switch {
		case n.Program != "" && n.Script != "":
			return fmt.Errorf("node %d: program and script are mutually exclusive", n.ID)
		case n.Program == "" && n.Script == "":
			return fmt.Errorf("node %d: one of program or script is required", n.ID)
		case n.Program != "" && !workload.ValidPrograms(n.Program):
			return fmt.Errorf("node %d: unknown program %q (valid: %v)", n.ID, n.Program, workload.Names())
		}
	}
	for i, r := range c.Memory {
		switch {
		case r.Count < 0:
			return fmt.Errorf("memory[%d]: count must be >= 0, got %d", i, r.Count)
		case r.Fill != nil && len(r.Words) > 0:
			return fmt.Errorf("memory[%d]: words and fill are mutually exclusive", i)
		case r.Fill == nil && r.Count != 0:
			return fmt.Errorf("memory[%d]: count requires fill", i)
		}
	}
	for _, irq := range c.Interrupts {
		if !seen[irq.Node] {
			return fmt.Errorf("interrupt at cycle %d targets unconfigured node %d", irq.Cycle, irq.Node)
		}
		if irq.Vector == 0 {
			return fmt.Errorf("interrupt at cycle %d on node %d: vector must be nonzero", irq.Cycle, irq.Node)
		}
	}
	for _, u := range c.UserEvents {
		if !seen[u.Node] {
			return fmt.Errorf("user event at cycle %d targets unconfigured node %d", u.Cycle, u.Node)
		}
	}
	return nil
}

// params merges the run seed and a node's overrides into the default
// parameters.
func (n NodeConfig) params(seed int64) workload.Params {
	p := workload.DefaultParams()
	if seed != 0 {
		p.Seed = seed
	}
	if n.Params == nil {
		return p
	}
	if n.Params.Base != nil {
		p.Base = *n.Params.Base
	}
	if n.Params.Words != nil {
		p.Words = *n.Params.Words
	}
	if n.Params.Iterations != nil {
		p.Iterations = *n.Params.Iterations
	}
	if n.Params.Interval != nil {
		p.Interval = *n.Params.Interval
	}
	if n.Params.Seed != nil {
		p.Seed = *n.Params.Seed
	}
	return p
}

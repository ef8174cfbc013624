package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cosim-bridge/vproc/vproc"
	"github.com/cosim-bridge/vproc/vproc/workload"
)

var (
	configPath string // YAML run file
	logLevel   string // Log verbosity level
	traceLevel string // Transaction trace level
	horizon    int64  // Last cycle to simulate
	numNodes   int    // Nodes to start when no run file is given
	program    string // Built-in program for every node when no run file is given
	blockWords int    // Per-node burst buffer size in words
	seed       int64  // Master seed for randomised programs
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "vproc",
	Short: "Lockstep co-simulation scheduler for virtual processors",
}

// runCmd runs a co-simulation from a run file or from flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run virtual processor nodes against the cycle engine",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := runConfigFromFlags(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}

		logrus.Infof("Starting co-simulation with %d nodes, horizon=%d, block_words=%d, seed=%d",
			len(cfg.Nodes), cfg.Horizon, cfg.BlockWords, cfg.Seed)
		if err := runSimulation(cfg, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// programsCmd lists the built-in worker programs
var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List built-in worker programs",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range workload.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

// runConfigFromFlags loads --config when given, otherwise builds a run of
// --nodes copies of --program. Explicitly set flags override the run file.
func runConfigFromFlags(cmd *cobra.Command) (*RunConfig, error) {
	var cfg *RunConfig
	if configPath != "" {
		loaded, err := LoadRunConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &RunConfig{Horizon: horizon, BlockWords: blockWords, Trace: traceLevel, Seed: seed}
		for id := 0; id < numNodes; id++ {
			cfg.Nodes = append(cfg.Nodes, NodeConfig{ID: id, Program: program})
		}
		return cfg, nil
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	if cmd.Flags().Changed("trace") {
		cfg.Trace = traceLevel
	}
	if cmd.Flags().Changed("block-words") {
		cfg.BlockWords = blockWords
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

// runSimulation builds and runs cfg, then writes the report to out.
func runSimulation(cfg *RunConfig, out io.Writer) error {
	start := time.Now()
	sched, eng, err := buildRun(cfg)
	if err != nil {
		return err
	}
	runErr := eng.Run()

	ids := make([]int, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Ints(ids)
	printReport(out, sched, eng, ids, start)
	return runErr
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML run file")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for randomised programs")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, transactions)")
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "Last cycle to simulate (0 runs until every node retires)")
	runCmd.Flags().IntVar(&numNodes, "nodes", 1, fmt.Sprintf("Number of nodes when no run file is given (max %d)", vproc.MaxNodes))
	runCmd.Flags().StringVar(&program, "program", "bitswap", "Built-in program for every node when no run file is given")
	runCmd.Flags().IntVar(&blockWords, "block-words", vproc.DefaultBlockWords, "Per-node burst buffer size in words")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(programsCmd)
}

package trace

import "github.com/google/uuid"

// TraceLevel controls the verbosity of transaction tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelTransactions captures every scheduling call and interrupt.
	TraceLevelTransactions TraceLevel = "transactions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:         true,
	TraceLevelTransactions: true,
	"":                     true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelTransactions
}

// SimulationTrace collects transaction and interrupt records during a run.
type SimulationTrace struct {
	RunID        string
	Config       TraceConfig
	Transactions []TransactionRecord
	Interrupts   []InterruptRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording, tagged
// with a fresh run id.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		RunID:        uuid.NewString(),
		Config:       config,
		Transactions: make([]TransactionRecord, 0),
		Interrupts:   make([]InterruptRecord, 0),
	}
}

// RecordTransaction appends a scheduling record.
func (st *SimulationTrace) RecordTransaction(record TransactionRecord) {
	st.Transactions = append(st.Transactions, record)
}

// RecordInterrupt appends an interrupt record.
func (st *SimulationTrace) RecordInterrupt(record InterruptRecord) {
	st.Interrupts = append(st.Interrupts, record)
}

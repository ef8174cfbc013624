package trace

import (
	"testing"

	"github.com/google/uuid"
)

func TestSimulationTrace_RecordTransaction_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for transactions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelTransactions})

	// WHEN a transaction record is recorded
	st.RecordTransaction(TransactionRecord{
		Node:   0,
		Cycle:  12,
		Access: "write",
		Addr:   0x40,
		Data:   0xAA,
	})

	// THEN the trace contains one record with correct data
	if len(st.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(st.Transactions))
	}
	if st.Transactions[0].Addr != 0x40 {
		t.Errorf("expected addr 0x40, got %#x", st.Transactions[0].Addr)
	}
	if st.Transactions[0].Access != "write" {
		t.Errorf("expected write, got %s", st.Transactions[0].Access)
	}
}

func TestSimulationTrace_RecordInterrupt_AppendsRecord(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelTransactions})

	st.RecordInterrupt(InterruptRecord{Node: 2, Cycle: 5, Vector: 9, Delivery: DeliveryVectored})

	if len(st.Interrupts) != 1 {
		t.Fatalf("expected 1 interrupt, got %d", len(st.Interrupts))
	}
	if st.Interrupts[0].Delivery != DeliveryVectored {
		t.Errorf("expected vectored delivery, got %s", st.Interrupts[0].Delivery)
	}
}

func TestSimulationTrace_RunID_IsUUID(t *testing.T) {
	a := NewSimulationTrace(TraceConfig{})
	b := NewSimulationTrace(TraceConfig{})

	if _, err := uuid.Parse(a.RunID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", a.RunID, err)
	}
	if a.RunID == b.RunID {
		t.Error("expected distinct run ids")
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelTransactions})

	st.RecordTransaction(TransactionRecord{Node: 0, Cycle: 1})
	st.RecordTransaction(TransactionRecord{Node: 1, Cycle: 1})
	st.RecordTransaction(TransactionRecord{Node: 0, Cycle: 2})

	if len(st.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(st.Transactions))
	}
	if st.Transactions[1].Node != 1 || st.Transactions[2].Cycle != 2 {
		t.Error("transaction order not preserved")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"transactions", true},
		{"", true},
		{"decisions", false},
		{"all", false},
	}
	for _, tc := range tests {
		if got := IsValidTraceLevel(tc.level); got != tc.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tc.level, got, tc.valid)
		}
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	if (TraceConfig{}).Enabled() {
		t.Error("empty level must be disabled")
	}
	if (TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("none must be disabled")
	}
	if !(TraceConfig{Level: TraceLevelTransactions}).Enabled() {
		t.Error("transactions must be enabled")
	}
}

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOperationRecord_FieldsPreserved(t *testing.T) {
	r := NewOperationRecord("ts", OperationAllocation, 128, 0.5, 0.75, "src", "stack", "0x1", "2", "Alloc7")
	require.Equal(t, OperationAllocation, r.Operation)
	require.Equal(t, 128, r.BlockSize)
	require.Equal(t, "Alloc7", r.AllocationID)
}

func TestNewSummaryRecord_OverloadsColumns(t *testing.T) {
	r := NewSummaryRecord("ts", "sequential workload", 1234.5, 1230.1, 12.5)
	require.Equal(t, OperationSummary, r.Operation)
	require.Zero(t, r.BlockSize)
	require.Equal(t, 1234.5, r.Time)
	require.Equal(t, 1230.1, r.Fragmentation)
	require.Equal(t, "12.5000%", r.Source)
	require.Equal(t, "sequential workload", r.CallStack)
	require.Empty(t, r.MemoryAddress)
	require.Empty(t, r.ThreadID)
	require.Empty(t, r.AllocationID)
}

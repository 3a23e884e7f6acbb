// Package telemetry is the append-only tabular sink the benchmark harness
// writes per-operation and summary records to: a thread-safe writer with
// two record shapes sharing one ten-column layout.
package telemetry

// Operation names the kind of event a Record describes.
type Operation string

const (
	OperationAllocation   Operation = "Allocation"
	OperationDeallocation Operation = "Deallocation"
	OperationSummary      Operation = "Summary"
)

// Record is a single row of the ten-column layout:
// Timestamp, Operation, BlockSize, Time, Fragmentation, Source, CallStack,
// MemoryAddress, ThreadID, AllocationID.
//
// For a Summary record, the columns are overloaded for output compatibility
// with the system this harness was distilled from: BlockSize is 0, Time
// carries allocation throughput (ops/sec), Fragmentation carries
// deallocation throughput, Source carries the fragmentation percentage,
// CallStack carries the summary description, and MemoryAddress/ThreadID/
// AllocationID are empty.
type Record struct {
	Timestamp     string
	Operation     Operation
	BlockSize     int
	Time          float64
	Fragmentation float64
	Source        string
	CallStack     string
	MemoryAddress string
	ThreadID      string
	AllocationID  string
}

// NewOperationRecord builds a per-operation record for an allocation or
// deallocation event.
func NewOperationRecord(
	timestamp string,
	op Operation,
	blockSize int,
	elapsed float64,
	fragmentation float64,
	source, callStack, memoryAddress, threadID, allocationID string,
) Record {
	return Record{
		Timestamp:     timestamp,
		Operation:     op,
		BlockSize:     blockSize,
		Time:          elapsed,
		Fragmentation: fragmentation,
		Source:        source,
		CallStack:     callStack,
		MemoryAddress: memoryAddress,
		ThreadID:      threadID,
		AllocationID:  allocationID,
	}
}

// NewSummaryRecord builds the overloaded summary row described above.
func NewSummaryRecord(timestamp, description string, allocThroughput, deallocThroughput, fragmentationPct float64) Record {
	return Record{
		Timestamp:     timestamp,
		Operation:     OperationSummary,
		BlockSize:     0,
		Time:          allocThroughput,
		Fragmentation: deallocThroughput,
		Source:        formatPercent(fragmentationPct),
		CallStack:     description,
	}
}

func formatPercent(v float64) string {
	return formatFloat(v) + "%"
}

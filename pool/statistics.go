package pool

import "sync/atomic"

// statistics is the metrics registry described in the system overview:
// monotonic counters readable without the gate, plus gate-protected
// cumulative timings and the derived fragmentation (free-space) ratio.
type statistics struct {
	totalAllocations   atomic.Uint64
	totalDeallocations atomic.Uint64

	// allocationTimeNanos/deallocationTimeNanos are cumulative nanoseconds
	// spent inside Allocate/Deallocate. They are only ever mutated by the
	// holder of the gate, matching the data model's "read under the gate"
	// rule for these two fields, even though they use atomic adds so that
	// a relaxed read (if ever wanted) would not race the detector.
	allocationTimeNanos   atomic.Int64
	deallocationTimeNanos atomic.Int64

	// totalFreeMemory is the sum of 2^order over every block currently on
	// the free index (invariant 5, the Accounting invariant). It is only
	// touched under the gate.
	totalFreeMemory int
}

func (s *statistics) recordAllocation(elapsedNanos int64) {
	s.totalAllocations.Add(1)
	s.allocationTimeNanos.Add(elapsedNanos)
}

func (s *statistics) recordDeallocation(elapsedNanos int64) {
	s.totalDeallocations.Add(1)
	s.deallocationTimeNanos.Add(elapsedNanos)
}

// fragmentation is the free-space ratio named "fragmentation" for
// compatibility with the source this system was distilled from: 1.0 means
// fully empty, 0.0 means fully allocated. It is not a measure of external
// fragmentation.
func (s *statistics) fragmentation(poolSize int) float64 {
	if poolSize == 0 {
		return 0
	}
	return float64(s.totalFreeMemory) / float64(poolSize)
}

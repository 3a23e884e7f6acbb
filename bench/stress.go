package bench

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// RunStress is a soak-style workload not named in the original workload
// list: concurrent goroutines each churn through random alloc/dealloc
// pairs for the full configured duration, holding a small working set of
// live allocations rather than freeing immediately. It supplements
// original_source's stress_test.cpp, which exercised the allocator under
// sustained concurrent pressure rather than a fixed operation count. It
// stays within this system's non-goals: it does not grow the pool, share
// it across processes, or defragment in-use blocks.
func (h *Harness) RunStress() error {
	deadline := time.Now().Add(time.Duration(h.Cfg.DurationSecs * float64(time.Second)))
	const workingSet = 32

	var totalOps atomic.Int64
	start := time.Now()

	h.runConcurrent(func(rng *rand.Rand, threadID int) {
		live := make([]liveAllocation, 0, workingSet)
		var ops int64

		for time.Now().Before(deadline) {
			if len(live) < workingSet || rng.Intn(2) == 0 {
				size := randomSize(rng, h.Cfg.MinBlockSize, h.Cfg.MaxBlockSize)
				ptr := h.timeAndAllocate(size, "stress", threadID)
				if ptr != nil {
					live = append(live, liveAllocation{ptr: ptr, size: size})
				}
			} else {
				i := rng.Intn(len(live))
				h.timeAndDeallocate(live[i].ptr, live[i].size, "stress", threadID)
				live[i] = live[len(live)-1]
				live = live[:len(live)-1]
				ops++
			}
		}

		for _, a := range live {
			h.timeAndDeallocate(a.ptr, a.size, "stress", threadID)
			ops++
		}
		totalOps.Add(ops)
	})

	h.summarizeFixedOps("stress workload", int(totalOps.Load()), time.Since(start))
	return nil
}

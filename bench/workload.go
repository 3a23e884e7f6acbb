package bench

import (
	"math/rand"
	"time"
	"unsafe"
)

// RunSequential allocates and immediately frees a fixed block size,
// h.Cfg.Ops times, single-threaded. This is the simplest workload: it
// supplements original_source's fixedSizeBenchmark.
func (h *Harness) RunSequential() error {
	start := time.Now()
	for i := 0; i < h.Cfg.Ops; i++ {
		ptr := h.timeAndAllocate(h.Cfg.BlockSize, "sequential", 0)
		if ptr != nil {
			h.timeAndDeallocate(ptr, h.Cfg.BlockSize, "sequential", 0)
		}
	}
	h.summarizeFixedOps("sequential workload", h.Cfg.Ops, time.Since(start))
	return nil
}

// RunRandom allocates and frees blocks whose size is drawn uniformly from
// [MinBlockSize, MaxBlockSize], h.Cfg.Ops times, fanned across h.Cfg.Threads
// goroutines. Supplements original_source's variableSizeBenchmark.
func (h *Harness) RunRandom() error {
	start := time.Now()
	perThread := divideOps(h.Cfg.Ops, h.Cfg.Threads)

	h.runConcurrent(func(rng *rand.Rand, threadID int) {
		n := perThread
		if threadID == 0 {
			n += h.Cfg.Ops - perThread*h.Cfg.Threads
		}
		for i := 0; i < n; i++ {
			size := randomSize(rng, h.Cfg.MinBlockSize, h.Cfg.MaxBlockSize)
			ptr := h.timeAndAllocate(size, "random", threadID)
			if ptr != nil {
				h.timeAndDeallocate(ptr, size, "random", threadID)
			}
		}
	})

	h.summarizeFixedOps("random workload", h.Cfg.Ops, time.Since(start))
	return nil
}

// RunMixed keeps a growing batch of random-size live allocations before
// freeing the whole batch in random order, so splits and merges interleave
// across several orders at once rather than one alloc/free pair at a time.
func (h *Harness) RunMixed() error {
	start := time.Now()
	const batchSize = 64

	h.runConcurrent(func(rng *rand.Rand, threadID int) {
		n := divideOps(h.Cfg.Ops, h.Cfg.Threads)
		for done := 0; done < n; {
			batch := batchSize
			if done+batch > n {
				batch = n - done
			}

			ptrs := make([]liveAllocation, 0, batch)
			for i := 0; i < batch; i++ {
				size := randomSize(rng, h.Cfg.MinBlockSize, h.Cfg.MaxBlockSize)
				ptr := h.timeAndAllocate(size, "mixed", threadID)
				if ptr != nil {
					ptrs = append(ptrs, liveAllocation{ptr: ptr, size: size})
				}
			}

			rng.Shuffle(len(ptrs), func(i, j int) { ptrs[i], ptrs[j] = ptrs[j], ptrs[i] })
			for _, p := range ptrs {
				h.timeAndDeallocate(p.ptr, p.size, "mixed", threadID)
			}

			done += batch
		}
	})

	h.summarizeFixedOps("mixed-size workload", h.Cfg.Ops, time.Since(start))
	return nil
}

// RunThroughput allocates and frees a fixed block size as fast as possible
// for h.Cfg.DurationSecs, reporting ops/sec rather than a fixed op count.
// Supplements original_source's throughputBenchmark.
func (h *Harness) RunThroughput() error {
	deadline := time.Now().Add(time.Duration(h.Cfg.DurationSecs * float64(time.Second)))
	var ops int

	start := time.Now()
	for time.Now().Before(deadline) {
		ptr := h.timeAndAllocate(h.Cfg.BlockSize, "throughput", 0)
		if ptr != nil {
			h.timeAndDeallocate(ptr, h.Cfg.BlockSize, "throughput", 0)
		}
		ops++
	}

	h.summarizeFixedOps("throughput workload", ops, time.Since(start))
	return nil
}

func divideOps(total, threads int) int {
	if threads < 1 {
		threads = 1
	}
	return total / threads
}

func randomSize(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// summarizeFixedOps writes the overloaded summary row for a run that
// performed a known, fixed number of alloc/dealloc pairs over elapsed
// wall-clock time.
func (h *Harness) summarizeFixedOps(description string, ops int, elapsed time.Duration) {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1e-9
	}
	throughput := float64(ops) / seconds
	h.recordSummary(description, throughput, throughput)
	h.Logger.Info("workload complete",
		"description", description,
		"ops", ops,
		"elapsed", elapsed,
		"fragmentation", h.Pool.Fragmentation(),
	)
}

// liveAllocation pairs a live user pointer with the size it was requested
// at, so it can be freed with the right telemetry block size later.
type liveAllocation struct {
	ptr  unsafe.Pointer
	size int
}

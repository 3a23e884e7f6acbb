// Package bench drives synthetic workloads (sequential, random, mixed-size,
// throughput, and a soak-style stress run) against a pool.Pool and records
// per-operation and summary telemetry through the telemetry package.
package bench

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
	"unsafe"

	"github.com/buddyalloc/buddyalloc/config"
	"github.com/buddyalloc/buddyalloc/pool"
	"github.com/buddyalloc/buddyalloc/telemetry"
	"github.com/cockroachdb/errors"
)

// Harness drives a single workload run against a Pool, recording every
// allocation and deallocation through a telemetry.Sink and logging
// high-level progress through Logger.
type Harness struct {
	Pool   *pool.Pool
	Sink   *telemetry.Sink
	Cfg    config.Config
	Logger *slog.Logger
}

// New constructs a Harness. If logger is nil, slog.Default() is used.
func New(p *pool.Pool, sink *telemetry.Sink, cfg config.Config, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{Pool: p, Sink: sink, Cfg: cfg, Logger: logger}
}

// Run dispatches to the workload generator named by h.Cfg.Test.
func (h *Harness) Run() error {
	switch h.Cfg.Test {
	case config.WorkloadSequential:
		return h.RunSequential()
	case config.WorkloadRandom:
		return h.RunRandom()
	case config.WorkloadMixed:
		return h.RunMixed()
	case config.WorkloadStress:
		return h.RunStress()
	default:
		return errors.Newf("bench: unknown workload %q", h.Cfg.Test)
	}
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// recordOp writes a single per-operation telemetry record for an
// allocation or deallocation against the harness's pool.
func (h *Harness) recordOp(op telemetry.Operation, blockSize int, elapsed time.Duration, source string, threadID int, ptr unsafe.Pointer, allocationID string) {
	if h.Sink == nil {
		return
	}
	addr := ""
	if ptr != nil {
		addr = h.Pool.MemoryAddress(ptr)
	}
	rec := telemetry.NewOperationRecord(
		timestamp(),
		op,
		blockSize,
		elapsed.Seconds(),
		h.Pool.Fragmentation(),
		source,
		callStackLabel(source),
		addr,
		fmt.Sprintf("%d", threadID),
		allocationID,
	)
	if err := h.Sink.Write(rec); err != nil {
		h.Logger.Warn("failed to write telemetry record", slog.Any("error", err))
	}
}

func callStackLabel(source string) string {
	return "bench." + source
}

// recordSummary writes the overloaded summary row for a completed run.
func (h *Harness) recordSummary(description string, allocThroughput, deallocThroughput float64) {
	if h.Sink == nil {
		return
	}
	rec := telemetry.NewSummaryRecord(timestamp(), description, allocThroughput, deallocThroughput, h.Pool.Fragmentation()*100)
	if err := h.Sink.Write(rec); err != nil {
		h.Logger.Warn("failed to write summary record", slog.Any("error", err))
	}
}

// timeAndAllocate runs Allocate while timing it, recording telemetry, and
// returns the pointer (nil on failure, which is also recorded).
func (h *Harness) timeAndAllocate(size int, source string, threadID int) unsafe.Pointer {
	start := time.Now()
	ptr := h.Pool.Allocate(size)
	elapsed := time.Since(start)
	id := ""
	if ptr != nil {
		id = h.Pool.AllocationID(ptr)
	}
	h.recordOp(telemetry.OperationAllocation, size, elapsed, source, threadID, ptr, id)
	return ptr
}

func (h *Harness) timeAndDeallocate(ptr unsafe.Pointer, size int, source string, threadID int) {
	id := h.Pool.AllocationID(ptr)
	start := time.Now()
	h.Pool.Deallocate(ptr)
	elapsed := time.Since(start)
	h.recordOp(telemetry.OperationDeallocation, size, elapsed, source, threadID, ptr, id)
}

// runConcurrent fans work out across h.Cfg.Threads goroutines, each
// running fn with its own deterministic rng seeded off h.Cfg.Seed.
func (h *Harness) runConcurrent(fn func(rng *rand.Rand, threadID int)) {
	threads := h.Cfg.Threads
	if threads < 1 {
		threads = 1
	}

	var wg sync.WaitGroup
	wg.Add(threads)
	for t := 0; t < threads; t++ {
		t := t
		rng := rand.New(rand.NewSource(h.Cfg.Seed + int64(t)))
		go func() {
			defer wg.Done()
			fn(rng, t)
		}()
	}
	wg.Wait()
}

package pool

import (
	"log/slog"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Pool is the Buddy Pool: a fixed-capacity allocator serving variable-size
// requests out of a single contiguous backing region using the binary
// buddy algorithm. A Pool is safe for concurrent use by multiple
// goroutines; every state-mutating or state-traversing operation is
// serialized behind a single gate.
type Pool struct {
	minOrder int
	maxOrder int
	size     int

	buf  []byte
	base unsafe.Pointer

	gate     gate
	index    *freeIndex
	stats    statistics
	identity *identityRegistry

	logger *slog.Logger
}

// Construct creates a new Pool spanning 2^maxOrder bytes, with the smallest
// allocatable block at order minOrder. It fails if 0 < minOrder < maxOrder
// <= 30 does not hold, or if minOrder is too small to hold a Header plus at
// least one usable byte.
func Construct(minOrder, maxOrder int, logger *slog.Logger) (*Pool, error) {
	if err := checkOrders(minOrder, maxOrder); err != nil {
		return nil, err
	}
	if 1<<uint(minOrder) < headerSize+1 {
		return nil, errors.Wrapf(ErrMinOrderTooSmall, "minOrder %d gives block size %d, need > %d",
			minOrder, 1<<uint(minOrder), headerSize)
	}
	if logger == nil {
		logger = slog.Default()
	}

	size := 1 << uint(maxOrder)
	buf := make([]byte, size)
	if buf == nil {
		return nil, ErrBackingAllocFailed
	}

	p := &Pool{
		minOrder: minOrder,
		maxOrder: maxOrder,
		size:     size,
		buf:      buf,
		base:     unsafe.Pointer(&buf[0]),
		index:    newFreeIndex(minOrder, maxOrder),
		identity: newIdentityRegistry(),
		logger:   logger,
	}

	root := p.headerAt(0)
	root.markFree(uint32(maxOrder))
	p.index.insert(0, uint32(maxOrder))
	p.stats.totalFreeMemory = size

	return p, nil
}

// Allocate services a variable-size request, splitting a larger free block
// down to the required order if no exact-order block is free. It returns
// nil if the request exceeds the pool's capacity or no block is currently
// available to satisfy it; no state changes and no counters increment in
// either failure case.
func (p *Pool) Allocate(n int) unsafe.Pointer {
	start := time.Now()
	p.gate.Lock()
	defer p.gate.Unlock()

	required := sizeToOrder(n, headerSize, p.minOrder, p.maxOrder)
	if required > p.maxOrder || 1<<uint(required) < n+headerSize {
		return nil
	}

	order, ok := p.index.firstNonEmptyFrom(required)
	if !ok {
		return nil
	}

	offset, ok := p.index.removeAny(order)
	if !ok {
		// firstNonEmptyFrom and removeAny are both taken under the gate,
		// so this cannot happen; guard it rather than silently miscount.
		return nil
	}

	for order > uint32(required) {
		order--
		buddy := buddyOffset(offset, order)
		p.headerAt(buddy).markFree(order)
		p.index.insert(buddy, order)
	}

	h := p.headerAt(offset)
	idx := p.identity.next(offset)
	h.markAllocated(order, idx)

	p.stats.totalFreeMemory -= 1 << order
	p.stats.recordAllocation(time.Since(start).Nanoseconds())

	return p.userPointer(offset)
}

// Deallocate returns a block to the free index, coalescing with its buddy
// chain as far as the maximal-coalescence invariant demands. A nil pointer
// is a no-op. A pointer outside the pool's backing range is silently
// ignored, per the invalid-pointer policy, and so is a pointer whose header
// is already marked free (a double free). No other check is made that ptr
// is a pointer Allocate returned.
func (p *Pool) Deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	start := time.Now()
	p.gate.Lock()
	defer p.gate.Unlock()

	offset, ok := p.headerOffsetFromUser(ptr)
	if !ok {
		return
	}

	h := p.headerAt(offset)
	if h.isFree() {
		// Double-free or cross-pool pointer landing on a currently-free
		// header: ignore rather than corrupt the free index.
		return
	}

	p.identity.release(h.allocationIndex)
	order := h.order
	h.markFree(order)
	p.stats.totalFreeMemory += 1 << order

	offset = p.mergeChain(offset, order)

	p.stats.recordDeallocation(time.Since(start).Nanoseconds())
}

// mergeChain repeatedly merges offset's block with its buddy while both are
// free and offset's order has not reached maxOrder. It returns the offset
// of the (possibly enlarged) block after insertion into the free index.
func (p *Pool) mergeChain(offset int, order uint32) int {
	for order < uint32(p.maxOrder) {
		buddy := buddyOffset(offset, order)
		if buddy < 0 || buddy+(1<<order) > p.size {
			break
		}

		buddyHeader := p.headerAt(buddy)
		if !buddyHeader.isFree() || buddyHeader.order != order {
			break
		}
		if !p.index.removeAt(buddy, order) {
			break
		}

		if buddy < offset {
			offset = buddy
		}
		order++
		p.headerAt(offset).markFree(order)
	}

	p.index.insert(offset, order)
	return offset
}

// AllocationID returns the canonical "Alloc<N>" identity for a live
// allocation, or the empty string if ptr is out of range or not currently
// allocated.
func (p *Pool) AllocationID(ptr unsafe.Pointer) string {
	p.gate.Lock()
	defer p.gate.Unlock()

	offset, ok := p.headerOffsetFromUser(ptr)
	if !ok {
		return ""
	}
	h := p.headerAt(offset)
	if h.isFree() {
		return ""
	}
	return allocationIDString(h.allocationIndex)
}

// MemoryAddress returns a stable textual rendering of the raw user pointer.
func (p *Pool) MemoryAddress(ptr unsafe.Pointer) string {
	return memoryAddressString(ptr)
}

// Lookup resolves a canonical "Alloc<N>" identity back to its live user
// pointer. It returns false if the id is malformed or no longer live.
func (p *Pool) Lookup(id string) (unsafe.Pointer, bool) {
	idx, ok := parseAllocationID(id)
	if !ok {
		return nil, false
	}

	p.gate.Lock()
	defer p.gate.Unlock()

	offset, ok := p.identity.offsetOf(idx)
	if !ok {
		return nil, false
	}
	return p.userPointer(offset), true
}

// TotalAllocations is the monotone count of successful Allocate calls.
func (p *Pool) TotalAllocations() uint64 { return p.stats.totalAllocations.Load() }

// TotalDeallocations is the monotone count of Deallocate calls that freed a
// live allocation.
func (p *Pool) TotalDeallocations() uint64 { return p.stats.totalDeallocations.Load() }

// AllocationTime is the cumulative number of seconds spent inside Allocate.
func (p *Pool) AllocationTime() float64 {
	p.gate.Lock()
	defer p.gate.Unlock()
	return time.Duration(p.stats.allocationTimeNanos.Load()).Seconds()
}

// DeallocationTime is the cumulative number of seconds spent inside
// Deallocate.
func (p *Pool) DeallocationTime() float64 {
	p.gate.Lock()
	defer p.gate.Unlock()
	return time.Duration(p.stats.deallocationTimeNanos.Load()).Seconds()
}

// Fragmentation is the free-space ratio: 1.0 when the pool is empty, 0.0
// when it is fully allocated. This is the free-space ratio, not a
// traditional external-fragmentation metric; the name is preserved from
// the system this allocator was distilled from.
func (p *Pool) Fragmentation() float64 {
	p.gate.Lock()
	defer p.gate.Unlock()
	return p.stats.fragmentation(p.size)
}

// Size returns the total capacity of the pool in bytes (2^maxOrder).
func (p *Pool) Size() int { return p.size }

// WriteDebugMargin stamps a corruption-detection marker at ptr+offset. It
// no-ops in production builds (without the debug_buddy build tag); callers
// should pass the requested allocation size as offset so the marker lands
// in the block's slack space. Allocate reserves no room for the marker, so
// it stays inside the block only when the block has at least DebugMargin
// bytes past offset.
func (p *Pool) WriteDebugMargin(ptr unsafe.Pointer, offset int) {
	writeMagic(ptr, offset)
}

// CheckCorruption verifies the marker written by WriteDebugMargin is still
// intact. It always reports true in production builds.
func (p *Pool) CheckCorruption(ptr unsafe.Pointer, offset int) bool {
	return checkMagic(ptr, offset)
}

// Destroy releases the backing region. Any allocation still live at the
// time of the call is logged as a leak before the region is released,
// mirroring the unreleased-memory diagnostics a block-oriented allocator
// would perform on destruction.
func (p *Pool) Destroy() {
	p.gate.Lock()
	defer p.gate.Unlock()

	offset := 0
	for offset < p.size {
		h := p.headerAt(offset)
		order := h.order
		if !h.isFree() {
			p.logger.Warn("unreleased allocation at pool destruction",
				slog.Int("offset", offset),
				slog.Int("size", 1<<order),
				slog.String("allocationID", allocationIDString(h.allocationIndex)),
			)
		}
		offset += 1 << order
	}

	p.buf = nil
	p.base = nil
}

// Validate performs internal consistency checks across the whole pool:
// exhaustive tiling, buddy alignment, free-flag consistency, and the
// accounting invariant. It is expensive and intended for tests and
// diagnostics, not the allocation hot path.
func (p *Pool) Validate() error {
	p.gate.Lock()
	defer p.gate.Unlock()

	offset := 0
	var freeBytes int
	for offset < p.size {
		h := p.headerAt(offset)
		order := h.order

		if order < uint32(p.minOrder) || order > uint32(p.maxOrder) {
			return errors.Errorf("block at offset %d has out-of-range order %d", offset, order)
		}
		if offset%(1<<order) != 0 {
			return errors.Errorf("block at offset %d of order %d is not order-aligned", offset, order)
		}

		if h.isFree() {
			if !p.index.contains(offset, order) {
				return errors.Errorf("block at offset %d is marked free but absent from the free index", offset)
			}
			freeBytes += 1 << order

			if order < uint32(p.maxOrder) {
				buddy := buddyOffset(offset, order)
				if buddy < p.size {
					bh := p.headerAt(buddy)
					if bh.isFree() && bh.order == order {
						return errors.Errorf("blocks at offset %d and %d are both free at order %d and were never merged",
							offset, buddy, order)
					}
				}
			}
		} else if h.allocationIndex == sentinelAllocationIndex {
			return errors.Errorf("block at offset %d is marked allocated but carries the sentinel identity", offset)
		}

		offset += 1 << order
	}

	if freeBytes != p.stats.totalFreeMemory {
		return errors.Errorf("accounting mismatch: index free bytes %d != tracked totalFreeMemory %d",
			freeBytes, p.stats.totalFreeMemory)
	}

	return nil
}

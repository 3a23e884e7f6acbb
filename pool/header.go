package pool

import (
	"math"
	"unsafe"
)

// sentinelAllocationIndex marks a header that does not carry a live
// allocation identity, i.e. a free block.
const sentinelAllocationIndex uint64 = math.MaxUint64

// header is the in-band record prefixing every block. It is laid out with
// natural 8-byte alignment so that the header itself never constrains the
// alignment of the user pointer beyond what the host already guarantees.
type header struct {
	order           uint32
	free            uint32 // 0 or 1; kept as a fixed-width field rather than bool for a stable in-band layout
	allocationIndex uint64
}

// headerSize is the number of bytes every block's header occupies. The user
// pointer returned by Allocate is headerSize bytes past the header address.
const headerSize = int(unsafe.Sizeof(header{}))

// headerAt returns the header overlaying the pool's backing region at the
// given byte offset. Callers must ensure offset is within [0, size) and
// order-aligned; this is the only place buddy arithmetic touches raw memory.
func (p *Pool) headerAt(offset int) *header {
	return (*header)(unsafe.Add(p.base, offset))
}

func (h *header) isFree() bool { return h.free != 0 }

func (h *header) markFree(order uint32) {
	h.order = order
	h.free = 1
	h.allocationIndex = sentinelAllocationIndex
}

func (h *header) markAllocated(order uint32, index uint64) {
	h.order = order
	h.free = 0
	h.allocationIndex = index
}

// buddyOffset computes the offset of the buddy of a block of the given order
// at the given offset: the two addresses differ in exactly bit `order`.
// It is the caller's responsibility to ensure order < maxOrder, since the
// whole-pool block at maxOrder has no buddy.
func buddyOffset(offset int, order uint32) int {
	return offset ^ (1 << order)
}

// userPointer returns the pointer handed to callers for a block whose header
// lives at headerOffset: the header address plus headerSize.
func (p *Pool) userPointer(headerOffset int) unsafe.Pointer {
	return unsafe.Add(p.base, headerOffset+headerSize)
}

// headerOffsetFromUser reverses userPointer: given a user pointer, compute
// the byte offset of its header within the pool. Returns false if the
// pointer does not land inside the pool's backing region at all (the
// range-check demanded by the invalid-pointer policy).
func (p *Pool) headerOffsetFromUser(ptr unsafe.Pointer) (int, bool) {
	base := uintptr(p.base)
	target := uintptr(ptr)
	if target < base+uintptr(headerSize) {
		return 0, false
	}

	offset := int(target-base) - headerSize
	if offset < 0 || offset > p.size-headerSize {
		return 0, false
	}
	return offset, true
}

package pool

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"

	"github.com/dolthub/swiss"
)

// identityRegistry owns the monotone allocation-index counter and a
// reverse index from allocation index to the header offset it currently
// names, so that a caller holding only a textual AllocationID can resolve
// it back to a live pointer. It is process-instance-local: the counter is
// never shared across Pool instances, per the design notes.
type identityRegistry struct {
	counter atomic.Uint64
	live    *swiss.Map[uint64, int]
}

func newIdentityRegistry() *identityRegistry {
	return &identityRegistry{
		live: swiss.NewMap[uint64, int](64),
	}
}

// next returns a freshly-minted, strictly monotone allocation index. Must
// be called under the gate so that the live map stays consistent with the
// index that is about to be assigned.
func (r *identityRegistry) next(offset int) uint64 {
	idx := r.counter.Add(1) - 1
	r.live.Put(idx, offset)
	return idx
}

func (r *identityRegistry) release(index uint64) {
	r.live.Delete(index)
}

func (r *identityRegistry) offsetOf(index uint64) (int, bool) {
	return r.live.Get(index)
}

// allocationIDString renders the canonical form "Alloc<N>" for an
// allocation index, or the empty string for the sentinel.
func allocationIDString(index uint64) string {
	if index == sentinelAllocationIndex {
		return ""
	}
	return "Alloc" + strconv.FormatUint(index, 10)
}

// parseAllocationID reverses allocationIDString, returning false for any
// string not in canonical "Alloc<N>" form.
func parseAllocationID(id string) (uint64, bool) {
	n, ok := strings.CutPrefix(id, "Alloc")
	if !ok {
		return 0, false
	}
	idx, err := strconv.ParseUint(n, 10, 64)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// memoryAddressString renders a stable textual form of a raw user pointer.
func memoryAddressString(ptr unsafe.Pointer) string {
	return fmt.Sprintf("0x%x", uintptr(ptr))
}

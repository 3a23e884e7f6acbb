package pool

import "github.com/dolthub/swiss"

// freeNode is out-of-band bookkeeping for a single free block: it never
// lives in the backing region, mirroring how the teacher's TLSF metadata
// keeps a separate doubly-linked freelist node per block rather than
// threading free-list pointers through the allocation itself. The header
// in the backing region remains the sole source of truth for order and
// free status; freeNode only exists to make "pick any free block at order
// o" and "remove this exact offset from its order's collection" both O(1).
type freeNode struct {
	offset int
	order  uint32
	prev   *freeNode
	next   *freeNode
}

// freeIndex is the array of per-order collections of free headers described
// in the data model: maxOrder-minOrder+1 independent collections, LIFO
// within a collection (the reference behavior removes the front).
type freeIndex struct {
	minOrder int
	maxOrder int
	slots    []*freeNode // slots[o-minOrder] is the head of the free list at order o

	// byOffset lets deallocate's merge loop test in O(1) whether a buddy
	// offset is currently free, without scanning any slot.
	byOffset *swiss.Map[int, *freeNode]
}

func newFreeIndex(minOrder, maxOrder int) *freeIndex {
	return &freeIndex{
		minOrder: minOrder,
		maxOrder: maxOrder,
		slots:    make([]*freeNode, maxOrder-minOrder+1),
		byOffset: swiss.NewMap[int, *freeNode](64),
	}
}

func (f *freeIndex) slotIndex(order uint32) int {
	return int(order) - f.minOrder
}

// insert adds offset as a free block of the given order, at the front of
// that order's collection.
func (f *freeIndex) insert(offset int, order uint32) {
	n := &freeNode{offset: offset, order: order}
	idx := f.slotIndex(order)
	n.next = f.slots[idx]
	if n.next != nil {
		n.next.prev = n
	}
	f.slots[idx] = n
	f.byOffset.Put(offset, n)
}

// removeAny removes and returns the offset at the front of order's
// collection. The second return value is false if the collection is empty.
func (f *freeIndex) removeAny(order uint32) (int, bool) {
	idx := f.slotIndex(order)
	n := f.slots[idx]
	if n == nil {
		return 0, false
	}
	f.unlink(n, idx)
	return n.offset, true
}

// removeAt removes the free node at the given offset, if one exists and its
// recorded order matches expectedOrder (the free-flag-consistency
// invariant). It reports whether removal happened.
func (f *freeIndex) removeAt(offset int, expectedOrder uint32) bool {
	n, ok := f.byOffset.Get(offset)
	if !ok || n.order != expectedOrder {
		return false
	}
	f.unlink(n, f.slotIndex(n.order))
	return true
}

func (f *freeIndex) unlink(n *freeNode, slotIdx int) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		f.slots[slotIdx] = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
	f.byOffset.Delete(n.offset)
}

// contains reports whether offset is currently tracked as free at exactly
// the given order, without mutating the index.
func (f *freeIndex) contains(offset int, order uint32) bool {
	n, ok := f.byOffset.Get(offset)
	return ok && n.order == order
}

// firstNonEmptyFrom scans slots starting at order r upward, returning the
// first order with a non-empty collection. This is the O(maxOrder-minOrder)
// slot scan bounded by the data model's worst-case work guarantee.
func (f *freeIndex) firstNonEmptyFrom(r int) (uint32, bool) {
	for o := r; o <= f.maxOrder; o++ {
		if f.slots[o-f.minOrder] != nil {
			return uint32(o), true
		}
	}
	return 0, false
}

package pool

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func mustConstruct(t *testing.T, minOrder, maxOrder int) *Pool {
	t.Helper()
	p, err := Construct(minOrder, maxOrder, nil)
	require.NoError(t, err)
	return p
}

func TestConstruct_EmptyPoolIsFullyFree(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	require.Equal(t, 1.0, p.Fragmentation())
	require.EqualValues(t, 0, p.TotalAllocations())
	require.NoError(t, p.Validate())
}

func TestConstruct_RejectsInvalidOrders(t *testing.T) {
	_, err := Construct(0, 20, nil)
	require.ErrorIs(t, err, ErrInvalidOrder)

	_, err = Construct(10, 10, nil)
	require.ErrorIs(t, err, ErrInvalidOrder)

	_, err = Construct(5, 31, nil)
	require.ErrorIs(t, err, ErrInvalidOrder)
}

func TestAllocateDeallocate_RoundTrip(t *testing.T) {
	p := mustConstruct(t, 5, 20)

	ptr := p.Allocate(64)
	require.NotNil(t, ptr)
	require.Equal(t, "Alloc0", p.AllocationID(ptr))
	require.EqualValues(t, 1, p.TotalAllocations())
	require.Less(t, p.Fragmentation(), 1.0)

	p.Deallocate(ptr)
	require.Equal(t, 1.0, p.Fragmentation())
	require.EqualValues(t, 1, p.TotalDeallocations())
	require.NoError(t, p.Validate())
}

func TestAllocate_ExceedsPoolCapacity(t *testing.T) {
	p := mustConstruct(t, 6, 16)
	ptr := p.Allocate(1 << 20)
	require.Nil(t, ptr)
	require.EqualValues(t, 0, p.TotalAllocations())
}

func TestAllocate_TwoBlocksAreBuddyAlignedAndMergeOnFree(t *testing.T) {
	p := mustConstruct(t, 6, 14)

	p1 := p.Allocate(64)
	p2 := p.Allocate(64)
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	require.NotEqual(t, p1, p2)

	off1, _ := p.headerOffsetFromUser(p1)
	off2, _ := p.headerOffsetFromUser(p2)
	diff := off1 - off2
	if diff < 0 {
		diff = -diff
	}
	require.Zero(t, diff&(diff-1), "difference between offsets must be a power of two")
	require.Zero(t, diff%(1<<6))

	p.Deallocate(p1)
	p.Deallocate(p2)
	require.Equal(t, 1.0, p.Fragmentation())
	require.NoError(t, p.Validate())
}

func TestAllocate_ReverseOrderFreeAlsoMerges(t *testing.T) {
	p := mustConstruct(t, 6, 14)

	p1 := p.Allocate(64)
	p2 := p.Allocate(64)

	p.Deallocate(p2)
	p.Deallocate(p1)
	require.Equal(t, 1.0, p.Fragmentation())
	require.NoError(t, p.Validate())
}

func TestZeroSizeRequestTreatedAsOneByte(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	ptr := p.Allocate(0)
	require.NotNil(t, ptr)
	require.EqualValues(t, 1, p.TotalAllocations())
	p.Deallocate(ptr)
}

func TestDeallocate_NilIsNoOp(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	p.Deallocate(nil)
	require.EqualValues(t, 0, p.TotalDeallocations())
	require.Equal(t, 1.0, p.Fragmentation())
}

func TestDeallocate_OutOfRangePointerIsIgnored(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	var stray int
	p.Deallocate(unsafe.Pointer(&stray))
	require.EqualValues(t, 0, p.TotalDeallocations())
	require.NoError(t, p.Validate())
}

func TestDeallocate_DoubleFreeIsIgnored(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	ptr := p.Allocate(64)
	p.Deallocate(ptr)
	require.EqualValues(t, 1, p.TotalDeallocations())

	p.Deallocate(ptr)
	require.EqualValues(t, 1, p.TotalDeallocations())
	require.NoError(t, p.Validate())
}

func TestAllocationID_StableAcrossRepeatedCalls(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	ptr := p.Allocate(64)
	first := p.AllocationID(ptr)
	require.NotEmpty(t, first)
	for i := 0; i < 1000; i++ {
		require.Equal(t, first, p.AllocationID(ptr))
	}
}

func TestAllocationID_NotReusedAfterFree(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	ptr1 := p.Allocate(64)
	id1 := p.AllocationID(ptr1)
	p.Deallocate(ptr1)

	ptr2 := p.Allocate(64)
	id2 := p.AllocationID(ptr2)
	require.NotEqual(t, id1, id2)
}

func TestLookup_ResolvesLiveAllocation(t *testing.T) {
	p := mustConstruct(t, 5, 20)
	ptr := p.Allocate(64)
	id := p.AllocationID(ptr)

	resolved, ok := p.Lookup(id)
	require.True(t, ok)
	require.Equal(t, ptr, resolved)

	p.Deallocate(ptr)
	_, ok = p.Lookup(id)
	require.False(t, ok)
}

func TestFragmentationBounds(t *testing.T) {
	p := mustConstruct(t, 5, 16)
	var live []unsafe.Pointer
	for i := 0; i < 20; i++ {
		ptr := p.Allocate(64)
		if ptr == nil {
			break
		}
		live = append(live, ptr)
		f := p.Fragmentation()
		require.GreaterOrEqual(t, f, 0.0)
		require.LessOrEqual(t, f, 1.0)
	}
}

func TestConcurrentAllocateDeallocate(t *testing.T) {
	p := mustConstruct(t, 5, 16)

	var wg sync.WaitGroup
	wg.Add(4)
	for g := 0; g < 4; g++ {
		go func() {
			defer wg.Done()
			var ptrs []unsafe.Pointer
			for i := 0; i < 50; i++ {
				size := 64 + (i%3)*8
				ptr := p.Allocate(size)
				if ptr != nil {
					ptrs = append(ptrs, ptr)
				}
			}
			for i := len(ptrs) - 1; i >= 0; i-- {
				p.Deallocate(ptrs[i])
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1.0, p.Fragmentation())
	require.Equal(t, p.TotalAllocations(), p.TotalDeallocations())
	require.EqualValues(t, 200, p.TotalAllocations())
	require.NoError(t, p.Validate())
}

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeNilRefIsNoOp(t *testing.T) {
	h := newTestHeap(t, 4096)
	h.Free(NilRef) // must not panic, must not initialize anything
	assert.Zero(t, h.FreeBytes())
}

func TestFreeReturnsBytes(t *testing.T) {
	h := newTestHeap(t, 4096)
	ref, _ := mustAlloc(t, h, 100)
	before := h.FreeBytes()
	h.Free(ref)
	// The freed amount is the full block, header included.
	assert.Equal(t, before+120, h.FreeBytes())
	assert.Equal(t, h.Capacity(), h.FreeBytes())
	require.NoError(t, h.CheckConsistency())
}

func TestCoalesceMiddleThenLeft(t *testing.T) {
	h := newTestHeap(t, 40960)
	a, _ := mustAlloc(t, h, 10)  // 32-byte block
	b, _ := mustAlloc(t, h, 128) // 144-byte block
	_, _ = mustAlloc(t, h, 50)   // guard keeps b from merging forward

	// Free the middle block, then its left neighbour: the two must fuse
	// into one block covering both.
	h.Free(b)
	h.Free(a)
	require.NoError(t, h.CheckConsistency())

	combined := 32 + 144
	// An exact-fit request gets the fused block back whole, without a split.
	ref, buf := mustAlloc(t, h, combined-16)
	assert.Equal(t, a, ref)
	assert.Equal(t, combined, blockSize(h, ref))
	assert.Len(t, buf, combined-16)
}

func TestCoalesceRightNeighbour(t *testing.T) {
	h := newTestHeap(t, 4096)
	a, _ := mustAlloc(t, h, 48) // 64-byte block
	b, _ := mustAlloc(t, h, 48)
	_, _ = mustAlloc(t, h, 48) // guard

	h.Free(a)
	h.Free(b) // merges backward into a's block
	require.NoError(t, h.CheckConsistency())

	ref, _ := mustAlloc(t, h, 128-16)
	assert.Equal(t, a, ref)
	assert.Equal(t, 128, blockSize(h, ref))
}

func TestCoalesceBothSides(t *testing.T) {
	h := newTestHeap(t, 4096)
	a, _ := mustAlloc(t, h, 48)
	b, _ := mustAlloc(t, h, 48)
	c, _ := mustAlloc(t, h, 48)
	_, _ = mustAlloc(t, h, 48) // guard

	h.Free(a)
	h.Free(c)
	h.Free(b) // must absorb both neighbours in one insertion
	require.NoError(t, h.CheckConsistency())

	ref, _ := mustAlloc(t, h, 192-16)
	assert.Equal(t, a, ref)
	assert.Equal(t, 192, blockSize(h, ref))
}

func TestEndSentinelNeverMerges(t *testing.T) {
	h := newTestHeap(t, 4096)
	// The last free block always ends exactly at the end sentinel; freeing
	// everything must leave one block, not absorb the sentinel.
	ref, _ := mustAlloc(t, h, h.Capacity()-16)
	assert.Zero(t, h.FreeBytes())
	h.Free(ref)
	assert.Equal(t, h.Capacity(), h.FreeBytes())
	require.NoError(t, h.CheckConsistency())
}

func TestZeroOnFree(t *testing.T) {
	h, err := New(Config{Size: 4096, ZeroOnFree: true})
	require.NoError(t, err)

	ref, buf := mustAlloc(t, h, 64)
	_, _ = mustAlloc(t, h, 64) // guard so the freed block is not merged
	for i := range buf {
		buf[i] = 0xAA
	}
	h.Free(ref)
	for i, c := range buf {
		require.Zero(t, c, "payload byte %d survived the free", i)
	}
	require.NoError(t, h.CheckConsistency())
}

func TestFreeListStaysAddressOrdered(t *testing.T) {
	h := newTestHeap(t, 40960)
	refs := make([]Ref, 8)
	for i := range refs {
		refs[i], _ = mustAlloc(t, h, 64)
	}
	// Free in a scrambled order; ordering is restored on every insert.
	for _, i := range []int{5, 1, 7, 3, 0, 6, 2, 4} {
		h.Free(refs[i])
		require.NoError(t, h.CheckConsistency())
	}
	// Everything coalesced back into a single span.
	assert.Equal(t, h.Capacity(), h.FreeBytes())
	ref, _ := mustAlloc(t, h, h.Capacity()-16)
	assert.Equal(t, refs[0], ref)
}

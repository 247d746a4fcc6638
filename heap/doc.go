// Package heap implements a fixed-arena, first-fit dynamic allocator in the
// style of embedded heap managers: a single statically sized byte arena from
// which variable-size blocks are allocated and freed, with no growth and no
// underlying OS heap.
//
// # Overview
//
// A Heap owns one contiguous byte buffer and threads an address-ordered,
// singly linked free list through block headers embedded in that buffer.
// Allocation walks the free list for the first block large enough (first-fit),
// splits off the remainder when it is worth keeping, and returns the payload
// as a sub-slice of the arena. Freeing reinserts the block in address order
// and coalesces with both neighbours, so no two free blocks are ever adjacent.
//
// # Usage Example
//
//	h, err := heap.New(heap.Config{Size: 64 * 1024})
//	if err != nil {
//	    return err
//	}
//
//	ref, buf, err := h.Alloc(128)
//	if err != nil {
//	    return err
//	}
//
//	// Use buf (len >= 128)...
//
//	h.Free(ref)
//
// # Block References
//
// Alloc returns a Ref, the arena-relative offset of the payload. Free maps
// the Ref back to its header and validates it against the arena extent, so
// an out-of-range or stale Ref is detected instead of silently corrupting
// neighbouring blocks.
//
// # Accounting
//
// The Heap maintains a current free-byte counter, a historical minimum
// free-byte watermark, and success counters for allocations and frees. All
// are O(1) reads; see FreeBytes, MinEverFreeBytes and Stats.
//
// # Failure Model
//
// Exhaustion and invalid sizes are ordinary error returns (ErrNoSpace,
// ErrBadSize). A double free or a damaged header is not recoverable: the
// free list can no longer be trusted, so the Heap invokes the configured
// corruption handler, which by default panics with a *CorruptionError.
//
// # Thread Safety
//
// Heap instances are not goroutine-safe. Callers must serialize Alloc and
// Free externally, or use SafeHeap, which holds a mutex across the entire
// search/split/merge sequence.
package heap

package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// CheckConsistency walks the free list and the whole arena and validates
// every allocator invariant:
//
//   - the free list is strictly address-ascending and ends at the end sentinel
//   - no two free blocks are adjacent
//   - free-list sizes sum to the free-byte counter
//   - allocated blocks are unlinked; free blocks all appear in the list
//   - every block size is a non-zero multiple of the alignment
//   - free bytes plus allocated bytes equal the usable capacity
//   - the watermark never exceeds the current free count
//
// Returns nil on a closed or not-yet-initialized heap (nothing to check),
// otherwise the first violation wrapped around ErrInconsistent.
func (h *Heap) CheckConsistency() error {
	if h.buf == nil || h.end == 0 {
		return nil
	}
	align := uint64(h.cfg.Alignment)

	if h.logicalSize(h.start) != 0 || h.isAllocated(h.start) {
		return fmt.Errorf("%w: start sentinel damaged", ErrInconsistent)
	}
	if h.logicalSize(h.end) != 0 || h.isAllocated(h.end) || h.next(h.end) != nilRef {
		return fmt.Errorf("%w: end sentinel damaged", ErrInconsistent)
	}

	// Free-list walk.
	inList := make(map[uint64]bool)
	freeSum := 0
	prev := h.start
	prevSize := uint64(0)
	limit := len(h.buf)/int(h.hdrSize) + 1 // cycle guard
	for off := h.next(h.start); off != h.end; off = h.next(off) {
		if limit--; limit < 0 {
			return fmt.Errorf("%w: free list cycle", ErrInconsistent)
		}
		if off <= prev || off > h.end {
			return fmt.Errorf("%w: free list not address-ordered at 0x%x", ErrInconsistent, off)
		}
		if prev != h.start && prev+prevSize == off {
			return fmt.Errorf("%w: adjacent free blocks at 0x%x and 0x%x not coalesced",
				ErrInconsistent, prev, off)
		}
		size := h.logicalSize(off)
		switch {
		case h.isAllocated(off):
			return fmt.Errorf("%w: allocated block 0x%x linked as free", ErrInconsistent, off)
		case size < h.hdrSize || !format.IsAligned(size, align):
			return fmt.Errorf("%w: free block 0x%x has bad size %d", ErrInconsistent, off, size)
		case off+size > h.end:
			return fmt.Errorf("%w: free block 0x%x overruns arena", ErrInconsistent, off)
		}
		inList[off] = true
		freeSum += int(size)
		prev, prevSize = off, size
	}
	if freeSum != h.freeBytes {
		return fmt.Errorf("%w: free list sums to %d, counter says %d",
			ErrInconsistent, freeSum, h.freeBytes)
	}

	// Block-by-block arena walk.
	allocSum := 0
	off := h.start + h.hdrSize
	for off < h.end {
		size := h.logicalSize(off)
		if size < h.hdrSize || !format.IsAligned(size, align) || off+size > h.end {
			return fmt.Errorf("%w: block 0x%x has bad size %d", ErrInconsistent, off, size)
		}
		if h.isAllocated(off) {
			if h.next(off) != nilRef {
				return fmt.Errorf("%w: allocated block 0x%x has a live free-list link",
					ErrInconsistent, off)
			}
			allocSum += int(size)
		} else if !inList[off] {
			return fmt.Errorf("%w: free block 0x%x missing from free list", ErrInconsistent, off)
		}
		off += size
	}
	if off != h.end {
		return fmt.Errorf("%w: block walk ends at 0x%x, not the end sentinel", ErrInconsistent, off)
	}
	if allocSum+h.freeBytes != h.capacity {
		return fmt.Errorf("%w: %d allocated + %d free != %d capacity",
			ErrInconsistent, allocSum, h.freeBytes, h.capacity)
	}
	if h.minFreeBytes > h.freeBytes {
		return fmt.Errorf("%w: watermark %d above current free %d",
			ErrInconsistent, h.minFreeBytes, h.freeBytes)
	}
	return nil
}

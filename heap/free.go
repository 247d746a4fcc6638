package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Free releases a block previously returned by Alloc. Free(NilRef) is a
// no-op. A ref outside the arena, a block whose allocated flag is already
// clear, or a block still linked into the free list is treated as fatal
// corruption: the configured handler runs (default: panic) and the arena
// is left untouched.
func (h *Heap) Free(ref Ref) {
	if ref == NilRef {
		return
	}
	h.ensureLive()

	// Map the payload ref back to its header, bounds-checked against the
	// arena extent so a garbage ref is detected instead of misread.
	if h.end == 0 || ref < h.start+2*h.hdrSize || ref >= h.end ||
		!format.IsAligned(ref-h.start, uint64(h.cfg.Alignment)) {
		h.corrupt(ref, "ref outside arena")
		return
	}
	blk := ref - h.hdrSize

	if !h.isAllocated(blk) {
		h.corrupt(ref, "block already free (double free)")
		return
	}
	if h.next(blk) != nilRef {
		h.corrupt(ref, "allocated block linked into free list")
		return
	}
	size := h.logicalSize(blk)
	if size < h.hdrSize || blk+size > h.end {
		h.corrupt(ref, "header size out of range")
		return
	}

	h.clearAllocated(blk)
	if h.cfg.ZeroOnFree {
		clear(h.buf[ref : blk+size])
	}

	h.freeBytes += int(size)
	h.insertFreeBlock(blk)
	h.frees++

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[heapkit] free: ref=0x%x block=%d free=%d\n",
			ref, size, h.freeBytes)
	}
}

// insertFreeBlock links blk into the address-ordered free list, merging
// with the predecessor and/or successor when they are adjacent. A single
// pass suffices: no two free blocks are ever left adjacent, so at most one
// neighbour on each side can merge.
func (h *Heap) insertFreeBlock(blk uint64) {
	// Rightmost node below the block being inserted. The end sentinel has
	// the highest address of all nodes, so the walk always terminates.
	it := h.start
	for h.next(it) < blk {
		it = h.next(it)
	}

	// Backward: predecessor ends exactly where blk starts. The start
	// sentinel has zero size and can never satisfy this.
	if it+h.logicalSize(it) == blk {
		h.setFreeSize(it, h.logicalSize(it)+h.logicalSize(blk))
		blk = it
	}

	// Forward: blk ends exactly where the successor starts. The end
	// sentinel never merges.
	succ := h.next(it)
	if blk+h.logicalSize(blk) == succ && succ != h.end {
		h.setFreeSize(blk, h.logicalSize(blk)+h.logicalSize(succ))
		h.setNext(blk, h.next(succ))
	} else {
		h.setNext(blk, succ)
	}

	if it != blk {
		h.setNext(it, blk)
	}
}

// corrupt reports a fatal corruption condition. Never returns when no
// handler is configured.
func (h *Heap) corrupt(ref Ref, reason string) {
	err := &CorruptionError{Ref: ref, Reason: reason}
	if h.cfg.OnCorruption != nil {
		h.cfg.OnCorruption(err)
		return
	}
	panic(err)
}

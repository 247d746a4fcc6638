package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Alloc allocates a block with at least n payload bytes and returns the
// payload reference plus the payload itself as a sub-slice of the arena.
// The slice may be longer than n when the block was rounded up or handed
// out unsplit.
//
// Errors: ErrBadSize for n <= 0 or a size whose block computation would
// overflow; ErrNoSpace when no single free block can satisfy the request.
func (h *Heap) Alloc(n int) (Ref, []byte, error) {
	h.ensureLive()
	h.ensureInit()

	if n <= 0 {
		return NilRef, nil, ErrBadSize
	}

	// True block size: payload plus header, rounded up to the alignment.
	// The result must not reach the allocated-flag bit.
	need := format.AlignUp(uint64(n)+h.hdrSize, uint64(h.cfg.Alignment))
	if need == 0 || need&allocatedBit != 0 {
		return NilRef, nil, ErrBadSize
	}

	// Fast-path rejection: aggregate free space already too small.
	if need > uint64(h.freeBytes) {
		return NilRef, nil, ErrNoSpace
	}

	prev, blk := h.findFit(need)
	if blk == h.end {
		return NilRef, nil, ErrNoSpace
	}

	// Unlink the chosen block.
	h.setNext(prev, h.next(blk))

	// Split when the remainder is big enough to be a viable block on its
	// own; otherwise hand out the whole block and accept the padding.
	blkSize := h.logicalSize(blk)
	if blkSize-need > h.minBlock {
		tail := blk + need
		h.setFreeSize(tail, blkSize-need)
		h.insertFreeBlock(tail)
		h.setFreeSize(blk, need)
		blkSize = need
	}

	h.freeBytes -= int(blkSize)
	if h.freeBytes < h.minFreeBytes {
		h.minFreeBytes = h.freeBytes
	}

	h.markAllocated(blk)
	h.setNext(blk, nilRef)
	h.allocs++

	ref := Ref(blk + h.hdrSize)
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[heapkit] alloc: n=%d block=%d ref=0x%x free=%d\n",
			n, blkSize, ref, h.freeBytes)
	}
	return ref, h.buf[ref : blk+blkSize], nil
}

// findFit returns the predecessor and the chosen free block for a request
// of need bytes. blk == h.end means no block is large enough.
func (h *Heap) findFit(need uint64) (prev, blk uint64) {
	if h.cfg.Strategy == BestFit {
		return h.findBestFit(need)
	}

	// First-fit: skip undersized blocks until one fits or the walk hits
	// the end sentinel.
	prev = h.start
	blk = h.next(prev)
	for h.logicalSize(blk) < need && h.next(blk) != nilRef {
		prev = blk
		blk = h.next(blk)
	}
	return prev, blk
}

// findBestFit walks the entire free list and picks the smallest block that
// fits, preferring the lower address on ties.
func (h *Heap) findBestFit(need uint64) (prev, blk uint64) {
	bestPrev, best := h.start, h.end
	bestSize := ^uint64(0)
	p := h.start
	for b := h.next(p); b != h.end; p, b = b, h.next(b) {
		if sz := h.logicalSize(b); sz >= need && sz < bestSize {
			bestPrev, best, bestSize = p, b, sz
		}
	}
	return bestPrev, best
}

package heap

import "github.com/joshuapare/heapkit/internal/format"

// Block header layout (little-endian, embedded in the arena):
//
//	Offset  Size  Description
//	0x00    8     Free-list link: arena offset of the next free block.
//	              nilRef (0) means end of list, or "not linked" for an
//	              allocated block - its value doubles as the double-free
//	              detector.
//	0x08    8     Total block size including the header. Bit 63 is the
//	              allocated flag and must be masked off before any size
//	              arithmetic; the raw field never leaves this file.
//
// The header occupies rawHeaderSize bytes rounded up to the configured
// alignment, so payloads stay aligned.
const (
	rawHeaderSize = 16
	nextFieldOff  = 0
	sizeFieldOff  = 8

	allocatedBit = uint64(1) << 63
	sizeMask     = allocatedBit - 1
)

// Ref is an arena-relative payload offset returned by Alloc.
type Ref = uint64

// NilRef is the zero Ref. Free(NilRef) is a no-op. Offset 0 can never be a
// payload: the start sentinel and at least one header precede every block.
const NilRef Ref = 0

// nilRef terminates the free list and marks allocated blocks as unlinked.
const nilRef uint64 = 0

func (h *Heap) next(off uint64) uint64 {
	return format.ReadU64(h.buf, int(off)+nextFieldOff)
}

func (h *Heap) setNext(off, v uint64) {
	format.PutU64(h.buf, int(off)+nextFieldOff, v)
}

// logicalSize returns the block size with the allocated flag masked off.
func (h *Heap) logicalSize(off uint64) uint64 {
	return format.ReadU64(h.buf, int(off)+sizeFieldOff) & sizeMask
}

// isAllocated reports whether the block's allocated flag is set.
func (h *Heap) isAllocated(off uint64) bool {
	return format.ReadU64(h.buf, int(off)+sizeFieldOff)&allocatedBit != 0
}

// setFreeSize writes the block size with the allocated flag clear.
func (h *Heap) setFreeSize(off, size uint64) {
	format.PutU64(h.buf, int(off)+sizeFieldOff, size)
}

// markAllocated sets the allocated flag, preserving the size.
func (h *Heap) markAllocated(off uint64) {
	raw := format.ReadU64(h.buf, int(off)+sizeFieldOff)
	format.PutU64(h.buf, int(off)+sizeFieldOff, raw|allocatedBit)
}

// clearAllocated clears the allocated flag, preserving the size.
func (h *Heap) clearAllocated(off uint64) {
	raw := format.ReadU64(h.buf, int(off)+sizeFieldOff)
	format.PutU64(h.buf, int(off)+sizeFieldOff, raw&^allocatedBit)
}

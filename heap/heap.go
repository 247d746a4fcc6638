package heap

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/mmbuf"
)

// Runtime debug flag for allocation tracing - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// DefaultAlignment is the payload alignment used when Config.Alignment is zero.
// Eight bytes covers every scalar type, including float64, on common targets.
const DefaultAlignment = 8

// MinAlignment is the smallest accepted alignment (32-bit word size).
const MinAlignment = 4

// Strategy selects how Alloc searches the free list.
type Strategy uint8

const (
	// FirstFit returns the lowest-addressed free block large enough.
	// This is the default and the documented behaviour of the allocator.
	FirstFit Strategy = iota

	// BestFit walks the whole free list and returns the smallest block
	// large enough, trading a longer search for less fragmentation.
	BestFit
)

// Config describes a fixed arena. The zero value is not usable: Size is
// required. All other fields default sensibly.
type Config struct {
	// Size is the total arena size in bytes.
	Size int

	// Alignment for block sizes and payload addresses. Must be a power of
	// two, at least MinAlignment. Defaults to DefaultAlignment.
	Alignment int

	// ZeroOnFree overwrites the payload with zero bytes on Free, so
	// sensitive data cannot survive a release.
	ZeroOnFree bool

	// Strategy selects the free-list search. Defaults to FirstFit.
	Strategy Strategy

	// OnCorruption is invoked on a fatal corruption or double-free
	// condition. If nil, the Heap panics with a *CorruptionError. A
	// handler that returns normally aborts the offending operation
	// without touching arena state.
	OnCorruption func(error)
}

// Heap is a fixed-arena allocator. Not goroutine-safe; see SafeHeap.
type Heap struct {
	cfg     Config
	buf     []byte
	release func() error // set by NewMapped

	hdrSize  uint64 // header size rounded up to cfg.Alignment
	minBlock uint64 // split threshold: twice the header size

	// start is the offset of the zero-size start sentinel; end the offset
	// of the zero-size end sentinel. end == 0 means the arena has not been
	// initialized yet (the first Alloc does it, exactly once).
	start uint64
	end   uint64

	capacity     int // initial free bytes, fixed at initialization
	freeBytes    int
	minFreeBytes int
	allocs       uint64
	frees        uint64
}

// New creates a Heap over a private buffer of cfg.Size bytes. The arena
// itself is laid out lazily on the first allocation.
func New(cfg Config) (*Heap, error) {
	h, err := prepare(cfg)
	if err != nil {
		return nil, err
	}
	h.buf = make([]byte, cfg.Size)
	return h, nil
}

// NewMapped creates a Heap whose arena is an anonymous memory mapping
// outside the Go heap. Close releases the mapping.
func NewMapped(cfg Config) (*Heap, error) {
	h, err := prepare(cfg)
	if err != nil {
		return nil, err
	}
	buf, release, err := mmbuf.Alloc(cfg.Size)
	if err != nil {
		return nil, err
	}
	h.buf = buf
	h.release = release
	return h, nil
}

// prepare validates cfg and builds a Heap without backing memory.
func prepare(cfg Config) (*Heap, error) {
	if cfg.Alignment == 0 {
		cfg.Alignment = DefaultAlignment
	}
	if cfg.Alignment < MinAlignment || !format.IsPowerOfTwo(uint64(cfg.Alignment)) {
		return nil, fmt.Errorf("%w: alignment %d must be a power of two >= %d",
			ErrBadConfig, cfg.Alignment, MinAlignment)
	}
	if cfg.Strategy > BestFit {
		return nil, fmt.Errorf("%w: unknown fit strategy %d", ErrBadConfig, cfg.Strategy)
	}
	hdrSize := format.AlignUp(rawHeaderSize, uint64(cfg.Alignment))
	// Room for both sentinels, one minimum block and worst-case skew from
	// an unaligned buffer start.
	minSize := int(4*hdrSize) + cfg.Alignment
	if cfg.Size < minSize {
		return nil, fmt.Errorf("%w: size %d too small (need at least %d for alignment %d)",
			ErrBadConfig, cfg.Size, minSize, cfg.Alignment)
	}
	return &Heap{
		cfg:      cfg,
		hdrSize:  hdrSize,
		minBlock: hdrSize * 2,
	}, nil
}

// Close releases the arena. For mapped heaps the mapping is unmapped; for
// private buffers the memory is left to the garbage collector. Any use of
// the Heap after Close panics.
func (h *Heap) Close() error {
	var err error
	if h.release != nil {
		err = h.release()
		h.release = nil
	}
	h.buf = nil
	h.end = 0
	return err
}

// ensureLive panics if the heap has been closed.
func (h *Heap) ensureLive() {
	if h.buf == nil {
		panic("heap: use after Close")
	}
}

// ensureInit lays out the arena on first use: computes the aligned usable
// span, installs both sentinels and one free block covering everything in
// between. A no-op on every later call.
func (h *Heap) ensureInit() {
	if h.end != 0 {
		return
	}
	align := uint64(h.cfg.Alignment)

	// The buffer start may not be aligned for the configured payload
	// alignment; skip the misaligned prefix so that every aligned offset
	// maps to an aligned address.
	base := uintptr(unsafe.Pointer(&h.buf[0]))
	var skew uintptr
	if rem := base % uintptr(align); rem != 0 {
		skew = uintptr(align) - rem
	}
	start := uint64(skew)

	// End sentinel sits at the highest aligned offset that still leaves
	// room for its header.
	end := start + format.AlignDown(uint64(len(h.buf))-h.hdrSize-start, align)

	// Start sentinel: zero size, links to the initial free block.
	first := start + h.hdrSize
	h.setFreeSize(start, 0)
	h.setNext(start, first)

	// One free block spans the whole usable region.
	h.setFreeSize(first, end-first)
	h.setNext(first, end)

	// End sentinel: zero size, never merged, never allocated.
	h.setFreeSize(end, 0)
	h.setNext(end, nilRef)

	h.start = start
	h.end = end
	h.capacity = int(end - first)
	h.freeBytes = h.capacity
	h.minFreeBytes = h.capacity

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[heapkit] init: arena=%d usable=%d align=%d hdr=%d\n",
			len(h.buf), h.capacity, align, h.hdrSize)
	}
}

package heap

// Stats is a snapshot of arena accounting.
type Stats struct {
	Capacity         int    // usable bytes right after initialization (0 before first Alloc)
	FreeBytes        int    // bytes currently free
	MinEverFreeBytes int    // lowest FreeBytes ever observed (the watermark)
	Allocs           uint64 // successful allocations
	Frees            uint64 // successful frees
}

// FreeBytes returns the number of bytes currently free in the arena.
// Zero before the first allocation initializes the arena.
func (h *Heap) FreeBytes() int {
	return h.freeBytes
}

// MinEverFreeBytes returns the historical minimum of FreeBytes since the
// arena was initialized. It never increases over the arena's lifetime.
func (h *Heap) MinEverFreeBytes() int {
	return h.minFreeBytes
}

// Capacity returns the usable arena size recorded at initialization.
func (h *Heap) Capacity() int {
	return h.capacity
}

// Stats returns a snapshot of arena statistics.
func (h *Heap) Stats() Stats {
	return Stats{
		Capacity:         h.capacity,
		FreeBytes:        h.freeBytes,
		MinEverFreeBytes: h.minFreeBytes,
		Allocs:           h.allocs,
		Frees:            h.frees,
	}
}

package heap

import "sync"

// SafeHeap is a mutex-protected wrapper around Heap for concurrent access.
// The lock covers each entire search/split/merge sequence and is released
// on every exit path, including failures.
type SafeHeap struct {
	mu sync.Mutex
	h  *Heap
}

// NewSafe creates a goroutine-safe heap over a private buffer.
func NewSafe(cfg Config) (*SafeHeap, error) {
	h, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &SafeHeap{h: h}, nil
}

// NewSafeMapped creates a goroutine-safe heap over an anonymous mapping.
func NewSafeMapped(cfg Config) (*SafeHeap, error) {
	h, err := NewMapped(cfg)
	if err != nil {
		return nil, err
	}
	return &SafeHeap{h: h}, nil
}

// Alloc thread-safely allocates a block of at least n payload bytes.
func (s *SafeHeap) Alloc(n int) (Ref, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Alloc(n)
}

// Free thread-safely releases a block previously returned by Alloc.
func (s *SafeHeap) Free(ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Free(ref)
}

// FreeBytes thread-safely returns the current free-byte count.
func (s *SafeHeap) FreeBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.FreeBytes()
}

// MinEverFreeBytes thread-safely returns the free-byte watermark.
func (s *SafeHeap) MinEverFreeBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.MinEverFreeBytes()
}

// Capacity thread-safely returns the usable arena size.
func (s *SafeHeap) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Capacity()
}

// Stats thread-safely returns a snapshot of arena statistics.
func (s *SafeHeap) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Stats()
}

// CheckConsistency thread-safely validates every allocator invariant.
func (s *SafeHeap) CheckConsistency() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.CheckConsistency()
}

// Close thread-safely releases the arena.
func (s *SafeHeap) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Close()
}

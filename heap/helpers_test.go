package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestHeap creates a heap with the default configuration.
func newTestHeap(t testing.TB, size int) *Heap {
	t.Helper()
	h, err := New(Config{Size: size})
	require.NoError(t, err)
	return h
}

// mustAlloc allocates n bytes or fails the test.
func mustAlloc(t testing.TB, h *Heap, n int) (Ref, []byte) {
	t.Helper()
	ref, buf, err := h.Alloc(n)
	require.NoError(t, err, "Alloc(%d)", n)
	require.NotEqual(t, NilRef, ref)
	require.GreaterOrEqual(t, len(buf), n)
	return ref, buf
}

// blockSize returns the total block size (header included) behind a payload ref.
func blockSize(h *Heap, ref Ref) int {
	return int(h.logicalSize(ref - h.hdrSize))
}

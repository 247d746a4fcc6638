package heap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappedHeapRoundTrip(t *testing.T) {
	h, err := NewMapped(Config{Size: 64 * 1024})
	require.NoError(t, err)
	defer h.Close()

	ref, buf, err := h.Alloc(128)
	require.NoError(t, err)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	assert.Zero(t, addr%DefaultAlignment)

	for i := range buf {
		buf[i] = byte(i)
	}
	h.Free(ref)
	require.NoError(t, h.CheckConsistency())
	assert.Equal(t, h.Capacity(), h.FreeBytes())
}

func TestMappedHeapClose(t *testing.T) {
	h, err := NewMapped(Config{Size: 64 * 1024})
	require.NoError(t, err)
	_, _, err = h.Alloc(32)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.Panics(t, func() { _, _, _ = h.Alloc(32) })
	// Close is idempotent.
	require.NoError(t, h.Close())
}

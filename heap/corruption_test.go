package heap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoubleFreePanics(t *testing.T) {
	h := newTestHeap(t, 4096)
	ref, _ := mustAlloc(t, h, 64)
	_, _ = mustAlloc(t, h, 64) // guard so the block keeps its own header

	h.Free(ref)
	assert.PanicsWithError(t,
		fmt.Sprintf("heap: corrupted arena state at ref 0x%x: block already free (double free)", ref),
		func() { h.Free(ref) })
}

func TestDoubleFreeWithHandler(t *testing.T) {
	var captured error
	h, err := New(Config{
		Size:         4096,
		OnCorruption: func(e error) { captured = e },
	})
	require.NoError(t, err)

	ref, _ := mustAlloc(t, h, 64)
	_, _ = mustAlloc(t, h, 64)
	h.Free(ref)
	before := h.Stats()

	h.Free(ref) // handler runs, operation is aborted
	require.Error(t, captured)
	var ce *CorruptionError
	require.ErrorAs(t, captured, &ce)
	assert.Equal(t, ref, ce.Ref)

	// Arena state must be untouched by the aborted free.
	assert.Equal(t, before, h.Stats())
	require.NoError(t, h.CheckConsistency())
}

func TestFreeGarbageRefDetected(t *testing.T) {
	var captured error
	h, err := New(Config{
		Size:         4096,
		OnCorruption: func(e error) { captured = e },
	})
	require.NoError(t, err)
	_, _ = mustAlloc(t, h, 64)

	// Out of range entirely.
	h.Free(1 << 30)
	require.Error(t, captured)

	// Inside the arena but misaligned: cannot be a payload.
	captured = nil
	h.Free(33)
	require.Error(t, captured)

	// Never-allocated ref before any block payload.
	captured = nil
	h.Free(8)
	require.Error(t, captured)

	require.NoError(t, h.CheckConsistency())
}

func TestFreeBeforeAnyAllocDetected(t *testing.T) {
	var captured error
	h, err := New(Config{
		Size:         4096,
		OnCorruption: func(e error) { captured = e },
	})
	require.NoError(t, err)
	h.Free(64)
	require.Error(t, captured)
}

func TestCheckConsistencyFindsDamage(t *testing.T) {
	h := newTestHeap(t, 4096)
	ref, _ := mustAlloc(t, h, 64)
	_, _ = mustAlloc(t, h, 64)
	require.NoError(t, h.CheckConsistency())

	// Smash the allocated block's free-list link: the invariant walker
	// must notice even though Free was never called.
	h.setNext(ref-h.hdrSize, 1234)
	err := h.CheckConsistency()
	require.ErrorIs(t, err, ErrInconsistent)
}

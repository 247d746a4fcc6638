package main

import (
	"fmt"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

var demoSize int

func init() {
	cmd := newDemoCmd()
	cmd.Flags().IntVar(&demoSize, "size", 40960, "Arena size in bytes")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through a scripted allocator session",
		Long: `The demo command runs a small scripted session against a fresh
arena: a burst of allocations, a coalescing free pattern, an oversized
request that fails cleanly, and a full cleanup with conservation checks.

Example:
  heapctl demo
  heapctl demo --size 8192`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

func runDemo() error {
	h, err := heap.New(heap.Config{Size: demoSize})
	if err != nil {
		return fmt.Errorf("failed to create arena: %w", err)
	}
	defer h.Close()

	printInfo("Arena created: %s usable of %s requested\n",
		formatBytes(int64(h.Capacity())), formatBytes(int64(demoSize)))
	printInfo("Initial free: %s, low point: %s\n\n",
		formatBytes(int64(h.FreeBytes())), formatBytes(int64(h.MinEverFreeBytes())))

	// A burst of small allocations.
	sizes := []int{10, 128, 50, 100}
	refs := make([]heap.Ref, len(sizes))
	bufs := make([][]byte, len(sizes))
	printInfo("Allocating %d blocks:\n", len(sizes))
	for i, n := range sizes {
		ref, buf, allocErr := h.Alloc(n)
		if allocErr != nil {
			return fmt.Errorf("Alloc(%d): %w", n, allocErr)
		}
		refs[i], bufs[i] = ref, buf
		addr := uintptr(unsafe.Pointer(&buf[0]))
		printInfo("  p%d = Alloc(%d) -> ref 0x%x, %d payload bytes, addr %%%d = %d\n",
			i+1, n, ref, len(buf), heap.DefaultAlignment, addr%heap.DefaultAlignment)
	}
	printInfo("Free after burst: %s\n\n", formatBytes(int64(h.FreeBytes())))

	// Writing the full payload must be safe.
	for i := range bufs[1] {
		bufs[1][i] = 0xAB
	}
	printInfo("Wrote %d bytes into p2\n\n", len(bufs[1]))

	// Free the middle block, then its left neighbour. The two blocks
	// coalesce into one span that a larger request can reuse in place.
	printInfo("Freeing p2 then p1 (adjacent blocks coalesce):\n")
	h.Free(refs[1])
	h.Free(refs[0])
	if err := h.CheckConsistency(); err != nil {
		return err
	}
	fused, _, err := h.Alloc(160)
	if err != nil {
		return fmt.Errorf("refit allocation: %w", err)
	}
	printInfo("  Alloc(160) -> ref 0x%x (p1 was 0x%x: the fused span was reused)\n\n",
		fused, refs[0])
	h.Free(fused)

	// An oversized request is rejected without touching the arena.
	before := h.Stats()
	oversized := h.Capacity() + 1
	if _, _, err := h.Alloc(oversized); err != nil {
		printInfo("Alloc(%d) rejected: %v\n\n", oversized, err)
	}
	after := h.Stats()
	if before.FreeBytes != after.FreeBytes {
		return fmt.Errorf("failed allocation changed accounting")
	}

	// Cleanup restores the initial free size exactly.
	h.Free(refs[2])
	h.Free(refs[3])
	if err := h.CheckConsistency(); err != nil {
		return err
	}

	st := h.Stats()
	if jsonOut {
		return printJSON(st)
	}
	printInfo("Final state:\n")
	printInfo("  Free: %s of %s\n", formatBytes(int64(st.FreeBytes)), formatBytes(int64(st.Capacity)))
	printInfo("  Low point: %s\n", formatBytes(int64(st.MinEverFreeBytes)))
	printInfo("  Allocs: %d, Frees: %d\n", st.Allocs, st.Frees)
	if st.FreeBytes == st.Capacity {
		printInfo("  All memory recovered\n")
	}
	return nil
}

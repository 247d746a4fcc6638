//go:build windows

package mmbuf

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Alloc reserves size bytes of committed, page-aligned memory outside the
// Go heap and returns the buffer plus a release function.
func Alloc(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmbuf: invalid size %d", size)
	}
	addr, err := windows.VirtualAlloc(
		0,
		uintptr(size),
		windows.MEM_COMMIT|windows.MEM_RESERVE,
		windows.PAGE_READWRITE,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("mmbuf: VirtualAlloc failed: %w", err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	released := false
	release := func() error {
		if released {
			return nil
		}
		released = true
		return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
	}
	return data, release, nil
}

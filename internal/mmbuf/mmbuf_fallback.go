//go:build !unix && !windows

package mmbuf

import "fmt"

// Alloc falls back to a regular Go allocation on platforms without an
// anonymous mapping primitive. The release function is a no-op; the
// buffer is reclaimed by the garbage collector.
func Alloc(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmbuf: invalid size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}

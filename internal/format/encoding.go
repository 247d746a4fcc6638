package format

import "encoding/binary"

// Binary encoding utilities for little-endian integers.
//
// Block headers live inside the arena byte buffer itself, so all header
// fields are read and written through these helpers rather than through
// Go struct overlays.
//
// Implementation: Uses encoding/binary.LittleEndian. The standard library
// implementation is already compiled down to single loads and stores on
// little-endian targets; unsafe pointer tricks buy nothing here.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

package format

// Alignment utilities for arena bookkeeping.
// Block sizes and offsets within an arena must stay multiples of the
// configured alignment so that every payload address is usable for any
// scalar type on the target.

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 8)  = 16
func AlignUp(n, align uint64) uint64 {
	mask := align - 1
	return (n + mask) &^ mask
}

// AlignDown returns n rounded down to the previous multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignDown(7, 8)  = 0
//	AlignDown(8, 8)  = 8
//	AlignDown(15, 8) = 8
func AlignDown(n, align uint64) uint64 {
	return n &^ (align - 1)
}

// IsAligned reports whether n is a multiple of align.
// align must be a power of two.
func IsAligned(n, align uint64) bool {
	return n&(align-1) == 0
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

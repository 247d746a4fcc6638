package heap

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpace indicates that no free block large enough was found for the request.
	ErrNoSpace = errors.New("heap: no free block large enough")

	// ErrBadSize indicates a zero-byte request or a size whose block
	// computation would overflow the representable range.
	ErrBadSize = errors.New("heap: bad allocation size")

	// ErrBadConfig indicates an invalid arena configuration.
	ErrBadConfig = errors.New("heap: invalid configuration")

	// ErrInconsistent indicates that a consistency check found arena state
	// violating an allocator invariant.
	ErrInconsistent = errors.New("heap: inconsistent arena state")
)

// CorruptionError reports a fatal free-list corruption or double free. It is
// never returned as an ordinary error value: it is passed to the configured
// corruption handler, or panicked with when no handler is set.
type CorruptionError struct {
	Ref    Ref    // payload reference that triggered detection
	Reason string // what the validation found
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("heap: corrupted arena state at ref 0x%x: %s", e.Ref, e.Reason)
}

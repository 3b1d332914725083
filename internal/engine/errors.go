package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxDepth is returned when a tree nests deeper than the engine's
	// maximum depth.
	ErrMaxDepth = errors.New("query exceeds maximum nesting depth")

	// ErrNilRoot is returned when Execute or Matches receives no tree.
	ErrNilRoot = errors.New("query has no root group")
)

// PanicError wraps a panic recovered during Execute.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("filter evaluation panicked: %v", e.Value)
}

func depthError(depth, limit int) error {
	return fmt.Errorf("%w: depth %d, limit %d", ErrMaxDepth, depth, limit)
}

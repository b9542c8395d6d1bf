package tensor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrUnsupportedOperation signals an explicit request for a derivative that
	// does not exist. Discrete selections (sampling, ball query) do not raise it
	// during backward passes; they yield zero gradients instead so that gradient
	// flow to unrelated parameters is preserved.
	ErrUnsupportedOperation = errors.New("operation has no gradient rule")

	ErrNotContiguous = errors.New("tensor memory is not contiguous")
)

// ShapeError reports a wrong-rank or dimension-mismatch precondition failure.
// It is detected before any buffer allocation or kernel dispatch.
type ShapeError struct {
	Op   string // Operation name (e.g., "furthest_point_sample")
	Want string // Expected shape, e.g. "(B, N, 3)"
	Got  Shape  // Actual shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected shape %s, got %v", e.Op, e.Want, e.Got)
}

// ValueError reports an invalid argument value (npoint out of range, negative
// radius, and similar). It is detected before any computation.
type ValueError struct {
	Op      string // Operation name
	Details string // What was wrong
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Details)
}

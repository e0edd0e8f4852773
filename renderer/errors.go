package renderer

import (
	"errors"
	"fmt"
)

// Sentinel errors for the renderer package.
var (
	// ErrAllocationFailed is returned when the block bitmap or its texture
	// cannot be created. The previous texture is left untouched.
	ErrAllocationFailed = errors.New("renderer: allocation failed")

	// ErrRasterizationFailed is reported by fonts that cannot render a line.
	// The compositor recovers by drawing a blank line.
	ErrRasterizationFailed = errors.New("renderer: rasterization failed")

	// ErrNoFont is returned when a Font is required but none was given.
	ErrNoFont = errors.New("renderer: no font")
)

// RasterizeError records which line failed to rasterize.
type RasterizeError struct {
	Line int
	Text string
	Err  error
}

func (e *RasterizeError) Error() string {
	return fmt.Sprintf("renderer: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *RasterizeError) Unwrap() error { return e.Err }

package dvisvg

import "errors"

// Sentinel errors for conversion operations.
var (
	// ErrPageRange is returned when the first requested page lies beyond
	// the end of the document.
	ErrPageRange = errors.New("page out of range")

	// ErrConfiguration wraps malformed transformation commands and other
	// invalid settings. It aborts the current document.
	ErrConfiguration = errors.New("invalid configuration")

	// Image pipeline errors.
	ErrRasterizerUnavailable = errors.New("rasterizer not available")
	ErrInvalidImage          = errors.New("invalid image file")

	ErrInvalidPageRange = errors.New("invalid page range format")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrNoInterpreter    = errors.New("no DVI interpreter")
)

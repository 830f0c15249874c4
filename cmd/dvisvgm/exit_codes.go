package main

import (
	"errors"
	"os"

	dvisvg "github.com/alnah/go-dvisvg"
	"github.com/alnah/go-dvisvg/internal/config"
	"github.com/alnah/go-dvisvg/internal/dvi"
	"github.com/alnah/go-dvisvg/internal/raster"
)

// Exit codes for the dvisvgm CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Successful conversion
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or page selection
	ExitIO         = 3 // File not found, unreadable input
	ExitRasterizer = 4 // Ghostscript or MuPDF errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Rasterizer errors (exit 4)
	if errors.Is(err, dvisvg.ErrRasterizerUnavailable) ||
		errors.Is(err, raster.ErrGhostscript) ||
		errors.Is(err, raster.ErrMuPDF) {
		return ExitRasterizer
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, dvi.ErrInvalidDVI) ||
		errors.Is(err, dvisvg.ErrInvalidImage) ||
		errors.Is(err, raster.ErrInvalidFormat) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dvisvg.ErrConfiguration) ||
		errors.Is(err, dvisvg.ErrPageRange) ||
		errors.Is(err, dvisvg.ErrInvalidPageRange) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

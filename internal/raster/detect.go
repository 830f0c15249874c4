package raster

import (
	"path/filepath"
	"strings"
)

// Detect picks the rasterizer for path: pdf for PDF files when it is set
// and available, gs otherwise.
func Detect(path string, gs, pdf Rasterizer) Rasterizer {
	isPDF := strings.EqualFold(filepath.Ext(path), ".pdf") || sniff(path) == formatPDF
	if isPDF && pdf != nil && pdf.Available() {
		return pdf
	}
	return gs
}

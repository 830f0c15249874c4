// Package raster renders PostScript, EPS and PDF pages into PNG images
// embedded in an SVG tree. Ghostscript handles PostScript; MuPDF handles
// PDF when it is available.
package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// Sentinel errors.
var (
	ErrGhostscript   = errors.New("ghostscript failed")
	ErrMuPDF         = errors.New("mupdf failed")
	ErrInvalidFormat = errors.New("unsupported image format")
	ErrPageRange     = errors.New("page out of range")
)

// DefaultResolution is the rendering resolution in dpi when a request
// does not set one.
const DefaultResolution = 300

// Request describes one page to render. BBox is in SVG coordinates
// (y pointing down) measured in PostScript points.
type Request struct {
	Path       string
	Page       int
	BBox       geom.BoundingBox
	Resolution float64
}

func (r Request) resolution() float64 {
	if r.Resolution <= 0 {
		return DefaultResolution
	}
	return r.Resolution
}

// Rasterizer renders pages of an image file into an SVG element.
type Rasterizer interface {
	// Available reports whether the rasterizer can run at all.
	Available() bool
	// Valid reports whether path looks like a file the rasterizer handles.
	Valid(path string) bool
	// SinglePage reports whether the format holds exactly one page.
	SinglePage(path string) bool
	PageCount(ctx context.Context, path string) (int, error)
	// BBox returns the extent of a page in SVG coordinates (bp).
	BBox(ctx context.Context, path string, page int) (geom.BoundingBox, error)
	// Process renders req into sink. tick is called as rendering advances
	// and may be nil.
	Process(ctx context.Context, req Request, sink *xmltree.Element, tick func()) error
}

// Compile-time interface checks.
var (
	_ Rasterizer = (*Ghostscript)(nil)
	_ Rasterizer = (*MuPDF)(nil)
)

// embedPNG appends an <image> covering box with the PNG data inlined.
func embedPNG(sink *xmltree.Element, box geom.BoundingBox, data []byte) {
	img := sink.AppendElement("image")
	img.AddNumberAttribute("x", box.MinX())
	img.AddNumberAttribute("y", box.MinY())
	img.AddNumberAttribute("width", box.Width())
	img.AddNumberAttribute("height", box.Height())
	img.AddAttribute("xmlns:xlink", "http://www.w3.org/1999/xlink")
	img.AddAttribute("xlink:href", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tickWriter calls tick for every chunk written through it.
type tickWriter struct {
	w    io.Writer
	tick func()
}

func (t *tickWriter) Write(p []byte) (int, error) {
	if t.tick != nil && len(p) > 0 {
		t.tick()
	}
	return t.w.Write(p)
}

// fromPS converts a PostScript box (y up) into SVG coordinates.
func fromPS(llx, lly, urx, ury float64) geom.BoundingBox {
	return geom.NewBoundingBox(llx, -ury, urx, -lly)
}

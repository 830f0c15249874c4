package raster

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// MuPDF rasterizes PDF files with the MuPDF library.
type MuPDF struct {
	Logger zerolog.Logger
}

// NewMuPDF creates a PDF rasterizer.
func NewMuPDF(logger zerolog.Logger) *MuPDF { return &MuPDF{Logger: logger} }

// Available is always true: the library is linked in.
func (m *MuPDF) Available() bool { return true }

func (m *MuPDF) Valid(path string) bool { return sniff(path) == formatPDF }

func (m *MuPDF) SinglePage(string) bool { return false }

func (m *MuPDF) PageCount(ctx context.Context, path string) (int, error) {
	doc, err := m.open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// BBox returns the page bounds; MuPDF reports them in points at 72 dpi.
func (m *MuPDF) BBox(ctx context.Context, path string, page int) (geom.BoundingBox, error) {
	doc, err := m.open(ctx, path)
	if err != nil {
		return geom.BoundingBox{}, err
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return geom.BoundingBox{}, fmt.Errorf("%w: page %d of %d", ErrPageRange, page, doc.NumPage())
	}
	r, err := doc.Bound(page - 1)
	if err != nil {
		return geom.BoundingBox{}, fmt.Errorf("%w: %v", ErrMuPDF, err)
	}
	return geom.NewBoundingBox(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y)), nil
}

func (m *MuPDF) Process(ctx context.Context, req Request, sink *xmltree.Element, tick func()) error {
	if !req.BBox.Usable() {
		return nil
	}
	doc, err := m.open(ctx, req.Path)
	if err != nil {
		return err
	}
	defer doc.Close()

	if req.Page < 1 || req.Page > doc.NumPage() {
		return fmt.Errorf("%w: page %d of %d", ErrPageRange, req.Page, doc.NumPage())
	}
	m.Logger.Debug().Int("page", req.Page).Float64("dpi", req.resolution()).Msg("rendering PDF page")
	img, err := doc.ImageDPI(req.Page-1, req.resolution())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMuPDF, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if tick != nil {
		tick()
	}
	data, err := encodePNG(img)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMuPDF, err)
	}
	embedPNG(sink, req.BBox, data)
	return nil
}

func (m *MuPDF) open(ctx context.Context, path string) (*fitz.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMuPDF, err)
	}
	return doc, nil
}

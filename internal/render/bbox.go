// Package render provides the DVI action handlers: one that only measures
// a page and one that builds its SVG content.
package render

import (
	"github.com/alnah/go-dvisvg/internal/dvi"
	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/geom"
)

// Compile-time interface checks.
var (
	_ dvi.Actions = (*BBoxActions)(nil)
	_ dvi.Actions = (*SVGActions)(nil)
)

// BBoxActions accumulates the extent of a page's glyphs and rules.
type BBoxActions struct {
	box geom.BoundingBox
}

// NewBBoxActions creates a handler with an empty box.
func NewBBoxActions() *BBoxActions { return &BBoxActions{} }

// BBox returns the box of everything drawn since the last BeginPage.
func (b *BBoxActions) BBox() geom.BoundingBox { return b.box }

func (b *BBoxActions) SetChar(x, y float64, c int, f font.Font) {
	b.box = b.box.Embed(geom.NewBoundingBox(x, y-f.CharHeight(c), x+f.CharWidth(c), y+f.CharDepth(c)))
}

func (b *BBoxActions) SetRule(x, y, height, width float64) {
	b.box = b.box.Embed(geom.NewBoundingBox(x, y-height, x+width, y))
}

func (b *BBoxActions) Special(string, float64, float64) {}

func (b *BBoxActions) BeginPage(int, [10]int32) { b.box = geom.BoundingBox{} }

func (b *BBoxActions) EndPage() {}

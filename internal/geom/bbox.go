// Package geom provides the page geometry used while assembling SVG pages:
// bounding boxes, affine matrices, length units and paper sizes.
// All lengths are TeX points unless stated otherwise.
package geom

import (
	"fmt"
	"math"

	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// BoundingBox is an axis-aligned rectangle. The zero value is empty
// (invalid) and becomes valid once a point or a valid box is embedded.
type BoundingBox struct {
	minX, minY float64
	maxX, maxY float64
	valid      bool
}

// NewBoundingBox creates a valid box spanning the two corner points in any order.
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{
		minX:  math.Min(x1, x2),
		minY:  math.Min(y1, y2),
		maxX:  math.Max(x1, x2),
		maxY:  math.Max(y1, y2),
		valid: true,
	}
}

// Valid reports whether the box holds an extent.
func (b BoundingBox) Valid() bool { return b.valid }

func (b BoundingBox) MinX() float64 { return b.minX }
func (b BoundingBox) MinY() float64 { return b.minY }
func (b BoundingBox) MaxX() float64 { return b.maxX }
func (b BoundingBox) MaxY() float64 { return b.maxY }

// Width returns the horizontal extent, or 0 for an invalid box.
func (b BoundingBox) Width() float64 {
	if !b.valid {
		return 0
	}
	return b.maxX - b.minX
}

// Height returns the vertical extent, or 0 for an invalid box.
func (b BoundingBox) Height() float64 {
	if !b.valid {
		return 0
	}
	return b.maxY - b.minY
}

// Usable reports whether both extents are strictly positive.
func (b BoundingBox) Usable() bool {
	return b.valid && b.Width() > 0 && b.Height() > 0
}

// Embed returns the union of b and o. Invalid boxes do not contribute.
func (b BoundingBox) Embed(o BoundingBox) BoundingBox {
	if !o.valid {
		return b
	}
	if !b.valid {
		return o
	}
	return BoundingBox{
		minX:  math.Min(b.minX, o.minX),
		minY:  math.Min(b.minY, o.minY),
		maxX:  math.Max(b.maxX, o.maxX),
		maxY:  math.Max(b.maxY, o.maxY),
		valid: true,
	}
}

// EmbedPoint returns the smallest box containing b and (x, y).
func (b BoundingBox) EmbedPoint(x, y float64) BoundingBox {
	return b.Embed(NewBoundingBox(x, y, x, y))
}

// Translate moves the box by (dx, dy). Invalid boxes stay invalid.
func (b BoundingBox) Translate(dx, dy float64) BoundingBox {
	if !b.valid {
		return b
	}
	b.minX += dx
	b.maxX += dx
	b.minY += dy
	b.maxY += dy
	return b
}

// Expand grows the box by dx on the left and right and by dy on the top
// and bottom. Negative deltas shrink it; the result is not clamped.
func (b BoundingBox) Expand(dx, dy float64) BoundingBox {
	if !b.valid {
		return b
	}
	return NewBoundingBox(b.minX-dx, b.minY-dy, b.maxX+dx, b.maxY+dy)
}

// Transform returns the box enclosing the four corners of b mapped by m.
func (b BoundingBox) Transform(m Matrix) BoundingBox {
	if !b.valid {
		return b
	}
	x1, y1 := m.Apply(b.minX, b.minY)
	x2, y2 := m.Apply(b.maxX, b.minY)
	x3, y3 := m.Apply(b.minX, b.maxY)
	x4, y4 := m.Apply(b.maxX, b.maxY)
	return NewBoundingBox(x1, y1, x2, y2).EmbedPoint(x3, y3).EmbedPoint(x4, y4)
}

// ViewBox formats the box as an SVG viewBox value "minX minY width height".
func (b BoundingBox) ViewBox() string {
	return xmltree.FormatNumber(b.minX) + " " + xmltree.FormatNumber(b.minY) + " " +
		xmltree.FormatNumber(b.Width()) + " " + xmltree.FormatNumber(b.Height())
}

func (b BoundingBox) String() string {
	if !b.valid {
		return "(empty)"
	}
	return fmt.Sprintf("(%s, %s, %s, %s)",
		xmltree.FormatNumber(b.minX), xmltree.FormatNumber(b.minY),
		xmltree.FormatNumber(b.maxX), xmltree.FormatNumber(b.maxY))
}

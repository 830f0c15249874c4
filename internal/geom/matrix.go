package geom

import (
	"math"

	"github.com/srwiley/rasterx"

	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// Matrix is an immutable 2D affine transformation [a b c d e f] mapping
// (x, y) to (a·x + c·y + e, b·x + d·y + f).
type Matrix struct {
	m rasterx.Matrix2D
}

// Identity returns the identity transformation.
func Identity() Matrix {
	return NewMatrix(1, 0, 0, 1, 0, 0)
}

// NewMatrix creates a matrix from its six coefficients.
func NewMatrix(a, b, c, d, e, f float64) Matrix {
	return Matrix{m: rasterx.Matrix2D{A: a, B: b, C: c, D: d, E: e, F: f}}
}

// Translation moves points by (tx, ty).
func Translation(tx, ty float64) Matrix {
	return NewMatrix(1, 0, 0, 1, tx, ty)
}

// Scaling scales points by (sx, sy) about the origin.
func Scaling(sx, sy float64) Matrix {
	return NewMatrix(sx, 0, 0, sy, 0, 0)
}

// Rotation rotates points by deg degrees about the origin.
// In the y-down SVG coordinate system positive angles turn clockwise.
func Rotation(deg float64) Matrix {
	s, c := math.Sincos(deg * math.Pi / 180)
	return NewMatrix(c, s, -s, c, 0, 0)
}

// RotationAbout rotates points by deg degrees about (x, y).
func RotationAbout(deg, x, y float64) Matrix {
	return Translation(-x, -y).LMultiply(Rotation(deg)).LMultiply(Translation(x, y))
}

// SkewingX shears along the x axis by deg degrees.
func SkewingX(deg float64) Matrix {
	return NewMatrix(1, 0, math.Tan(deg*math.Pi/180), 1, 0, 0)
}

// SkewingY shears along the y axis by deg degrees.
func SkewingY(deg float64) Matrix {
	return NewMatrix(1, math.Tan(deg*math.Pi/180), 0, 1, 0, 0)
}

// FlipH mirrors points at the horizontal line through (0, y).
func FlipH(y float64) Matrix {
	return NewMatrix(1, 0, 0, -1, 0, 2*y)
}

// FlipV mirrors points at the vertical line through (x, 0).
func FlipV(x float64) Matrix {
	return NewMatrix(-1, 0, 0, 1, 2*x, 0)
}

// LMultiply returns n·m: the transformation applying m first, then n.
func (m Matrix) LMultiply(n Matrix) Matrix {
	return Matrix{m: n.m.Mult(m.m)}
}

// Apply maps the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.m.Transform(x, y)
}

// IsIdentity reports whether m leaves every point unchanged.
func (m Matrix) IsIdentity() bool {
	return m.m == Identity().m
}

// Coefficients returns a, b, c, d, e and f.
func (m Matrix) Coefficients() [6]float64 {
	return [6]float64{m.m.A, m.m.B, m.m.C, m.m.D, m.m.E, m.m.F}
}

// SVG formats m as an SVG transform attribute value.
func (m Matrix) SVG() string {
	s := "matrix("
	for i, v := range m.Coefficients() {
		if i > 0 {
			s += " "
		}
		s += xmltree.FormatNumber(v)
	}
	return s + ")"
}

package fontsvg

import (
	"strings"

	"golang.org/x/image/math/fixed"

	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// Path accumulates glyph outline commands in 26.6 fixed point font units
// and serializes them as SVG path data. Coordinates are stored y-up.
type Path struct {
	sb    strings.Builder
	empty bool
}

// NewPath creates an empty path.
func NewPath() *Path { return &Path{empty: true} }

func (p *Path) cmd(op byte, pts ...fixed.Point26_6) {
	p.empty = false
	p.sb.WriteByte(op)
	for i, pt := range pts {
		if i > 0 {
			p.sb.WriteByte(' ')
		}
		p.sb.WriteString(coord(pt.X))
		p.sb.WriteByte(' ')
		p.sb.WriteString(coord(pt.Y))
	}
}

func coord(v fixed.Int26_6) string {
	return xmltree.FormatNumber(float64(v) / 64)
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(pt fixed.Point26_6) { p.cmd('M', pt) }

// LineTo adds a straight segment.
func (p *Path) LineTo(pt fixed.Point26_6) { p.cmd('L', pt) }

// QuadTo adds a quadratic Bézier segment.
func (p *Path) QuadTo(ctrl, pt fixed.Point26_6) { p.cmd('Q', ctrl, pt) }

// CubeTo adds a cubic Bézier segment.
func (p *Path) CubeTo(c1, c2, pt fixed.Point26_6) { p.cmd('C', c1, c2, pt) }

// Close closes the current subpath.
func (p *Path) Close() {
	if !p.empty {
		p.sb.WriteByte('Z')
	}
}

// Empty reports whether no command was added.
func (p *Path) Empty() bool { return p.empty }

// String returns the path data.
func (p *Path) String() string { return p.sb.String() }

// pt converts float font units to a fixed point.
func pt(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

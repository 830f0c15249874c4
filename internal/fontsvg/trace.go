package fontsvg

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// unitsPerEm is the em size of the SVG fonts written by the emitters.
const unitsPerEm = 1000

// GlyphSource provides the bitmaps of a traceable font. mag is the
// magnification the bitmaps should be rendered at.
type GlyphSource interface {
	Load(f *font.PhysicalFont, mag float64) (*font.PKFont, error)
}

// PKSource loads PK files, either from the font's own path or by looking
// up the conventional name at the magnified resolution.
type PKSource struct {
	Finder     *font.Finder
	Resolution float64

	mu    sync.Mutex
	cache map[string]*font.PKFont
}

// NewPKSource creates a PK source at font.DefaultResolution.
func NewPKSource(finder *font.Finder) *PKSource {
	return &PKSource{Finder: finder, Resolution: font.DefaultResolution}
}

// Load returns the PK font for f.
func (s *PKSource) Load(f *font.PhysicalFont, mag float64) (*font.PKFont, error) {
	path := s.path(f, mag)
	if path == "" {
		return nil, fmt.Errorf("%w: no PK file for %s", ErrNoGlyphSource, f.Name())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pk, ok := s.cache[path]; ok {
		return pk, nil
	}
	r, err := os.Open(path) // #nosec G304 -- path comes from the font finder
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGlyphSource, err)
	}
	defer func() { _ = r.Close() }()
	pk, err := font.ParsePK(r)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		s.cache = make(map[string]*font.PKFont)
	}
	s.cache[path] = pk
	return pk, nil
}

func (s *PKSource) path(f *font.PhysicalFont, mag float64) string {
	if mag == 1 && strings.HasSuffix(strings.ToLower(f.Path()), "pk") {
		return f.Path()
	}
	res := s.Resolution
	if res <= 0 {
		res = font.DefaultResolution
	}
	dpi := int(math.Round(res * mag * f.ScaledSize() / f.DesignSize()))
	if p, ok := s.Finder.Find(font.PKFileName(f.Name(), dpi)); ok {
		return p
	}
	if strings.HasSuffix(strings.ToLower(f.Path()), "pk") {
		return f.Path()
	}
	return ""
}

// BitmapTracer converts PK glyph bitmaps into outlines along the pixel
// boundaries.
type BitmapTracer struct {
	Source GlyphSource
	Logger zerolog.Logger
	// OnProgress, if set, is called after each glyph with the font and
	// the running count of glyphs traced from it.
	OnProgress func(f *font.PhysicalFont, traced int)
}

// NewBitmapTracer creates a tracer reading bitmaps from src.
func NewBitmapTracer(src GlyphSource, logger zerolog.Logger) *BitmapTracer {
	return &BitmapTracer{Source: src, Logger: logger}
}

// EmitFont appends a <font> element with one glyph per traceable char.
// Chars missing from the bitmap font are logged and skipped.
func (t *BitmapTracer) EmitFont(f *font.PhysicalFont, chars []int, mag float64, defs *xmltree.Element) (int, error) {
	if t.Source == nil {
		return 0, ErrNoGlyphSource
	}
	pk, err := t.Source.Load(f, mag)
	if err != nil {
		return 0, err
	}
	if pk.HPPP <= 0 || pk.DesignSize <= 0 {
		return 0, fmt.Errorf("%w: %s has no resolution", font.ErrInvalidPK, f.Name())
	}
	unitsPerPixel := unitsPerEm / (pk.DesignSize * pk.HPPP)

	fontEl := newFontElement(defs, f.Name())
	maxAdv := 0.0
	traced := 0
	for _, c := range chars {
		g, ok := pk.Glyphs[c]
		if !ok {
			t.Logger.Warn().Str("font", f.Name()).Int("char", c).Msg("glyph not found in bitmap font")
			continue
		}
		adv := g.TFMW * unitsPerEm
		maxAdv = math.Max(maxAdv, adv)
		glyph := fontEl.AppendElement("glyph")
		glyph.AddAttribute("unicode", string(font.CharRune(c)))
		glyph.AddNumberAttribute("horiz-adv-x", adv)
		if d := tracePath(g, unitsPerPixel); !d.Empty() {
			glyph.AddAttribute("d", d.String())
		}
		traced++
		if t.OnProgress != nil {
			t.OnProgress(f, traced)
		}
	}
	fontEl.AddNumberAttribute("horiz-adv-x", maxAdv)
	return traced, nil
}

func newFontElement(defs *xmltree.Element, name string) *xmltree.Element {
	fontEl := defs.AppendElement("font")
	fontEl.AddAttribute("id", name)
	fontEl.AddAttribute("horiz-adv-x", "0")
	face := fontEl.AppendElement("font-face")
	face.AddAttribute("font-family", name)
	face.AddNumberAttribute("units-per-em", unitsPerEm)
	return fontEl
}

// ----------------------------------------------------------------------------
// Contour tracing
// ----------------------------------------------------------------------------

type gridPoint struct{ x, y int }

type edge struct {
	from, to gridPoint
	used     bool
}

// tracePath returns the closed contours around the set pixels of g.
// Grid y grows downward; the result is in font units with y up and the
// reference point at the origin.
func tracePath(g *font.PKGlyph, unitsPerPixel float64) *Path {
	var edges []*edge
	starts := make(map[gridPoint][]*edge)
	set := func(x, y int) bool {
		return y >= 0 && y < len(g.Bitmap) && x >= 0 && x < len(g.Bitmap[y]) && g.Bitmap[y][x]
	}
	add := func(x0, y0, x1, y1 int) {
		e := &edge{from: gridPoint{x0, y0}, to: gridPoint{x1, y1}}
		edges = append(edges, e)
		starts[e.from] = append(starts[e.from], e)
	}
	for y, row := range g.Bitmap {
		for x, on := range row {
			if !on {
				continue
			}
			if !set(x, y-1) {
				add(x, y, x+1, y)
			}
			if !set(x+1, y) {
				add(x+1, y, x+1, y+1)
			}
			if !set(x, y+1) {
				add(x+1, y+1, x, y+1)
			}
			if !set(x-1, y) {
				add(x, y+1, x, y)
			}
		}
	}

	toFont := func(p gridPoint) (float64, float64) {
		return float64(p.x-g.HOffset) * unitsPerPixel, float64(g.VOffset-p.y) * unitsPerPixel
	}
	path := NewPath()
	for _, first := range edges {
		if first.used {
			continue
		}
		corners := traceContour(first, starts)
		for i, c := range corners {
			x, y := toFont(c)
			if i == 0 {
				path.MoveTo(pt(x, y))
			} else {
				path.LineTo(pt(x, y))
			}
		}
		path.Close()
	}
	return path
}

// traceContour follows unused edges from first until the contour closes
// and returns its corner points. At a vertex shared by two diagonal
// pixels the contour turns right, keeping the pixels in separate loops.
func traceContour(first *edge, starts map[gridPoint][]*edge) []gridPoint {
	var corners []gridPoint
	cur := first
	dir := gridPoint{}
	for cur != nil && !cur.used {
		cur.used = true
		d := gridPoint{cur.to.x - cur.from.x, cur.to.y - cur.from.y}
		if d != dir {
			corners = append(corners, cur.from)
			dir = d
		}
		cur = nextEdge(cur, starts[cur.to])
	}
	return corners
}

func nextEdge(cur *edge, candidates []*edge) *edge {
	d := gridPoint{cur.to.x - cur.from.x, cur.to.y - cur.from.y}
	right := gridPoint{-d.y, d.x}
	var any *edge
	for _, e := range candidates {
		if e.used {
			continue
		}
		if (gridPoint{e.to.x - e.from.x, e.to.y - e.from.y}) == right {
			return e
		}
		any = e
	}
	return any
}

package fontsvg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// maxFontFileSize bounds the bytes read from an outline font file.
const maxFontFileSize = 64 << 20

// SFNTEmitter converts TrueType and OpenType glyph outlines.
type SFNTEmitter struct {
	Logger zerolog.Logger
}

// NewSFNTEmitter creates an outline emitter.
func NewSFNTEmitter(logger zerolog.Logger) *SFNTEmitter {
	return &SFNTEmitter{Logger: logger}
}

// EmitFont appends a <font> element with the outlines of chars taken
// from the font file at path. Glyphs are selected through enc's glyph
// names when present and through the font's cmap otherwise. Type 1 files
// are reported as ErrUnsupportedFormat.
func (s *SFNTEmitter) EmitFont(f *font.PhysicalFont, path string, enc *font.Encoding, chars []int, defs *xmltree.Element) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pfb", ".pfa":
		return 0, fmt.Errorf("%w: %s is a Type 1 font", ErrUnsupportedFormat, filepath.Base(path))
	}
	data, err := readFontFile(path)
	if err != nil {
		return 0, err
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	var buf sfnt.Buffer
	byName := glyphNames(sf, &buf, enc)
	ppem := fixed.I(unitsPerEm)

	fontEl := newFontElement(defs, f.Name())
	var maxAdv fixed.Int26_6
	count := 0
	for _, c := range chars {
		idx, err := s.glyphIndex(sf, &buf, byName, enc, c)
		if err != nil || idx == 0 {
			s.Logger.Debug().Str("font", f.Name()).Int("char", c).Msg("no glyph for char")
			continue
		}
		adv, err := sf.GlyphAdvance(&buf, idx, ppem, xfont.HintingNone)
		if err != nil {
			s.Logger.Warn().Err(err).Str("font", f.Name()).Int("char", c).Msg("can't read glyph advance")
			continue
		}
		segs, err := sf.LoadGlyph(&buf, idx, ppem, nil)
		if err != nil {
			s.Logger.Warn().Err(err).Str("font", f.Name()).Int("char", c).Msg("can't load glyph")
			continue
		}
		if adv > maxAdv {
			maxAdv = adv
		}
		glyph := fontEl.AppendElement("glyph")
		glyph.AddAttribute("unicode", string(font.CharRune(c)))
		glyph.AddNumberAttribute("horiz-adv-x", float64(adv)/64)
		if d := segmentsPath(segs); !d.Empty() {
			glyph.AddAttribute("d", d.String())
		}
		count++
	}
	fontEl.AddNumberAttribute("horiz-adv-x", float64(maxAdv)/64)
	return count, nil
}

func readFontFile(path string) ([]byte, error) {
	r, err := os.Open(path) // #nosec G304 -- path comes from the font map
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(io.LimitReader(r, maxFontFileSize))
}

// glyphNames indexes the font's glyphs by PostScript name. It returns nil
// when no encoding is in use or the font carries no names.
func glyphNames(sf *sfnt.Font, buf *sfnt.Buffer, enc *font.Encoding) map[string]sfnt.GlyphIndex {
	if enc.Len() == 0 {
		return nil
	}
	names := make(map[string]sfnt.GlyphIndex, sf.NumGlyphs())
	for i := 0; i < sf.NumGlyphs(); i++ {
		name, err := sf.GlyphName(buf, sfnt.GlyphIndex(i))
		if err != nil {
			if errors.Is(err, sfnt.ErrNotFound) {
				return nil
			}
			continue
		}
		if name != "" {
			if _, dup := names[name]; !dup {
				names[name] = sfnt.GlyphIndex(i)
			}
		}
	}
	return names
}

func (s *SFNTEmitter) glyphIndex(sf *sfnt.Font, buf *sfnt.Buffer, byName map[string]sfnt.GlyphIndex, enc *font.Encoding, c int) (sfnt.GlyphIndex, error) {
	if name := enc.GlyphName(c); name != "" && byName != nil {
		if idx, ok := byName[name]; ok {
			return idx, nil
		}
	}
	return sf.GlyphIndex(buf, rune(c))
}

// segmentsPath converts sfnt segments, which are y-down, to a y-up path.
func segmentsPath(segs sfnt.Segments) *Path {
	flip := func(p fixed.Point26_6) fixed.Point26_6 { return fixed.Point26_6{X: p.X, Y: -p.Y} }
	path := NewPath()
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				path.Close()
			}
			path.MoveTo(flip(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			path.LineTo(flip(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			path.QuadTo(flip(seg.Args[0]), flip(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			path.CubeTo(flip(seg.Args[0]), flip(seg.Args[1]), flip(seg.Args[2]))
		}
	}
	if open {
		path.Close()
	}
	return path
}

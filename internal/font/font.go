// Package font models the fonts referenced by a DVI file: physical fonts
// backed by metrics plus a glyph source, and virtual fonts composed of
// other fonts. It also parses the TeX font files needed to load them.
//
// Fonts are always handled as pointers and compared by identity: two
// distinct instances with identical attributes are different fonts.
package font

import (
	"errors"
	"strings"
)

// Sentinel errors for font loading.
var (
	ErrFontNotFound = errors.New("font not found")
	ErrInvalidTFM   = errors.New("invalid TFM file")
	ErrInvalidPK    = errors.New("invalid PK file")
	ErrInvalidMap   = errors.New("invalid font map")
	ErrInvalidEnc   = errors.New("invalid encoding file")
)

// Font is implemented by *PhysicalFont and *VirtualFont.
// All lengths are TeX points at the font's scaled size.
type Font interface {
	Name() string
	ScaledSize() float64
	DesignSize() float64
	CharWidth(c int) float64
	CharHeight(c int) float64
	CharDepth(c int) float64
}

// Compile-time interface checks.
var (
	_ Font = (*PhysicalFont)(nil)
	_ Font = (*VirtualFont)(nil)
)

// Kind classifies where a physical font's glyph shapes come from.
type Kind int

const (
	// KindUnknown fonts have metrics only; their glyphs cannot be embedded.
	KindUnknown Kind = iota
	// KindMetafont fonts are bitmap/procedural fonts whose glyphs are traced.
	KindMetafont
	// KindOutline fonts are backed by an outline font file.
	KindOutline
)

func (k Kind) String() string {
	switch k {
	case KindMetafont:
		return "metafont"
	case KindOutline:
		return "outline"
	default:
		return "unknown"
	}
}

// Source describes the glyph source of a physical font.
type Source struct {
	Kind Kind
	// Path is the outline font file for KindOutline or the bitmap (PK)
	// file for KindMetafont. It may be empty.
	Path string
	// Encoding maps character codes to glyph names; nil means the font's
	// built-in encoding.
	Encoding *Encoding
	// PSName is the PostScript name from the font map, if any.
	PSName string
}

// PhysicalFont is a font that is drawn directly.
type PhysicalFont struct {
	name       string
	scaledSize float64
	metrics    *TFM
	source     Source
}

// NewPhysicalFont creates a font named name at scaledSize points.
// metrics may be nil, in which case all character dimensions are zero.
func NewPhysicalFont(name string, scaledSize float64, metrics *TFM, src Source) *PhysicalFont {
	return &PhysicalFont{name: name, scaledSize: scaledSize, metrics: metrics, source: src}
}

func (f *PhysicalFont) Name() string        { return f.name }
func (f *PhysicalFont) ScaledSize() float64 { return f.scaledSize }

// DesignSize returns the design size from the metrics, or the scaled size
// when no metrics are present.
func (f *PhysicalFont) DesignSize() float64 {
	if f.metrics == nil || f.metrics.DesignSize == 0 {
		return f.scaledSize
	}
	return f.metrics.DesignSize
}

func (f *PhysicalFont) CharWidth(c int) float64  { return f.metrics.Width(c) * f.scaledSize }
func (f *PhysicalFont) CharHeight(c int) float64 { return f.metrics.Height(c) * f.scaledSize }
func (f *PhysicalFont) CharDepth(c int) float64  { return f.metrics.Depth(c) * f.scaledSize }

// Kind returns the glyph source classification.
func (f *PhysicalFont) Kind() Kind { return f.source.Kind }

// Path returns the glyph source file, which may be empty.
func (f *PhysicalFont) Path() string { return f.source.Path }

// Encoding returns the encoding vector or nil.
func (f *PhysicalFont) Encoding() *Encoding { return f.source.Encoding }

// PSName returns the PostScript font name, falling back to the TeX name.
func (f *PhysicalFont) PSName() string {
	if f.source.PSName != "" {
		return f.source.PSName
	}
	return f.name
}

// Traceable reports whether glyphs are obtained by tracing bitmaps.
func (f *PhysicalFont) Traceable() bool { return f.source.Kind == KindMetafont }

// VirtualFont is a composite font whose characters are built from other
// fonts. It is never drawn itself.
type VirtualFont struct {
	name       string
	scaledSize float64
	metrics    *TFM
	fonts      []Font
}

// NewVirtualFont creates a virtual font composed of the given fonts.
func NewVirtualFont(name string, scaledSize float64, metrics *TFM, fonts ...Font) *VirtualFont {
	return &VirtualFont{name: name, scaledSize: scaledSize, metrics: metrics, fonts: fonts}
}

func (f *VirtualFont) Name() string        { return f.name }
func (f *VirtualFont) ScaledSize() float64 { return f.scaledSize }

func (f *VirtualFont) DesignSize() float64 {
	if f.metrics == nil || f.metrics.DesignSize == 0 {
		return f.scaledSize
	}
	return f.metrics.DesignSize
}

func (f *VirtualFont) CharWidth(c int) float64  { return f.metrics.Width(c) * f.scaledSize }
func (f *VirtualFont) CharHeight(c int) float64 { return f.metrics.Height(c) * f.scaledSize }
func (f *VirtualFont) CharDepth(c int) float64  { return f.metrics.Depth(c) * f.scaledSize }

// Fonts returns the constituent fonts.
func (f *VirtualFont) Fonts() []Font { return f.fonts }

// AsPhysical returns f as a physical font when it is one.
func AsPhysical(f Font) (*PhysicalFont, bool) {
	pf, ok := f.(*PhysicalFont)
	return pf, ok && pf != nil
}

// CSSFamily returns a font name usable as a CSS font-family value.
func CSSFamily(f Font) string {
	return strings.Map(func(r rune) rune {
		if r == '\'' || r == '"' || r == ';' || r == '{' || r == '}' {
			return -1
		}
		return r
	}, f.Name())
}

// IsPhysical reports whether f is drawn directly.
func IsPhysical(f Font) bool {
	_, ok := AsPhysical(f)
	return ok
}

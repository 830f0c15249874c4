// Package fontsvg embeds the glyphs used by a document as SVG fonts.
//
// Fonts backed by bitmap programs are traced from their PK bitmaps; fonts
// backed by TrueType or OpenType files are converted from their outlines.
// Only the characters recorded in the document's usage map are embedded.
package fontsvg

import (
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// Sentinel errors for font embedding.
var (
	ErrUnsupportedFormat = errors.New("unsupported font format")
	ErrNoGlyphSource     = errors.New("no glyph source")
)

// TraceEmitter writes traced glyphs of a bitmap font into defs and
// returns the number of glyphs written.
type TraceEmitter interface {
	EmitFont(f *font.PhysicalFont, chars []int, mag float64, defs *xmltree.Element) (int, error)
}

// OutlineEmitter writes the glyphs of an outline font file into defs and
// returns the number of glyphs written.
type OutlineEmitter interface {
	EmitFont(f *font.PhysicalFont, path string, enc *font.Encoding, chars []int, defs *xmltree.Element) (int, error)
}

// Compile-time interface checks.
var (
	_ TraceEmitter   = (*BitmapTracer)(nil)
	_ OutlineEmitter = (*SFNTEmitter)(nil)
)

// Stats summarizes an embedding run.
type Stats struct {
	Traced   int // fonts embedded by tracing
	Outlined int // fonts embedded from outline files
	Skipped  int // fonts that could not be embedded
	Glyphs   int // glyph definitions written
}

// Embedder classifies the fonts of a usage map and drives the matching
// emitter for each.
type Embedder struct {
	Trace   TraceEmitter
	Outline OutlineEmitter
	Mag     float64
	Logger  zerolog.Logger

	traced int // glyphs traced during the current Embed call
}

// NewEmbedder creates an embedder with the default emitters. finder
// locates PK files for fonts whose bitmap path is not yet known.
func NewEmbedder(finder *font.Finder, logger zerolog.Logger) *Embedder {
	e := &Embedder{
		Outline: NewSFNTEmitter(logger),
		Mag:     1,
		Logger:  logger,
	}
	tracer := NewBitmapTracer(NewPKSource(finder), logger)
	tracer.OnProgress = e.glyphTraced
	e.Trace = tracer
	return e
}

// glyphTraced logs the running count of glyphs traced by Embed.
func (e *Embedder) glyphTraced(f *font.PhysicalFont, _ int) {
	e.traced++
	e.Logger.Debug().Str("font", f.Name()).Int("traced", e.traced).Msg("glyph traced")
}

// Embed writes glyph definitions for every font in used into defs. Fonts
// are visited in ID order. Failures affect only the font they occur in.
func (e *Embedder) Embed(defs *xmltree.Element, used *font.UsedChars, ids func(font.Font) int) Stats {
	var st Stats
	if used == nil || defs == nil {
		return st
	}
	e.traced = 0
	fonts := used.Fonts()
	sort.SliceStable(fonts, func(i, j int) bool { return ids(fonts[i]) < ids(fonts[j]) })

	for _, f := range fonts {
		pf, ok := font.AsPhysical(f)
		if !ok {
			e.Logger.Debug().Str("font", f.Name()).Msg("skipping virtual font")
			continue
		}
		chars := used.Chars(f)
		if len(chars) == 0 {
			continue
		}
		log := e.Logger.With().Str("font", pf.Name()).Logger()

		var n int
		var err error
		switch {
		case pf.Kind() == font.KindMetafont && e.Trace != nil:
			n, err = e.Trace.EmitFont(pf, chars, e.mag(), defs)
			if err == nil {
				st.Traced++
				log.Info().Int("glyphs", n).Msgf("traced font '%s'", pf.Name())
			}
		case pf.Kind() == font.KindOutline && pf.Path() != "" && e.Outline != nil:
			n, err = e.Outline.EmitFont(pf, pf.Path(), pf.Encoding(), chars, defs)
			if err == nil {
				st.Outlined++
			}
		default:
			log.Warn().Msgf("can't embed font '%s'", pf.Name())
			st.Skipped++
			continue
		}
		st.Glyphs += n
		if err != nil {
			log.Warn().Err(err).Msgf("can't embed font '%s'", pf.Name())
			st.Skipped++
		}
	}
	return st
}

func (e *Embedder) mag() float64 {
	if e.Mag <= 0 {
		return 1
	}
	return e.Mag
}

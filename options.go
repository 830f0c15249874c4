package dvisvg

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/fontsvg"
	"github.com/alnah/go-dvisvg/internal/progress"
	"github.com/alnah/go-dvisvg/internal/raster"
)

// DefaultMag is the magnification of traced Metafont glyphs.
const DefaultMag = 4.0

// Option configures a converter.
type Option func(*converterConfig)

// converterConfig holds the settings shared by both converters.
type converterConfig struct {
	policy          BBoxPolicy
	transform       string
	logger          zerolog.Logger
	progress        *progress.Reporter
	mag             float64
	noFonts         bool
	now             func() time.Time
	version         string
	embedder        *fontsvg.Embedder
	timestampFormat string
	resolution      float64
}

func defaultConfig() converterConfig {
	return converterConfig{
		policy:     BBoxMin,
		logger:     zerolog.Nop(),
		mag:        DefaultMag,
		now:        time.Now,
		version:    Version,
		resolution: raster.DefaultResolution,
	}
}

func newConfig(opts []Option) converterConfig {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithBBoxPolicy sets the bounding box policy (default min).
func WithBBoxPolicy(p BBoxPolicy) Option {
	return func(c *converterConfig) { c.policy = p }
}

// WithTransform sets the transformation commands applied to every page.
func WithTransform(cmds string) Option {
	return func(c *converterConfig) { c.transform = cmds }
}

// WithLogger sets the logger receiving warnings and page reports.
func WithLogger(l zerolog.Logger) Option {
	return func(c *converterConfig) { c.logger = l }
}

// WithProgress sets the reporter driven while images are rasterized.
func WithProgress(p *progress.Reporter) Option {
	return func(c *converterConfig) { c.progress = p }
}

// WithMag sets the magnification of traced glyphs.
// Panics if m <= 0 (programmer error, similar to time.NewTicker).
func WithMag(m float64) Option {
	if m <= 0 {
		panic("dvisvg: WithMag factor must be positive")
	}
	return func(c *converterConfig) { c.mag = m }
}

// WithNoFonts disables font embedding; the defs element stays empty.
func WithNoFonts() Option {
	return func(c *converterConfig) { c.noFonts = true }
}

// WithClock replaces time.Now for the timestamp comment.
func WithClock(now func() time.Time) Option {
	return func(c *converterConfig) { c.now = now }
}

// WithVersion sets the version written into the generator comment.
func WithVersion(v string) Option {
	return func(c *converterConfig) { c.version = v }
}

// WithEmbedder replaces the font embedder.
func WithEmbedder(e *fontsvg.Embedder) Option {
	return func(c *converterConfig) { c.embedder = e }
}

// WithTimestampFormat sets the layout of the timestamp comment
// (see dateutil.Layout).
func WithTimestampFormat(format string) Option {
	return func(c *converterConfig) { c.timestampFormat = format }
}

// WithResolution sets the rasterization resolution in dpi.
// Panics if dpi <= 0.
func WithResolution(dpi float64) Option {
	if dpi <= 0 {
		panic("dvisvg: WithResolution dpi must be positive")
	}
	return func(c *converterConfig) { c.resolution = dpi }
}

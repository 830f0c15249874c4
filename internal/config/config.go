// Package config loads the YAML configuration of the dvisvgm command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-dvisvg/internal/dateutil"
	"github.com/alnah/go-dvisvg/internal/fileutil"
	"github.com/alnah/go-dvisvg/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPatternLength   = 512
	MaxBBoxLength      = 32 // "min", "dvi", "a4-landscape"
	MaxTransformLength = 1024
	MaxPathLength      = 4096
	MaxCommandLength   = 256

	MinPrecision  = 0
	MaxPrecision  = 12
	MinResolution = 10
	MaxResolution = 2400
)

// Defaults.
const (
	DefaultPattern     = "%f-%p.svg"
	DefaultBBox        = "min"
	DefaultMag         = 4.0
	DefaultResolution  = 300.0
	DefaultGhostscript = "gs"
	DefaultPrecision   = 6
)

// Config holds all settings of a conversion run.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Page   PageConfig   `yaml:"page"`
	Fonts  FontsConfig  `yaml:"fonts"`
	Image  ImageConfig  `yaml:"image"`
	SVG    SVGConfig    `yaml:"svg"`
}

// OutputConfig defines where pages are written.
type OutputConfig struct {
	Pattern string `yaml:"pattern"` // %f base name, %p page, %P padded page; "-" = stdout
}

// PageConfig defines page geometry.
type PageConfig struct {
	BBox      string  `yaml:"bbox"`      // "min", "dvi", "none", a margin length or a paper size
	Transform string  `yaml:"transform"` // e.g. "R90 T1cm,0"
	Mag       float64 `yaml:"mag"`       // traced glyph magnification
}

// FontsConfig defines font lookup and embedding.
type FontsConfig struct {
	Embed *bool    `yaml:"embed"` // nil = true
	Dirs  []string `yaml:"dirs"`
	Maps  []string `yaml:"maps"` // .map files, merged in order
}

// ImageConfig defines rasterization of PS, EPS and PDF input.
type ImageConfig struct {
	Resolution  float64 `yaml:"resolution"`  // dpi
	Ghostscript string  `yaml:"ghostscript"` // command name or path
}

// SVGConfig defines serialization details.
type SVGConfig struct {
	Precision       *int   `yaml:"precision"` // decimal places, nil = 6
	Newlines        *bool  `yaml:"newlines"`  // nil = true
	TimestampFormat string `yaml:"timestampFormat"`
}

// EmbedFonts reports whether glyph definitions are written.
func (c *Config) EmbedFonts() bool { return c.Fonts.Embed == nil || *c.Fonts.Embed }

// Newlines reports whether elements are separated by line breaks.
func (c *Config) Newlines() bool { return c.SVG.Newlines == nil || *c.SVG.Newlines }

// Precision returns the number of decimal places of written numbers.
func (c *Config) Precision() int {
	if c.SVG.Precision == nil {
		return DefaultPrecision
	}
	return *c.SVG.Precision
}

// Validate checks field lengths and value ranges. Zero values are
// accepted and mean "use the default".
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.pattern", c.Output.Pattern, MaxPatternLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.bbox", c.Page.BBox, MaxBBoxLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.transform", c.Page.Transform, MaxTransformLength); err != nil {
		return err
	}
	if c.Page.Mag < 0 {
		return fmt.Errorf("%w: page.mag must be positive, got %g", ErrInvalidValue, c.Page.Mag)
	}

	for i, dir := range c.Fonts.Dirs {
		if err := validateFieldLength(fmt.Sprintf("fonts.dirs[%d]", i), dir, MaxPathLength); err != nil {
			return err
		}
	}
	for i, m := range c.Fonts.Maps {
		if err := validateFieldLength(fmt.Sprintf("fonts.maps[%d]", i), m, MaxPathLength); err != nil {
			return err
		}
	}

	if c.Image.Resolution != 0 && (c.Image.Resolution < MinResolution || c.Image.Resolution > MaxResolution) {
		return fmt.Errorf("%w: image.resolution must be between %d and %d, got %g",
			ErrInvalidValue, MinResolution, MaxResolution, c.Image.Resolution)
	}
	if err := validateFieldLength("image.ghostscript", c.Image.Ghostscript, MaxCommandLength); err != nil {
		return err
	}

	if p := c.SVG.Precision; p != nil && (*p < MinPrecision || *p > MaxPrecision) {
		return fmt.Errorf("%w: svg.precision must be between %d and %d, got %d",
			ErrInvalidValue, MinPrecision, MaxPrecision, *p)
	}
	if c.SVG.TimestampFormat != "" {
		if _, err := dateutil.Layout(c.SVG.TimestampFormat); err != nil {
			return fmt.Errorf("svg.timestampFormat: %w", err)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Pattern: DefaultPattern},
		Page:   PageConfig{BBox: DefaultBBox, Mag: DefaultMag},
		Image:  ImageConfig{Resolution: DefaultResolution, Ghostscript: DefaultGhostscript},
	}
}

// ApplyDefaults fills zero fields with their defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Output.Pattern == "" {
		c.Output.Pattern = d.Output.Pattern
	}
	if c.Page.BBox == "" {
		c.Page.BBox = d.Page.BBox
	}
	if c.Page.Mag == 0 {
		c.Page.Mag = d.Page.Mag
	}
	if c.Image.Resolution == 0 {
		c.Image.Resolution = d.Image.Resolution
	}
	if c.Image.Ghostscript == "" {
		c.Image.Ghostscript = d.Image.Ghostscript
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yamlutil.DecodeStrict(f, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// SearchPaths returns the files LoadConfig tries for a config name, in
// order: current directory, then ~/.config/go-dvisvg/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "go-dvisvg", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"

	dvisvg "github.com/alnah/go-dvisvg"
	"github.com/alnah/go-dvisvg/internal/config"
	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/hints"
	"github.com/alnah/go-dvisvg/internal/progress"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	cfg      *config.Config
	pages    string
	noFonts  bool
	finder   *font.Finder
	fontMap  *font.FontMap
	progress bool
	logger   zerolog.Logger
	now      func() time.Time
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	warnUnknownEnvVars(env.Stderr)

	// Load configuration: flags > env > file > defaults
	ec := loadEnvConfig()
	cfg, err := resolveConfig(flags.common.config, ec)
	if err != nil {
		return err
	}
	applyEnvConfig(ec, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", dvisvg.ErrConfiguration, err)
	}
	cfg.ApplyDefaults()
	env.Config = cfg

	files, err := discoverFiles(positionalArgs)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no DVI, EPS, PS or PDF files found", ErrNoInput)
	}

	fontMap, err := loadFontMaps(cfg.Fonts.Maps)
	if err != nil {
		return err
	}

	xmltree.Precision = cfg.Precision()
	xmltree.WriteNewlines = cfg.Newlines()

	workers := flags.workers
	if workers == 0 {
		workers = ec.Workers
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug().Msgf(format, args...)
	}))
	poolSize := min(dvisvg.ResolvePoolSize(workers), len(files))
	logger.Debug().Int("workers", poolSize).Int("files", len(files)).Msg("starting conversion")

	finder := font.NewFinder(cfg.Fonts.Dirs...)
	pool := dvisvg.NewWorkspacePool(poolSize, dvisvg.DefaultWorkspaceFactory(finder, cfg.Image.Ghostscript, logger))
	defer pool.Close()

	params := &conversionParams{
		cfg:      cfg,
		pages:    flags.page.pages,
		noFonts:  !cfg.EmbedFonts(),
		finder:   finder,
		fontMap:  fontMap,
		progress: len(files) == 1 && !flags.common.quiet && progress.Enabled(os.Stderr),
		logger:   logger,
		now:      env.Now,
	}

	results := convertBatch(ctx, pool, files, params)

	// Results go to stderr when the pages themselves are written to stdout
	out := env.Stdout
	if cfg.Output.Pattern == "-" {
		out = env.Stderr
	}
	p := newPalette(!flags.common.noColor && colorSupported(env.Stderr))
	return printResults(results, out, env.Stderr, flags.common, p)
}

// resolveConfig loads the config file named by the flag or DVISVGM_CONFIG,
// or returns the defaults when neither is set.
func resolveConfig(name string, ec *envConfig) (*config.Config, error) {
	if name == "" {
		name = ec.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. Flags given on the command
// line override config values; list flags are appended.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.changed("output") {
		cfg.Output.Pattern = flags.output
	}

	// Page flags
	if flags.changed("bbox") {
		cfg.Page.BBox = flags.page.bbox
	}
	if flags.changed("transform") {
		cfg.Page.Transform = flags.page.transform
	}
	if flags.changed("mag") {
		cfg.Page.Mag = flags.fonts.mag
	}

	// Font flags
	cfg.Fonts.Dirs = append(cfg.Fonts.Dirs, flags.fonts.dirs...)
	cfg.Fonts.Maps = append(cfg.Fonts.Maps, flags.fonts.maps...)
	if flags.fonts.noFonts {
		embed := false
		cfg.Fonts.Embed = &embed
	}

	// Image flags
	if flags.changed("resolution") {
		cfg.Image.Resolution = flags.image.resolution
	}
	if flags.changed("ghostscript") {
		cfg.Image.Ghostscript = flags.image.ghostscript
	}

	// SVG flags
	if flags.changed("precision") {
		p := flags.svg.precision
		cfg.SVG.Precision = &p
	}
	if flags.svg.noNewlines {
		newlines := false
		cfg.SVG.Newlines = &newlines
	}
	if flags.changed("timestamp") {
		cfg.SVG.TimestampFormat = flags.svg.timestamp
	}
}

// loadFontMaps parses the map files in order; later entries win.
func loadFontMaps(paths []string) (*font.FontMap, error) {
	merged := font.NewFontMap()
	for _, path := range paths {
		f, err := os.Open(path) // #nosec G304 -- user-provided map file
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		m, err := font.ParseFontMap(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		merged.Merge(m)
	}
	return merged, nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-dvisvg/internal/config"
)

// envPrefix starts every variable read by the command.
const envPrefix = "DVISVGM_"

// dotEnvFile is loaded from the working directory when present.
const dotEnvFile = ".env"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string   // DVISVGM_CONFIG: config file name or path
	Output      string   // DVISVGM_OUTPUT: output file name pattern
	BBox        string   // DVISVGM_BBOX: bounding box policy
	Transform   string   // DVISVGM_TRANSFORM: transformation commands
	Mag         float64  // DVISVGM_MAG: traced glyph magnification
	FontDirs    []string // DVISVGM_FONT_DIRS: list separated by the OS path list separator
	FontMaps    []string // DVISVGM_FONT_MAPS: list separated by the OS path list separator
	Resolution  float64  // DVISVGM_RESOLUTION: rasterization dpi
	Ghostscript string   // DVISVGM_GHOSTSCRIPT: Ghostscript command
	Precision   *int     // DVISVGM_PRECISION: decimal places
	Workers     int      // DVISVGM_WORKERS: parallel workers
}

// knownEnvVars lists valid DVISVGM_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DVISVGM_CONFIG":      true,
	"DVISVGM_OUTPUT":      true,
	"DVISVGM_BBOX":        true,
	"DVISVGM_TRANSFORM":   true,
	"DVISVGM_MAG":         true,
	"DVISVGM_FONT_DIRS":   true,
	"DVISVGM_FONT_MAPS":   true,
	"DVISVGM_RESOLUTION":  true,
	"DVISVGM_GHOSTSCRIPT": true,
	"DVISVGM_PRECISION":   true,
	"DVISVGM_WORKERS":     true,
}

// loadDotEnv reads path into the process environment. Variables already
// set are kept. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("DVISVGM_CONFIG"),
		Output:      os.Getenv("DVISVGM_OUTPUT"),
		BBox:        os.Getenv("DVISVGM_BBOX"),
		Transform:   os.Getenv("DVISVGM_TRANSFORM"),
		FontDirs:    splitList(os.Getenv("DVISVGM_FONT_DIRS")),
		FontMaps:    splitList(os.Getenv("DVISVGM_FONT_MAPS")),
		Ghostscript: os.Getenv("DVISVGM_GHOSTSCRIPT"),
	}

	if v := os.Getenv("DVISVGM_MAG"); v != "" {
		if m, err := strconv.ParseFloat(v, 64); err == nil && m > 0 {
			cfg.Mag = m
		}
	}
	if v := os.Getenv("DVISVGM_RESOLUTION"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			cfg.Resolution = r
		}
	}
	if v := os.Getenv("DVISVGM_PRECISION"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p >= 0 {
			cfg.Precision = &p
		}
	}
	if v := os.Getenv("DVISVGM_WORKERS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range filepath.SplitList(s) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// warnUnknownEnvVars logs warnings for unrecognized DVISVGM_* variables.
// Helps catch typos like DVISVGM_FONTDIR instead of DVISVGM_FONT_DIRS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables replace file values; lists are appended.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Output != "" {
		cfg.Output.Pattern = env.Output
	}
	if env.BBox != "" {
		cfg.Page.BBox = env.BBox
	}
	if env.Transform != "" {
		cfg.Page.Transform = env.Transform
	}
	if env.Mag > 0 {
		cfg.Page.Mag = env.Mag
	}
	cfg.Fonts.Dirs = append(cfg.Fonts.Dirs, env.FontDirs...)
	cfg.Fonts.Maps = append(cfg.Fonts.Maps, env.FontMaps...)
	if env.Resolution > 0 {
		cfg.Image.Resolution = env.Resolution
	}
	if env.Ghostscript != "" {
		cfg.Image.Ghostscript = env.Ghostscript
	}
	if env.Precision != nil {
		p := *env.Precision
		cfg.SVG.Precision = &p
	}
}

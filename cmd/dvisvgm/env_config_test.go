package main

// Notes:
// - loadEnvConfig: we test every DVISVGM_* variable and that malformed
//   numbers are ignored rather than reported.
// - applyEnvConfig: set variables replace file values, lists are appended.
// - loadDotEnv: variables already in the environment win over the file.
// - Tests use t.Setenv() which prevents t.Parallel() at parent level.

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-dvisvg/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv("DVISVGM_CONFIG", "/etc/dvisvgm.yaml")
	t.Setenv("DVISVGM_OUTPUT", "%f_%P.svg")
	t.Setenv("DVISVGM_BBOX", "a4")
	t.Setenv("DVISVGM_TRANSFORM", "S2")
	t.Setenv("DVISVGM_MAG", "8")
	t.Setenv("DVISVGM_FONT_DIRS", "/tex/a"+sep+" /tex/b "+sep)
	t.Setenv("DVISVGM_FONT_MAPS", "psfonts.map")
	t.Setenv("DVISVGM_RESOLUTION", "72")
	t.Setenv("DVISVGM_GHOSTSCRIPT", "/opt/gs")
	t.Setenv("DVISVGM_PRECISION", "2")
	t.Setenv("DVISVGM_WORKERS", "3")

	cfg := loadEnvConfig()

	if cfg.ConfigPath != "/etc/dvisvgm.yaml" || cfg.Output != "%f_%P.svg" {
		t.Errorf("ConfigPath/Output = %q/%q", cfg.ConfigPath, cfg.Output)
	}
	if cfg.BBox != "a4" || cfg.Transform != "S2" || cfg.Mag != 8 {
		t.Errorf("BBox/Transform/Mag = %q/%q/%g", cfg.BBox, cfg.Transform, cfg.Mag)
	}
	if strings.Join(cfg.FontDirs, ",") != "/tex/a,/tex/b" {
		t.Errorf("FontDirs = %q", cfg.FontDirs)
	}
	if len(cfg.FontMaps) != 1 || cfg.FontMaps[0] != "psfonts.map" {
		t.Errorf("FontMaps = %q", cfg.FontMaps)
	}
	if cfg.Resolution != 72 || cfg.Ghostscript != "/opt/gs" {
		t.Errorf("Resolution/Ghostscript = %g/%q", cfg.Resolution, cfg.Ghostscript)
	}
	if cfg.Precision == nil || *cfg.Precision != 2 {
		t.Errorf("Precision = %v, want 2", cfg.Precision)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestLoadEnvConfig_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "abc"},
		{"negative", "-4"},
		{"zero", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DVISVGM_MAG", tt.value)
			t.Setenv("DVISVGM_RESOLUTION", tt.value)
			t.Setenv("DVISVGM_WORKERS", tt.value)

			cfg := loadEnvConfig()
			if cfg.Mag != 0 || cfg.Resolution != 0 || cfg.Workers != 0 {
				t.Errorf("got mag %g, resolution %g, workers %d; want all ignored", cfg.Mag, cfg.Resolution, cfg.Workers)
			}
		})
	}

	t.Run("precision zero is valid", func(t *testing.T) {
		t.Setenv("DVISVGM_PRECISION", "0")
		if p := loadEnvConfig().Precision; p == nil || *p != 0 {
			t.Errorf("Precision = %v, want 0", p)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("DVISVGM_FONTDIR", "/tex")
	t.Setenv("DVISVGM_BBOX", "min")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	if !strings.Contains(buf.String(), "unknown environment variable DVISVGM_FONTDIR") {
		t.Errorf("expected warning for DVISVGM_FONTDIR, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "DVISVGM_BBOX") {
		t.Errorf("known variable reported: %q", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	precision := 1
	env := &envConfig{
		Output: "-", BBox: "none", Transform: "R180", Mag: 2,
		FontDirs: []string{"/env"}, FontMaps: []string{"env.map"},
		Resolution: 96, Ghostscript: "gs9", Precision: &precision,
	}
	cfg := config.DefaultConfig()
	cfg.Fonts.Dirs = []string{"/file"}
	applyEnvConfig(env, cfg)

	if cfg.Output.Pattern != "-" || cfg.Page.BBox != "none" || cfg.Page.Transform != "R180" || cfg.Page.Mag != 2 {
		t.Errorf("Output/Page = %+v %+v", cfg.Output, cfg.Page)
	}
	if strings.Join(cfg.Fonts.Dirs, ",") != "/file,/env" || strings.Join(cfg.Fonts.Maps, ",") != "env.map" {
		t.Errorf("Fonts = %+v", cfg.Fonts)
	}
	if cfg.Image.Resolution != 96 || cfg.Image.Ghostscript != "gs9" || cfg.Precision() != 1 {
		t.Errorf("Image = %+v, precision %d", cfg.Image, cfg.Precision())
	}

	precision = 9
	if cfg.Precision() != 1 {
		t.Error("config shares the precision pointer with the env config")
	}
}

func TestApplyEnvConfig_EmptyKeepsConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Page.BBox = "letter"
	applyEnvConfig(&envConfig{}, cfg)

	if cfg.Page.BBox != "letter" || cfg.Output.Pattern != config.DefaultPattern {
		t.Errorf("empty env changed config: %+v", cfg)
	}
}

// ---------------------------------------------------------------------------
// TestLoadDotEnv - .env file support
// ---------------------------------------------------------------------------

func TestLoadDotEnv(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		".env": "DVISVGM_TEST_DOTENV_NEW=from-file\nDVISVGM_TEST_DOTENV_SET=from-file\n",
	})
	t.Setenv("DVISVGM_TEST_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("DVISVGM_TEST_DOTENV_NEW") })

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("DVISVGM_TEST_DOTENV_NEW"); got != "from-file" {
		t.Errorf("new variable = %q, want from-file", got)
	}
	if got := os.Getenv("DVISVGM_TEST_DOTENV_SET"); got != "from-env" {
		t.Errorf("existing variable = %q, want from-env", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Parallel()

	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing file: unexpected error: %v", err)
	}
}

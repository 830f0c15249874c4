package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-dvisvg/internal/yamlutil"
)

type pageConfig struct {
	BBox string  `yaml:"bbox"`
	Mag  float64 `yaml:"mag"`
}

type testConfig struct {
	Page  pageConfig `yaml:"page"`
	Fonts []string   `yaml:"fonts"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		dest    any
		wantErr error
	}{
		{"valid YAML", "page:\n  bbox: dvi\n  mag: 2\nfonts: [cmr10]\n", &testConfig{}, nil},
		{"empty data", "", &testConfig{}, yamlutil.ErrNilData},
		{"blank data", "  \n\t\n", &testConfig{}, yamlutil.ErrNilData},
		{"nil destination", "page: {}", nil, yamlutil.ErrNilDestination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := yamlutil.UnmarshalStrict([]byte(tt.data), tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUnmarshalStrict_Values(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict([]byte("page:\n  bbox: dvi\n  mag: 2.5\nfonts: [cmr10, cmbx12]\n"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Page.BBox != "dvi" || cfg.Page.Mag != 2.5 {
		t.Errorf("Page = %+v", cfg.Page)
	}
	if len(cfg.Fonts) != 2 || cfg.Fonts[1] != "cmbx12" {
		t.Errorf("Fonts = %v", cfg.Fonts)
	}
}

func TestUnmarshalStrict_UnknownField(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	err := yamlutil.UnmarshalStrict([]byte("page:\n  paper: a4\n"), &cfg)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error %q should carry the package prefix", err)
	}
}

func TestInputTooLarge(t *testing.T) {
	t.Parallel()

	data := "fonts: [" + strings.Repeat("a,", yamlutil.MaxInputSize/2) + "a]"
	var cfg testConfig
	for name, decode := range map[string]func() error{
		"unmarshal": func() error { return yamlutil.UnmarshalStrict([]byte(data), &cfg) },
		"decode":    func() error { return yamlutil.DecodeStrict(strings.NewReader(data), &cfg) },
	} {
		if err := decode(); !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("%s: error = %v, want ErrInputTooLarge", name, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDecodeStrict - Reads from a stream
// ---------------------------------------------------------------------------

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.DecodeStrict(strings.NewReader("page:\n  mag: 8\n"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Page.Mag != 8 {
		t.Errorf("Page.Mag = %g, want 8", cfg.Page.Mag)
	}
	if err := yamlutil.DecodeStrict(strings.NewReader(""), &cfg); !errors.Is(err, yamlutil.ErrNilData) {
		t.Errorf("error = %v, want ErrNilData", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal - Encodes Go structs
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := yamlutil.Marshal(testConfig{Page: pageConfig{BBox: "a4", Mag: 4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "bbox: a4") {
		t.Errorf("Marshal() = %q, want bbox: a4", out)
	}

	var back testConfig
	if err := yamlutil.UnmarshalStrict(out, &back); err != nil {
		t.Fatalf("re-reading marshaled YAML: %v", err)
	}
	if back.Page.BBox != "a4" {
		t.Errorf("round trip BBox = %q", back.Page.BBox)
	}
}

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	dvisvg "github.com/alnah/go-dvisvg"
)

// ---------------------------------------------------------------------------
// TestDiscoverFiles - Input expansion
// ---------------------------------------------------------------------------

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"paper.dvi":        "",
		"figs/b.eps":       "",
		"figs/a.PDF":       "",
		"figs/notes.txt":   "",
		"figs/sub/plot.ps": "",
	})

	files, err := discoverFiles([]string{
		filepath.Join(dir, "paper.dvi"),
		filepath.Join(dir, "figs"),
		filepath.Join(dir, "figs", "b.eps"), // already found in figs
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []FileToConvert{
		{filepath.Join(dir, "paper.dvi"), kindDVI},
		{filepath.Join(dir, "figs", "a.PDF"), kindImage},
		{filepath.Join(dir, "figs", "b.eps"), kindImage},
		{filepath.Join(dir, "figs", "sub", "plot.ps"), kindImage},
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files %v, want %d", len(files), files, len(want))
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %+v, want %+v", i, files[i], want[i])
		}
	}
}

func TestDiscoverFiles_Errors(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"notes.txt": ""})

	tests := []struct {
		name    string
		inputs  []string
		wantErr error
	}{
		{"no inputs", nil, ErrNoInput},
		{"missing", []string{filepath.Join(dir, "none.dvi")}, os.ErrNotExist},
		{"unsupported", []string{filepath.Join(dir, "notes.txt")}, ErrInvalidExtension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := discoverFiles(tt.inputs); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidateWorkers - Worker count bounds
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{1, false},
		{dvisvg.MaxPoolSize, false},
		{dvisvg.MaxPoolSize + 1, true},
	}
	for _, tt := range tests {
		err := validateWorkers(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateWorkers(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", tt.n, err)
		}
	}
}

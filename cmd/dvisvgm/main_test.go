package main

// Notes:
// - runMain: we test command dispatch and exit codes. Successful
//   conversions need Ghostscript or TeX fonts and are covered by
//   convertBatch tests with a fake rasterizer.
// - isCommand: we test the split between command names and inputs.

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	dir := writeFiles(t, map[string]string{"notes.txt": ""})

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no arguments", nil, ExitUsage, "", "Usage: dvisvgm"},
		{"version", []string{"version"}, ExitSuccess, "dvisvgm dev", ""},
		{"version flag", []string{"--version"}, ExitSuccess, "dvisvgm dev", ""},
		{"help", []string{"help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"help", "convert"}, ExitSuccess, "--transform", ""},
		{"help unknown", []string{"help", "frobnicate"}, ExitUsage, "", "unknown command: frobnicate"},
		{"unknown command", []string{"frobnicate"}, ExitUsage, "", "unknown command: frobnicate"},
		{"bad flag", []string{"convert", "--no-such-flag"}, ExitUsage, "", "invalid usage"},
		{"missing dvi", []string{filepath.Join(dir, "none.dvi")}, ExitIO, "", "no such file"},
		{"unsupported file", []string{filepath.Join(dir, "notes.txt")}, ExitUsage, "", "unsupported input file type"},
		{"bad workers", []string{"convert", "-w", "-1", filepath.Join(dir, "notes.txt")}, ExitUsage, "", "invalid worker count"},
		{"convert help", []string{"convert", "--help"}, ExitSuccess, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			args := append([]string{"dvisvgm"}, tt.args...)

			code := runMain(context.Background(), args, testEnv(&stdout, &stderr))

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunMain_ConfigCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{"c.yaml": "page:\n  bbox: a5\nsvg:\n  precision: 3\n"})
	t.Setenv("DVISVGM_TRANSFORM", "R90")

	var stdout, stderr bytes.Buffer
	code := runMain(context.Background(), []string{"dvisvgm", "config", "-c", filepath.Join(dir, "c.yaml")}, testEnv(&stdout, &stderr))
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	for _, want := range []string{"bbox: a5", "transform: R90", "precision: 3", "resolution: 300"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("config output missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestRunMain_ConfigCommandInvalid(t *testing.T) {
	dir := writeFiles(t, map[string]string{"c.yaml": "page:\n  bbox: a5\n  colour: red\n"})

	var stdout, stderr bytes.Buffer
	code := runMain(context.Background(), []string{"dvisvgm", "config", "-c", filepath.Join(dir, "c.yaml")}, testEnv(&stdout, &stderr))
	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d for an unknown field", code, ExitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestIsCommand - Command names versus input files
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"paper": ""})

	tests := []struct {
		arg  string
		want bool
	}{
		{"frobnicate", true},
		{"-p", false},
		{"", false},
		{"missing.dvi", false},
		{"fig.EPS", false},
		{filepath.Join(dir, "paper"), false},
		{filepath.Join(dir, "nothing"), true},
	}
	for _, tt := range tests {
		if got := isCommand(tt.arg); got != tt.want {
			t.Errorf("isCommand(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-dvisvg/internal/config"
	"github.com/alnah/go-dvisvg/internal/fileutil"
	"github.com/alnah/go-dvisvg/internal/hints"
	"github.com/alnah/go-dvisvg/internal/process"
)

// versionTimeout bounds the Ghostscript version check.
const versionTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string          `json:"status"` // "ready", "warnings", "errors"
	Ghostscript ghostscriptInfo `json:"ghostscript"`
	Fonts       fontsInfo       `json:"fonts"`
	Env         envInfo         `json:"environment"`
	Warnings    []string        `json:"warnings,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
}

// ghostscriptInfo holds Ghostscript detection results.
type ghostscriptInfo struct {
	Command string `json:"command"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// fontsInfo holds font directory checks.
type fontsInfo struct {
	Dirs    []string `json:"dirs"`
	Missing []string `json:"missing,omitempty"`
	Maps    []string `json:"maps,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container bool   `json:"container"`
}

// doctorDeps holds the lookups doctor performs, replaced in tests.
type doctorDeps struct {
	lookPath func(string) (string, error)
	run      process.Runner
}

func defaultDoctorDeps() doctorDeps {
	return doctorDeps{lookPath: exec.LookPath, run: process.Run}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, jsonOutput, err := parseCommonFlags("doctor", args)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return exitWith(env, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	result := &doctorResult{}
	ec := loadEnvConfig()
	cfg, err := resolveConfig(flags.config, ec)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		cfg = config.DefaultConfig()
	}
	applyEnvConfig(ec, cfg)

	runDoctor(context.Background(), cfg, defaultDoctorDeps(), result)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, deps doctorDeps, result *doctorResult) {
	result.Env = envInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Container: hints.IsInContainer(),
	}

	checkGhostscript(ctx, cfg.Image.Ghostscript, deps, result)
	checkFonts(cfg, result)

	// Determine final status
	result.Status = "ready"
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
}

// checkGhostscript locates the Ghostscript command and reads its version.
// A missing Ghostscript is a warning: only PS and EPS input needs it.
func checkGhostscript(ctx context.Context, command string, deps doctorDeps, result *doctorResult) {
	if command == "" {
		command = config.DefaultGhostscript
	}
	result.Ghostscript.Command = command

	path, err := deps.lookPath(command)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Ghostscript not found (%s); PS and EPS files cannot be converted%s",
				command, hints.ForGhostscript(command)))
		return
	}
	result.Ghostscript.Found = true
	result.Ghostscript.Path = path

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	var out bytes.Buffer
	if _, err := deps.run(ctx, path, []string{"--version"}, &out); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Ghostscript version: %v", err))
		return
	}
	result.Ghostscript.Version = strings.TrimSpace(out.String())
}

// checkFonts verifies font directories and map files.
func checkFonts(cfg *config.Config, result *doctorResult) {
	result.Fonts.Dirs = cfg.Fonts.Dirs
	result.Fonts.Maps = cfg.Fonts.Maps

	if len(cfg.Fonts.Dirs) == 0 {
		result.Warnings = append(result.Warnings,
			"No font directories configured; glyphs cannot be embedded"+hints.ForFontDirs(nil))
	}
	for _, dir := range cfg.Fonts.Dirs {
		if !fileutil.DirExists(dir) {
			result.Fonts.Missing = append(result.Fonts.Missing, dir)
		}
	}
	if len(result.Fonts.Missing) > 0 {
		result.Warnings = append(result.Warnings,
			"Some font directories do not exist"+hints.ForFontDirs(cfg.Fonts.Dirs))
	}
	for _, m := range cfg.Fonts.Maps {
		if !fileutil.FileExists(m) {
			result.Errors = append(result.Errors, fmt.Sprintf("Font map not found: %s", filepath.Clean(m)))
		}
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "Ghostscript")
	if r.Ghostscript.Found {
		fmt.Fprintf(w, "  [OK] %s\n", r.Ghostscript.Path)
		if r.Ghostscript.Version != "" {
			fmt.Fprintf(w, "  [OK] Version %s\n", r.Ghostscript.Version)
		}
	} else {
		fmt.Fprintf(w, "  [!!] %s not found\n", r.Ghostscript.Command)
	}
	fmt.Fprintln(w, "  [OK] MuPDF built in")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Fonts")
	if len(r.Fonts.Dirs) == 0 {
		fmt.Fprintln(w, "  [!!] No font directories")
	}
	missing := make(map[string]bool, len(r.Fonts.Missing))
	for _, d := range r.Fonts.Missing {
		missing[d] = true
	}
	for _, d := range r.Fonts.Dirs {
		if missing[d] {
			fmt.Fprintf(w, "  [!!] %s (missing)\n", d)
		} else {
			fmt.Fprintf(w, "  [OK] %s\n", d)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container detected")
	}

	if len(r.Warnings) > 0 || len(r.Errors) > 0 {
		fmt.Fprintln(w)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Status: %s\n", strings.ToUpper(r.Status))
}

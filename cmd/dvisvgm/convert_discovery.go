package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dvisvg "github.com/alnah/go-dvisvg"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidExtension   = errors.New("unsupported input file type")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// inputKind distinguishes the two conversion pipelines.
type inputKind int

const (
	kindDVI inputKind = iota
	kindImage
)

// inputExtensions maps accepted file extensions to their pipeline.
var inputExtensions = map[string]inputKind{
	".dvi": kindDVI,
	".eps": kindImage,
	".ps":  kindImage,
	".pdf": kindImage,
}

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath string
	Kind      inputKind
}

// kindOf returns the pipeline for path based on its extension.
func kindOf(path string) (inputKind, bool) {
	k, ok := inputExtensions[strings.ToLower(filepath.Ext(path))]
	return k, ok
}

// discoverFiles expands inputs into the files to convert. Files are
// checked for a supported extension; directories are walked and files
// with other extensions skipped. Results keep argument order, with the
// files of a directory sorted by path.
func discoverFiles(inputs []string) ([]FileToConvert, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	seen := make(map[string]bool)
	var files []FileToConvert
	add := func(path string, kind inputKind) {
		if !seen[path] {
			seen[path] = true
			files = append(files, FileToConvert{InputPath: path, Kind: kind})
		}
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			kind, ok := kindOf(input)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, input)
			}
			add(input, kind)
			continue
		}

		var found []string
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := kindOf(path); ok {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, path := range found {
			kind, _ := kindOf(path)
			add(path, kind)
		}
	}

	return files, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > dvisvg.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, dvisvg.MaxPoolSize)
	}
	return nil
}

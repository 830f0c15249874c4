// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPath is returned when an output path is empty.
var ErrEmptyPath = errors.New("path cannot be empty")

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "dvisvgm" -> false (config name)
//   - "./custom.yaml" -> true (relative path)
//   - "/absolute/path.yaml" -> true (absolute)
//   - "C:\windows\path.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// BaseName returns the last element of path without its extension.
//
// Examples:
//   - "doc/paper.dvi" -> "paper"
//   - "fig.1.eps" -> "fig.1"
//   - "" -> ""
func BaseName(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CreateFile creates or truncates path, creating missing parent directories.
func CreateFile(path string) (*os.File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path) // #nosec G304 -- output path is user-provided
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

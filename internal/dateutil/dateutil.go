// Package dateutil formats the generation timestamp written into SVG files.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat indicates an invalid timestamp format string.
var ErrInvalidFormat = errors.New("invalid timestamp format")

// MaxFormatLength limits format string length to prevent abuse.
const MaxFormatLength = 50

// DefaultFormat is used when no format is configured. It matches the
// classic C asctime layout.
const DefaultFormat = "asctime"

// tokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var tokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// Presets provides named Go layouts.
var Presets = map[string]string{
	"asctime": time.ANSIC,
	"iso":     time.RFC3339,
	"rfc1123": time.RFC1123,
	"date":    time.DateOnly,
}

// ParseFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, ddd, HH, mm, ss.
// Use brackets to escape literal text: [at] preserves "at" literally.
// Any non-token characters outside brackets are preserved as literals.
func ParseFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidFormat)
	}
	if len(format) > MaxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidFormat, MaxFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range tokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Layout resolves format to a Go layout: "" selects DefaultFormat, a
// preset name (case-insensitive) selects its layout, anything else is
// parsed with ParseFormat.
func Layout(format string) (string, error) {
	if format == "" {
		format = DefaultFormat
	}
	if layout, ok := Presets[strings.ToLower(format)]; ok {
		return layout, nil
	}
	return ParseFormat(format)
}

// FormatTimestamp renders t with format (see Layout).
//
// The time parameter allows injecting a fixed time for testing.
func FormatTimestamp(format string, t time.Time) (string, error) {
	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

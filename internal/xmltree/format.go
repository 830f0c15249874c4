package xmltree

import (
	"math"
	"strconv"
	"strings"
)

// Precision is the maximum number of decimal places FormatNumber writes.
var Precision = 6

// FormatNumber renders v in fixed-point notation with at most Precision
// decimal places, dropping trailing zeros. The output never uses exponent
// notation and does not depend on the locale.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	prec := Precision
	if prec < 0 {
		prec = 0
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "'", "&apos;", "\"", "&quot;")
)

// EscapeText escapes s for use as element content.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	return textEscaper.Replace(s)
}

// EscapeAttribute escapes s for use inside a single-quoted attribute value.
func EscapeAttribute(s string) string {
	if !strings.ContainsAny(s, "&<>'\"") {
		return s
	}
	return attrEscaper.Replace(s)
}

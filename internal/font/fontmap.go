package font

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MapEntry is one line of a dvips-style font map.
type MapEntry struct {
	TeXName      string
	PSName       string
	FontFile     string // .pfb, .pfa, .ttf or .otf
	EncodingFile string // .enc
	Special      string // PostScript code such as "0.167 SlantFont"
}

// FontMap maps TeX font names to their outline files and encodings.
type FontMap struct {
	entries map[string]MapEntry
}

// NewFontMap creates an empty map.
func NewFontMap() *FontMap {
	return &FontMap{entries: make(map[string]MapEntry)}
}

// ParseFontMap reads a map file. Lines starting with %, #, ; or * are
// comments. Later lines for the same TeX name replace earlier ones.
func ParseFontMap(r io.Reader) (*FontMap, error) {
	m := NewFontMap()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.ContainsRune("%#;*", rune(text[0])) {
			continue
		}
		e, err := parseMapLine(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidMap, line, err)
		}
		m.entries[e.TeXName] = e
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return m, nil
}

func parseMapLine(s string) (MapEntry, error) {
	var e MapEntry
	for len(s) > 0 {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		var tok string
		switch s[0] {
		case '"':
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				return e, fmt.Errorf("unterminated quote")
			}
			e.Special = strings.TrimSpace(s[1 : end+1])
			s = s[end+2:]
			continue
		case '<':
			s = strings.TrimLeft(s, "<[")
			s = strings.TrimLeft(s, " \t")
			tok, s = cutToken(s)
			if tok == "" {
				return e, fmt.Errorf("missing file name after '<'")
			}
			if strings.EqualFold(filepath.Ext(tok), ".enc") {
				e.EncodingFile = tok
			} else {
				e.FontFile = tok
			}
			continue
		}
		tok, s = cutToken(s)
		switch {
		case e.TeXName == "":
			e.TeXName = tok
		case e.PSName == "" && !isNumber(tok):
			e.PSName = tok
		}
	}
	if e.TeXName == "" {
		return e, fmt.Errorf("missing TeX font name")
	}
	return e, nil
}

func cutToken(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

// Lookup returns the entry for a TeX font name.
func (m *FontMap) Lookup(texName string) (MapEntry, bool) {
	if m == nil {
		return MapEntry{}, false
	}
	e, ok := m.entries[texName]
	return e, ok
}

// Merge copies all entries of o into m, replacing existing names.
func (m *FontMap) Merge(o *FontMap) {
	if o == nil {
		return
	}
	for k, v := range o.entries {
		m.entries[k] = v
	}
}

// Len returns the number of entries.
func (m *FontMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

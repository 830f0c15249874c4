package font

import (
	"fmt"
	"io"
	"strings"
)

// maxEncSize bounds the bytes read from an encoding file.
const maxEncSize = 1 << 20

// Encoding is a PostScript encoding vector mapping character codes to
// glyph names.
type Encoding struct {
	Name   string
	glyphs []string
}

// NewEncoding creates an encoding from a glyph name list indexed by code.
func NewEncoding(name string, glyphs []string) *Encoding {
	return &Encoding{Name: name, glyphs: glyphs}
}

// ParseEncoding reads an .enc file of the form
//
//	/EncodingName [ /glyph0 /glyph1 ... ] def
//
// with % comments.
func ParseEncoding(r io.Reader) (*Encoding, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEncSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnc, err)
	}
	toks := encTokens(string(data))
	if len(toks) < 2 || !strings.HasPrefix(toks[0], "/") || toks[1] != "[" {
		return nil, fmt.Errorf("%w: expected /Name [", ErrInvalidEnc)
	}
	enc := &Encoding{Name: toks[0][1:]}
	for _, tok := range toks[2:] {
		if tok == "]" {
			return enc, nil
		}
		if !strings.HasPrefix(tok, "/") {
			return nil, fmt.Errorf("%w: unexpected token %q", ErrInvalidEnc, tok)
		}
		enc.glyphs = append(enc.glyphs, tok[1:])
	}
	return nil, fmt.Errorf("%w: missing ]", ErrInvalidEnc)
}

// encTokens splits PostScript source into names, brackets and words,
// dropping comments.
func encTokens(src string) []string {
	var toks []string
	for _, line := range strings.Split(src, "\n") {
		if i := strings.IndexByte(line, '%'); i >= 0 {
			line = line[:i]
		}
		line = strings.NewReplacer("[", " [ ", "]", " ] ", "/", " /").Replace(line)
		toks = append(toks, strings.Fields(line)...)
	}
	return toks
}

// GlyphName returns the glyph name for code c, or "" if unmapped.
func (e *Encoding) GlyphName(c int) string {
	if e == nil || c < 0 || c >= len(e.glyphs) {
		return ""
	}
	if g := e.glyphs[c]; g != ".notdef" {
		return g
	}
	return ""
}

// Len returns the number of entries in the vector.
func (e *Encoding) Len() int {
	if e == nil {
		return 0
	}
	return len(e.glyphs)
}

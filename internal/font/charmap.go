package font

// privateUseBase is where codes without a printable XML character are
// moved to.
const privateUseBase = 0xE000

// CharRune maps a font character code to the rune written in SVG text and
// glyph definitions. Codes that are control characters in Unicode are
// moved into the private use area so that text and glyphs still match.
func CharRune(c int) rune {
	switch {
	case c < 0x20, c >= 0x7f && c < 0xa0:
		return rune(privateUseBase + c)
	default:
		return rune(c)
	}
}

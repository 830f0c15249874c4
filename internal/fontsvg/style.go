package fontsvg

import (
	"fmt"
	"strings"

	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// StyleRules returns one CSS rule per physical font, in the order given:
//
//	text.f3 {font-family:cmr10;font-size:9.96264}
//
// Virtual fonts get no rule; their characters are drawn with the
// constituent fonts.
func StyleRules(fonts []font.Font, ids func(font.Font) int) string {
	var sb strings.Builder
	for _, f := range fonts {
		if !font.IsPhysical(f) {
			continue
		}
		fmt.Fprintf(&sb, "text.f%d {font-family:%s;font-size:%s}\n",
			ids(f), font.CSSFamily(f), xmltree.FormatNumber(f.ScaledSize()))
	}
	return sb.String()
}

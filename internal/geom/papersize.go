package geom

import (
	"strconv"
	"strings"
)

// PageSize is the width and height of a paper format in TeX points.
type PageSize struct {
	Width  float64
	Height float64
}

// ISO 216/269 and DIN 476 series, portrait, in millimeters, indexed by number.
var (
	seriesA = [][2]float64{
		{841, 1189}, {594, 841}, {420, 594}, {297, 420}, {210, 297}, {148, 210},
		{105, 148}, {74, 105}, {52, 74}, {37, 52}, {26, 37},
	}
	seriesB = [][2]float64{
		{1000, 1414}, {707, 1000}, {500, 707}, {353, 500}, {250, 353}, {176, 250},
		{125, 176}, {88, 125}, {62, 88}, {44, 62}, {31, 44},
	}
	seriesC = [][2]float64{
		{917, 1297}, {648, 917}, {458, 648}, {324, 458}, {229, 324}, {162, 229},
		{114, 162}, {81, 114}, {57, 81}, {40, 57}, {28, 40},
	}
	seriesD = [][2]float64{
		{771, 1090}, {545, 771}, {385, 545}, {272, 385}, {192, 272}, {136, 192},
		{96, 136}, {68, 96},
	}
)

// North American formats in inches.
var namedInches = map[string][2]float64{
	"letter":    {8.5, 11},
	"legal":     {8.5, 14},
	"ledger":    {17, 11},
	"tabloid":   {11, 17},
	"executive": {7.25, 10.5},
}

// LookupPageSize resolves a paper format name such as "A4", "letter" or
// "a5-landscape". Names are case-insensitive; the "-landscape" suffix
// swaps width and height and "-portrait" is accepted as a no-op.
func LookupPageSize(name string) (PageSize, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	landscape := false
	if base, ok := strings.CutSuffix(name, "-landscape"); ok {
		name, landscape = base, true
	} else if base, ok := strings.CutSuffix(name, "-portrait"); ok {
		name = base
	}

	size, ok := lookupPortrait(name)
	if !ok {
		return PageSize{}, false
	}
	if landscape {
		size.Width, size.Height = size.Height, size.Width
	}
	return size, true
}

func lookupPortrait(name string) (PageSize, bool) {
	if in, ok := namedInches[name]; ok {
		return PageSize{Width: in[0] * PtPerIn, Height: in[1] * PtPerIn}, true
	}
	if len(name) < 2 {
		return PageSize{}, false
	}
	var series [][2]float64
	switch name[0] {
	case 'a':
		series = seriesA
	case 'b':
		series = seriesB
	case 'c':
		series = seriesC
	case 'd':
		series = seriesD
	default:
		return PageSize{}, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n >= len(series) || strconv.Itoa(n) != name[1:] {
		return PageSize{}, false
	}
	mm := series[n]
	return PageSize{Width: mm[0] * PtPerMM, Height: mm[1] * PtPerMM}, true
}

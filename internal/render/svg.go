package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"

	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// rawSpecial prefixes specials whose payload is copied into the page.
const rawSpecial = "dvisvgm:raw"

// textTolerance is the largest gap (pt) between the expected and the
// actual position of a char that still continues the current text run.
const textTolerance = 1e-3

// SVGActions builds the content group of a page and records which chars
// each font draws.
type SVGActions struct {
	used   *font.UsedChars
	ids    func(font.Font) int
	logger zerolog.Logger

	page *xmltree.Element

	text      *xmltree.Element
	textFont  font.Font
	textY     float64
	nextX     float64
	specials  int
	transform geom.Matrix
}

// NewSVGActions creates a renderer recording char usage in used. ids
// returns the CSS class number of a font.
func NewSVGActions(used *font.UsedChars, ids func(font.Font) int, logger zerolog.Logger) *SVGActions {
	return &SVGActions{
		used:      used,
		ids:       ids,
		logger:    logger,
		page:      xmltree.NewElement("g"),
		transform: geom.Identity(),
	}
}

// Page returns the content group of the current page.
func (s *SVGActions) Page() *xmltree.Element { return s.page }

// UsedChars returns the usage map.
func (s *SVGActions) UsedChars() *font.UsedChars { return s.used }

// SetTransformation sets the transform applied to the page group.
func (s *SVGActions) SetTransformation(m geom.Matrix) {
	s.transform = m
	s.applyTransform()
}

func (s *SVGActions) applyTransform() {
	if s.transform.IsIdentity() {
		s.page.RemoveAttribute("transform")
		return
	}
	s.page.AddAttribute("transform", s.transform.SVG())
}

func (s *SVGActions) BeginPage(n int, _ [10]int32) {
	s.page = xmltree.NewElement("g")
	s.page.AddAttribute("id", fmt.Sprintf("page%d", n))
	s.applyTransform()
	s.text = nil
}

func (s *SVGActions) EndPage() { s.text = nil }

func (s *SVGActions) SetChar(x, y float64, c int, f font.Font) {
	s.used.Add(f, c)
	if s.text == nil || s.textFont != f || s.textY != y || math.Abs(x-s.nextX) > textTolerance {
		s.text = s.page.AppendElement("text")
		s.text.AddAttribute("class", fmt.Sprintf("f%d", s.ids(f)))
		s.text.AddNumberAttribute("x", x)
		s.text.AddNumberAttribute("y", y)
		s.textFont, s.textY = f, y
	}
	s.text.AppendText(string(font.CharRune(c)))
	s.nextX = x + f.CharWidth(c)
}

func (s *SVGActions) SetRule(x, y, height, width float64) {
	rect := s.page.AppendElement("rect")
	rect.AddNumberAttribute("x", x)
	rect.AddNumberAttribute("y", y-height)
	rect.AddNumberAttribute("width", width)
	rect.AddNumberAttribute("height", height)
	s.text = nil
}

// Special handles raw SVG specials. The placeholders {?x} and {?y} in
// the payload are replaced with the current position. Other specials are
// ignored.
func (s *SVGActions) Special(text string, x, y float64) {
	payload, ok := strings.CutPrefix(text, rawSpecial)
	if !ok || (payload != "" && payload[0] != ' ' && payload[0] != '\t') {
		s.logger.Debug().Str("special", truncate(text, 40)).Msg("ignoring special")
		return
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return
	}
	if !utf8.ValidString(payload) {
		if decoded, err := charmap.ISO8859_1.NewDecoder().String(payload); err == nil {
			payload = decoded
		}
	}
	payload = strings.NewReplacer(
		"{?x}", xmltree.FormatNumber(x),
		"{?y}", xmltree.FormatNumber(y),
	).Replace(payload)

	nodes, err := xmltree.ParseFragment(strings.NewReader(payload))
	if err != nil {
		s.logger.Warn().Err(err).Msg("ignoring malformed raw SVG special")
		return
	}
	for _, n := range nodes {
		s.page.Append(n)
	}
	s.specials++
	s.text = nil
}

// Specials returns the number of raw specials inserted so far.
func (s *SVGActions) Specials() int { return s.specials }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

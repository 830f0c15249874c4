package dvisvg

import (
	"strconv"
	"strings"

	"github.com/alnah/go-dvisvg/internal/geom"
)

// Version is written into the generator comment of every SVG file.
const Version = "0.3.0"

// PageInfo reports how many pages a call converted and how many the
// source holds.
type PageInfo struct {
	Converted int
	Total     int
}

// bboxKind selects how a page's bounding box is computed.
type bboxKind int

const (
	bboxMin bboxKind = iota
	bboxDVI
	bboxNone
	bboxPaper
	bboxMargin
)

// BBoxPolicy selects the bounding box of the generated pages.
type BBoxPolicy struct {
	kind   bboxKind
	paper  string
	margin float64 // pt, for bboxMargin
}

// Predefined policies.
var (
	BBoxMin  = BBoxPolicy{kind: bboxMin}
	BBoxDVI  = BBoxPolicy{kind: bboxDVI}
	BBoxNone = BBoxPolicy{kind: bboxNone}
)

// ParseBBoxPolicy reads "min", "dvi", "none", a length such as "5mm" or a
// paper size name such as "a4" or "letter-landscape". A length selects the
// "min" box enlarged by that margin on every side. The empty string
// selects "min". Unknown paper names are kept and reported when the box
// is resolved.
func ParseBBoxPolicy(s string) BBoxPolicy {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "min":
		return BBoxMin
	case "dvi":
		return BBoxDVI
	case "none":
		return BBoxNone
	}
	if margin, err := geom.ParseLength(name); err == nil {
		return Margin(margin)
	}
	return BBoxPolicy{kind: bboxPaper, paper: name}
}

// Margin returns a policy enlarging the content box by margin pt.
func Margin(margin float64) BBoxPolicy {
	return BBoxPolicy{kind: bboxMargin, margin: margin}
}

// PaperSize returns a policy using a fixed paper format.
func PaperSize(name string) BBoxPolicy {
	return BBoxPolicy{kind: bboxPaper, paper: strings.ToLower(strings.TrimSpace(name))}
}

func (p BBoxPolicy) String() string {
	switch p.kind {
	case bboxDVI:
		return "dvi"
	case bboxNone:
		return "none"
	case bboxPaper:
		return p.paper
	case bboxMargin:
		return strconv.FormatFloat(p.margin, 'f', -1, 64) + "pt"
	}
	return "min"
}

// IsMin reports whether the box is derived from the content alone, with
// or without a margin.
func (p BBoxPolicy) IsMin() bool { return p.kind == bboxMin || p.kind == bboxMargin }

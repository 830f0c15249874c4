package dvisvg

import (
	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/dvi"
	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/render"
)

// pageOrigin is the offset of DVI position (0,0) from the upper left
// corner of the paper: one inch in both directions.
const pageOrigin = geom.PtPerIn

// resolveBoundingBox computes the box of page according to policy. An
// unknown paper size is logged and yields an invalid box.
func resolveBoundingBox(interp dvi.Interpreter, policy BBoxPolicy, page int, logger zerolog.Logger) (geom.BoundingBox, error) {
	switch policy.kind {
	case bboxMin, bboxDVI, bboxMargin:
		acts := render.NewBBoxActions()
		if _, err := interp.ExecutePage(page, acts); err != nil {
			return geom.BoundingBox{}, err
		}
		box := acts.BBox()
		switch policy.kind {
		case bboxDVI:
			dx := (interp.PageWidth() - box.Width()) / 2
			dy := (interp.PageHeight() - box.Height()) / 2
			box = box.Expand(dx, dy)
		case bboxMargin:
			box = box.Expand(policy.margin, policy.margin)
		}
		return box, nil
	case bboxPaper:
		size, ok := geom.LookupPageSize(policy.paper)
		if !ok {
			logger.Warn().Str("format", policy.paper).Msgf("invalid page format '%s'", policy.paper)
			return geom.BoundingBox{}, nil
		}
		return geom.NewBoundingBox(-pageOrigin, -pageOrigin, size.Width-pageOrigin, size.Height-pageOrigin), nil
	}
	return geom.BoundingBox{}, nil
}

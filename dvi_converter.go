package dvisvg

import (
	"context"
	"fmt"

	"github.com/alnah/go-dvisvg/internal/dateutil"
	"github.com/alnah/go-dvisvg/internal/dvi"
	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/fontsvg"
	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/pagerange"
	"github.com/alnah/go-dvisvg/internal/render"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// DVIConverter turns pages of a DVI file into SVG documents.
// A converter belongs to one document and is not safe for concurrent use.
type DVIConverter struct {
	cfg      converterConfig
	interp   dvi.Interpreter
	out      OutputResolver
	embedder *fontsvg.Embedder
	matrix   *geom.Matrix // built from the first converted page
}

// NewDVIConverter creates a converter reading pages from interp and
// writing them to out.
func NewDVIConverter(interp dvi.Interpreter, out OutputResolver, opts ...Option) *DVIConverter {
	c := &DVIConverter{cfg: newConfig(opts), interp: interp, out: out}
	c.embedder = c.cfg.embedder
	if c.embedder == nil {
		c.embedder = fontsvg.NewEmbedder(font.NewFinder(), c.cfg.logger)
	}
	c.embedder.Mag = c.cfg.mag
	return c
}

// Convert reads the postamble and converts firstPage. A first page beyond
// the end of the file fails with ErrPageRange before any output is opened;
// values below 1 select the first page. The last page is not used: callers
// iterate over pages themselves or use ConvertRanges.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *DVIConverter) Convert(ctx context.Context, firstPage, _ int) (info PageInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	total, err := c.postamble()
	if err != nil {
		return PageInfo{}, err
	}
	if firstPage > total {
		return PageInfo{Total: total}, fmt.Errorf("%w: file contains only %d page(s)", ErrPageRange, total)
	}
	if firstPage < 1 {
		firstPage = 1
	}
	if err := c.convertPage(ctx, firstPage, total); err != nil {
		return PageInfo{Total: total}, err
	}
	return PageInfo{Converted: 1, Total: total}, nil
}

// ConvertRanges converts every page selected by spec, such as "2-3,5",
// in ascending order.
func (c *DVIConverter) ConvertRanges(ctx context.Context, spec string) (info PageInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	total, err := c.postamble()
	if err != nil {
		return PageInfo{}, err
	}
	ranges, err := pagerange.Parse(spec, total)
	if err != nil {
		return PageInfo{Total: total}, fmt.Errorf("%w: %v", ErrInvalidPageRange, err)
	}
	info.Total = total
	for _, page := range pagerange.Pages(ranges) {
		if err := c.convertPage(ctx, page, total); err != nil {
			return info, err
		}
		info.Converted++
	}
	return info, nil
}

// GetSVGFilename returns the file name written for page, or "" for stdout.
func (c *DVIConverter) GetSVGFilename(page int) string {
	if c.out == nil || c.interp == nil {
		return ""
	}
	return c.out.Filename(page, c.interp.TotalPages())
}

func (c *DVIConverter) postamble() (int, error) {
	if c.interp == nil {
		return 0, ErrNoInterpreter
	}
	if err := c.interp.ExecutePostamble(); err != nil {
		return 0, err
	}
	return c.interp.TotalPages(), nil
}

func (c *DVIConverter) convertPage(ctx context.Context, page, total int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := c.cfg.logger

	box, err := resolveBoundingBox(c.interp, c.cfg.policy, page, log)
	if err != nil {
		return err
	}
	if c.matrix == nil {
		m, err := userMatrix(c.cfg.transform, box, 1)
		if err != nil {
			return err
		}
		c.matrix = &m
	}
	if c.cfg.policy.IsMin() {
		box = box.Transform(*c.matrix)
	}

	fonts := c.interp.FontManager()
	used := font.NewUsedChars()
	acts := render.NewSVGActions(used, fonts.ID, log)
	acts.SetTransformation(*c.matrix)
	drawn, err := c.interp.ExecutePage(page, acts)
	if err != nil {
		return err
	}
	log.Debug().Int("page", page).Bool("drawn", drawn).Int("specials", acts.Specials()).Msg("page rendered")

	doc, err := c.assemble(box, acts.Page(), used, fonts)
	if err != nil {
		return err
	}

	name := displayName(c.out.Filename(page, total))
	w, err := c.out.PageWriter(page, total)
	if err == nil {
		err = writeDocument(doc, w)
	}
	if err != nil {
		log.Warn().Err(err).Msgf("failed to write output to %s", name)
		return nil
	}

	if box.Usable() {
		log.Info().Int("page", page).Msgf("page size: %spt x %spt (%smm x %smm)",
			xmltree.FormatNumber(box.Width()), xmltree.FormatNumber(box.Height()),
			xmltree.FormatNumber(geom.PtToMM(box.Width())), xmltree.FormatNumber(geom.PtToMM(box.Height())))
	}
	log.Info().Int("page", page).Msgf("output written to %s", name)
	return nil
}

// assemble builds the document of one page: comments, DOCTYPE, style
// rules, content group and embedded fonts, in this order.
func (c *DVIConverter) assemble(box geom.BoundingBox, page *xmltree.Element, used *font.UsedChars, fonts *font.Manager) (*xmltree.Document, error) {
	stamp, err := dateutil.FormatTimestamp(c.cfg.timestampFormat, c.cfg.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	root := newRoot(box)
	doc := xmltree.NewDocument(root)
	doc.Append(generatorComment(c.cfg.version))
	doc.Append(xmltree.NewComment(" " + stamp + " "))
	doc.Append(xmltree.NewDocType("svg", "PUBLIC", svgDTD))

	style := root.AppendElement("style")
	style.AddAttribute("type", "text/css")
	style.Append(xmltree.NewCData(fontsvg.StyleRules(fonts.Fonts(), fonts.ID)))

	root.Append(page)
	defs := root.AppendElement("defs")
	if !c.cfg.noFonts {
		st := c.embedder.Embed(defs, used, fonts.ID)
		c.cfg.logger.Debug().
			Int("traced", st.Traced).Int("outlined", st.Outlined).
			Int("skipped", st.Skipped).Int("glyphs", st.Glyphs).
			Msg("fonts embedded")
	}
	return doc, nil
}

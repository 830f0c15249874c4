package dvisvg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/pagerange"
	"github.com/alnah/go-dvisvg/internal/raster"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// ImageConverter turns pages of a PostScript, EPS or PDF file into SVG
// documents embedding a rendered image of each page.
// A converter belongs to one file and is not safe for concurrent use.
type ImageConverter struct {
	cfg     converterConfig
	path    string
	r       raster.Rasterizer
	out     OutputResolver
	checked bool
	total   int
}

// NewImageConverter creates a converter for the image file at path.
func NewImageConverter(path string, r raster.Rasterizer, out OutputResolver, opts ...Option) *ImageConverter {
	return &ImageConverter{cfg: newConfig(opts), path: path, r: r, out: out}
}

// imageFormat names the file type in messages, e.g. "EPS".
func (c *ImageConverter) imageFormat() string {
	ext := strings.TrimPrefix(filepath.Ext(c.path), ".")
	if ext == "" {
		return "image"
	}
	return strings.ToUpper(ext)
}

// checkRasterizer verifies once that the rasterizer runs and accepts the
// file.
func (c *ImageConverter) checkRasterizer() error {
	if c.checked {
		return nil
	}
	if c.r == nil || !c.r.Available() {
		return fmt.Errorf("%w: a rasterizer is required to process %s files", ErrRasterizerUnavailable, c.imageFormat())
	}
	if !c.r.Valid(c.path) {
		return fmt.Errorf("%w: invalid %s file", ErrInvalidImage, c.imageFormat())
	}
	c.checked = true
	return nil
}

func (c *ImageConverter) singlePage() bool { return c.r.SinglePage(c.path) }

// totalPages returns the page count, asking the rasterizer once.
func (c *ImageConverter) totalPages(ctx context.Context) (int, error) {
	if c.total > 0 {
		return c.total, nil
	}
	if c.singlePage() {
		c.total = 1
		return 1, nil
	}
	n, err := c.r.PageCount(ctx, c.path)
	if err != nil {
		return 0, err
	}
	c.total = n
	return n, nil
}

// Convert converts the pages first through last. The interval is put
// into ascending order and clamped to the document; an interval past the
// end converts nothing. Single-page formats always convert page 1.
func (c *ImageConverter) Convert(ctx context.Context, first, last int) (PageInfo, error) {
	if err := c.checkRasterizer(); err != nil {
		return PageInfo{}, err
	}
	total, err := c.totalPages(ctx)
	if err != nil {
		return PageInfo{}, err
	}
	info := PageInfo{Total: total}
	if c.singlePage() {
		if err := c.ConvertPage(ctx, 1); err != nil {
			return info, err
		}
		info.Converted = 1
		return info, nil
	}

	if first > last {
		first, last = last, first
	}
	first = max(1, first)
	if first > total {
		return info, nil
	}
	last = min(total, last)
	for page := first; page <= last; page++ {
		if err := c.ConvertPage(ctx, page); err != nil {
			return info, err
		}
		info.Converted++
	}
	return info, nil
}

// ConvertRanges converts the pages selected by spec, such as "2-3,5",
// and reports the number of converted pages summed over all ranges.
func (c *ImageConverter) ConvertRanges(ctx context.Context, spec string) (PageInfo, error) {
	if err := c.checkRasterizer(); err != nil {
		return PageInfo{}, err
	}
	total, err := c.totalPages(ctx)
	if err != nil {
		return PageInfo{}, err
	}
	ranges, err := pagerange.Parse(spec, total)
	if err != nil {
		return PageInfo{Total: total}, fmt.Errorf("%w: %v", ErrInvalidPageRange, err)
	}

	info := PageInfo{Total: total}
	for _, r := range ranges {
		got, err := c.Convert(ctx, r.First, r.Last)
		info.Converted += got.Converted
		if err != nil {
			return info, err
		}
	}
	return info, nil
}

// GetSVGFilename returns the file name written for page, or "" for stdout
// and for pages not known yet.
func (c *ImageConverter) GetSVGFilename(page int) string {
	if c.out == nil {
		return ""
	}
	total := c.total
	if total == 0 {
		total = 1
	}
	if page < 1 || page > total {
		return ""
	}
	return c.out.Filename(page, total)
}

// ConvertPage converts a single page. Write failures are logged and do
// not fail the call.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *ImageConverter) ConvertPage(ctx context.Context, page int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.checkRasterizer(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	total, err := c.totalPages(ctx)
	if err != nil {
		return err
	}
	log := c.cfg.logger.With().Int("page", page).Logger()

	box, err := c.r.BBox(ctx, c.path, page)
	if err != nil {
		return err
	}
	if box.Valid() && (box.Width() == 0 || box.Height() == 0) {
		log.Warn().Msgf("bounding box of %s file is empty", c.imageFormat())
	}
	log.Info().Msgf("processing %s file", c.imageFormat())

	group := xmltree.NewElement("g")
	group.AddAttribute("id", fmt.Sprintf("page%d", page))
	if err := c.rasterize(ctx, raster.Request{Path: c.path, Page: page, BBox: box, Resolution: c.cfg.resolution}, group); err != nil {
		return err
	}

	m, err := userMatrix(c.cfg.transform, box, geom.PtPerBP)
	if err != nil {
		return err
	}
	if !m.IsIdentity() {
		group.AddAttribute("transform", m.SVG())
	}
	box = box.Transform(m)

	root := newRoot(box)
	root.Append(group)
	doc := xmltree.NewDocument(root)
	doc.Append(generatorComment(c.cfg.version))

	name := displayName(c.out.Filename(page, total))
	w, err := c.out.PageWriter(page, total)
	if err == nil {
		err = writeDocument(doc, w)
	}
	if err != nil {
		log.Warn().Err(err).Msgf("failed to write output to %s", name)
		return nil
	}

	const bp2mm = 25.4 / 72
	log.Info().Msgf("graphic size: %spt x %spt (%smm x %smm)",
		xmltree.FormatNumber(box.Width()*geom.PtPerBP), xmltree.FormatNumber(box.Height()*geom.PtPerBP),
		xmltree.FormatNumber(box.Width()*bp2mm), xmltree.FormatNumber(box.Height()*bp2mm))
	log.Info().Msgf("output written to %s", name)
	return nil
}

// rasterize runs the rasterizer and clears the progress indicator
// whether or not it succeeds.
func (c *ImageConverter) rasterize(ctx context.Context, req raster.Request, sink *xmltree.Element) error {
	p := c.cfg.progress
	p.Reset()
	defer p.Finish()
	return c.r.Process(ctx, req, sink, p.Tick)
}

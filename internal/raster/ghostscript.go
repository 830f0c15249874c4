package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/process"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// DefaultGhostscript is the command run when none is configured.
const DefaultGhostscript = "gs"

// Ghostscript rasterizes PostScript, EPS and PDF files with the gs program.
type Ghostscript struct {
	Command  string
	Logger   zerolog.Logger
	Run      process.Runner
	LookPath func(string) (string, error)
}

// NewGhostscript creates a rasterizer running command ("gs" when empty).
func NewGhostscript(command string, logger zerolog.Logger) *Ghostscript {
	if command == "" {
		command = DefaultGhostscript
	}
	return &Ghostscript{
		Command:  command,
		Logger:   logger,
		Run:      process.Run,
		LookPath: exec.LookPath,
	}
}

func (g *Ghostscript) Available() bool {
	lookPath := g.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(g.Command)
	return err == nil
}

func (g *Ghostscript) Valid(path string) bool { return sniff(path) != formatUnknown }

func (g *Ghostscript) SinglePage(path string) bool { return sniff(path) == formatEPS }

func (g *Ghostscript) PageCount(ctx context.Context, path string) (int, error) {
	switch sniff(path) {
	case formatEPS:
		return 1, nil
	case formatPDF:
		return g.pdfPageCount(ctx, path)
	case formatPS:
		info, err := readDSC(path)
		if err != nil {
			return 0, err
		}
		if info.pages == 0 {
			return 1, nil
		}
		return info.pages, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, path)
}

func (g *Ghostscript) pdfPageCount(ctx context.Context, path string) (int, error) {
	var out bytes.Buffer
	script := fmt.Sprintf("(%s) (r) file runpdfbegin pdfpagecount = quit", psString(path))
	args := []string{"-q", "-dNODISPLAY", "-dSAFER", "--permit-file-read=" + path, "-dNOPAUSE", "-dBATCH", "-c", script}
	if err := g.exec(ctx, args, &out); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out.String()))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: unexpected page count %q", ErrGhostscript, strings.TrimSpace(out.String()))
	}
	return n, nil
}

// BBox reads the DSC bounding box of PostScript files and falls back to
// Ghostscript's bbox device.
func (g *Ghostscript) BBox(ctx context.Context, path string, page int) (geom.BoundingBox, error) {
	ft := sniff(path)
	if ft == formatUnknown {
		return geom.BoundingBox{}, fmt.Errorf("%w: %s", ErrInvalidFormat, path)
	}
	if ft != formatPDF {
		info, err := readDSC(path)
		if err != nil {
			return geom.BoundingBox{}, err
		}
		if info.box.Valid() {
			return fromPS(info.box.MinX(), info.box.MinY(), info.box.MaxX(), info.box.MaxY()), nil
		}
	}

	args := []string{"-q", "-dSAFER", "-dNOPAUSE", "-dBATCH", "-sDEVICE=bbox"}
	if ft != formatEPS {
		args = append(args, pageArgs(page)...)
	}
	stderr, err := g.run(ctx, append(args, path), &bytes.Buffer{})
	if err != nil {
		return geom.BoundingBox{}, err
	}
	box, ok := parseBBoxDevice(stderr)
	if !ok {
		return geom.BoundingBox{}, fmt.Errorf("%w: no bounding box for page %d", ErrGhostscript, page)
	}
	return fromPS(box.MinX(), box.MinY(), box.MaxX(), box.MaxY()), nil
}

// Process renders the page area covered by req.BBox to PNG and embeds it.
// An unusable box renders nothing.
func (g *Ghostscript) Process(ctx context.Context, req Request, sink *xmltree.Element, tick func()) error {
	if !req.BBox.Usable() {
		return nil
	}
	res := req.resolution()
	w := int(math.Ceil(req.BBox.Width() * res / 72))
	h := int(math.Ceil(req.BBox.Height() * res / 72))
	llx, lly := req.BBox.MinX(), -req.BBox.MaxY()

	args := []string{
		"-q", "-dSAFER", "-dNOPAUSE", "-dBATCH",
		"-sDEVICE=pngalpha", "-dFIXEDMEDIA",
		"-r" + xmltree.FormatNumber(res),
		fmt.Sprintf("-g%dx%d", w, h),
	}
	if !g.SinglePage(req.Path) {
		args = append(args, pageArgs(req.Page)...)
	}
	install := fmt.Sprintf("<</Install {%s %s translate}>> setpagedevice",
		xmltree.FormatNumber(-llx), xmltree.FormatNumber(-lly))
	args = append(args, "-sOutputFile=-", "-c", install, "-f", req.Path)

	var png bytes.Buffer
	if err := g.exec(ctx, args, &tickWriter{w: &png, tick: tick}); err != nil {
		return err
	}
	if png.Len() == 0 {
		return fmt.Errorf("%w: no output for page %d", ErrGhostscript, req.Page)
	}
	embedPNG(sink, req.BBox, png.Bytes())
	return nil
}

func (g *Ghostscript) exec(ctx context.Context, args []string, stdout io.Writer) error {
	_, err := g.run(ctx, args, stdout)
	return err
}

func (g *Ghostscript) run(ctx context.Context, args []string, stdout io.Writer) ([]byte, error) {
	run := g.Run
	if run == nil {
		run = process.Run
	}
	g.Logger.Debug().Str("command", g.Command).Strs("args", args).Msg("running ghostscript")
	stderr, err := run(ctx, g.Command, args, stdout)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return stderr, err
		}
		return stderr, fmt.Errorf("%w: %v", ErrGhostscript, err)
	}
	return stderr, nil
}

func pageArgs(page int) []string {
	return []string{fmt.Sprintf("-dFirstPage=%d", page), fmt.Sprintf("-dLastPage=%d", page)}
}

// psString escapes s for use inside a PostScript string literal.
func psString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}

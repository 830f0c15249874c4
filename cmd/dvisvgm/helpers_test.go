package main

// Notes:
// - fakeRasterizer stands in for Ghostscript so image files convert
//   without external programs. It draws one rect per page.
// - DVI files are covered by the root and dvi packages; here they only
//   appear as discovery and error cases.
// - Tests touching the environment or the working directory use
//   t.Setenv/t.Chdir and are therefore not parallel.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	dvisvg "github.com/alnah/go-dvisvg"
	"github.com/alnah/go-dvisvg/internal/config"
	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/raster"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

const epsHeader = "%!PS-Adobe-3.0 EPSF-3.0\n%%BoundingBox: 0 0 20 10\n"

var fixedTime = time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)

// fakeRasterizer renders every page as an empty rect.
type fakeRasterizer struct {
	pages      int
	processErr error
}

func (f *fakeRasterizer) Available() bool        { return true }
func (f *fakeRasterizer) Valid(string) bool      { return true }
func (f *fakeRasterizer) SinglePage(string) bool { return f.pages == 1 }

func (f *fakeRasterizer) PageCount(context.Context, string) (int, error) { return f.pages, nil }

func (f *fakeRasterizer) BBox(context.Context, string, int) (geom.BoundingBox, error) {
	return geom.NewBoundingBox(0, -10, 20, 0), nil
}

func (f *fakeRasterizer) Process(_ context.Context, _ raster.Request, sink *xmltree.Element, _ func()) error {
	if f.processErr != nil {
		return f.processErr
	}
	sink.AppendElement("rect")
	return nil
}

var _ raster.Rasterizer = (*fakeRasterizer)(nil)

// fakePool hands out one shared workspace.
type fakePool struct {
	ws   *dvisvg.Workspace
	err  error
	size int
}

func (p *fakePool) Acquire() (*dvisvg.Workspace, error) { return p.ws, p.err }
func (p *fakePool) Release(*dvisvg.Workspace)           {}
func (p *fakePool) Size() int                           { return p.size }

func newFakePool(r *fakeRasterizer, size int) *fakePool {
	return &fakePool{ws: &dvisvg.Workspace{Ghostscript: r, PDF: r}, size: size}
}

// testParams writes pages below dir.
func testParams(dir, pages string) *conversionParams {
	cfg := config.DefaultConfig()
	cfg.Output.Pattern = filepath.Join(dir, "%f-%p.svg")
	return &conversionParams{
		cfg:     cfg,
		pages:   pages,
		noFonts: true,
		finder:  font.NewFinder(),
		fontMap: font.NewFontMap(),
		logger:  zerolog.Nop(),
		now:     func() time.Time { return fixedTime },
	}
}

// writeFiles creates files below a temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("creating dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

// testEnv captures command output.
func testEnv(stdout, stderr *bytes.Buffer) *Environment {
	env := DefaultEnv()
	env.Now = func() time.Time { return fixedTime }
	env.Stdout = stdout
	env.Stderr = stderr
	return env
}

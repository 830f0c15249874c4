package dvisvg

// Notes:
// - mockInterpreter replays scripted pages instead of reading DVI files;
//   every page draws with metricFont so boxes can be computed by hand.
// - memOutput keeps written pages in memory, keyed by page number.
// - mockRasterizer stands in for Ghostscript and MuPDF.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-dvisvg/internal/dvi"
	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/raster"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

// fixedTime is the clock of every converter built in tests.
var fixedTime = time.Date(2024, time.March, 5, 10, 20, 30, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

// metricFont draws every char 40pt wide and 40pt high above the baseline.
type metricFont struct{ name string }

func (f *metricFont) Name() string           { return f.name }
func (f *metricFont) ScaledSize() float64    { return 10 }
func (f *metricFont) DesignSize() float64    { return 10 }
func (f *metricFont) CharWidth(int) float64  { return 40 }
func (f *metricFont) CharHeight(int) float64 { return 40 }
func (f *metricFont) CharDepth(int) float64  { return 0 }

type drawOp func(a dvi.Actions, f font.Font)

func char(x, y float64, c int) drawOp {
	return func(a dvi.Actions, f font.Font) { a.SetChar(x, y, c, f) }
}

type mockInterpreter struct {
	width, height float64
	pages         [][]drawOp
	postambleErr  error

	fonts    *font.Manager
	font     font.Font
	executed []int
}

var _ dvi.Interpreter = (*mockInterpreter)(nil)

// newMockInterpreter creates a 100pt by 100pt document whose pages each
// hold one char at (10, 60), covering the box (10, 20, 50, 60).
func newMockInterpreter(pages int) *mockInterpreter {
	m := &mockInterpreter{width: 100, height: 100, fonts: font.NewManager(), font: &metricFont{"cmr10"}}
	m.fonts.Register(0, m.font)
	for i := 0; i < pages; i++ {
		m.pages = append(m.pages, []drawOp{char(10, 60, 'A')})
	}
	return m
}

func (m *mockInterpreter) ExecutePostamble() error    { return m.postambleErr }
func (m *mockInterpreter) TotalPages() int            { return len(m.pages) }
func (m *mockInterpreter) PageWidth() float64         { return m.width }
func (m *mockInterpreter) PageHeight() float64        { return m.height }
func (m *mockInterpreter) FontManager() *font.Manager { return m.fonts }

func (m *mockInterpreter) ExecutePage(n int, a dvi.Actions) (bool, error) {
	if n < 1 || n > len(m.pages) {
		return false, fmt.Errorf("%w: %d", dvi.ErrNoPage, n)
	}
	m.executed = append(m.executed, n)
	a.BeginPage(n, [10]int32{int32(n)})
	for _, op := range m.pages[n-1] {
		op(a, m.font)
	}
	a.EndPage()
	return len(m.pages[n-1]) > 0, nil
}

// memOutput collects written pages in memory.
type memOutput struct {
	mu    sync.Mutex
	pages map[int]string
	fail  error
}

var _ OutputResolver = (*memOutput)(nil)

func newMemOutput() *memOutput { return &memOutput{pages: make(map[int]string)} }

func (o *memOutput) Filename(page, _ int) string { return fmt.Sprintf("page-%d.svg", page) }

func (o *memOutput) PageWriter(page, _ int) (io.WriteCloser, error) {
	if o.fail != nil {
		return nil, o.fail
	}
	return &memWriter{out: o, page: page}, nil
}

func (o *memOutput) page(n int) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pages[n]
}

func (o *memOutput) written() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	var pages []int
	for p := 1; p <= 1000; p++ {
		if _, ok := o.pages[p]; ok {
			pages = append(pages, p)
		}
	}
	return pages
}

type memWriter struct {
	bytes.Buffer
	out  *memOutput
	page int
}

func (w *memWriter) Close() error {
	w.out.mu.Lock()
	defer w.out.mu.Unlock()
	w.out.pages[w.page] = w.String()
	return nil
}

var errDiskFull = errors.New("disk full")

// mockRasterizer reports a fixed box and draws a rectangle per page.
type mockRasterizer struct {
	available  bool
	valid      bool
	single     bool
	pageCount  int
	box        geom.BoundingBox
	processErr error
	ticks      int

	mu        sync.Mutex
	processed []int
}

var _ raster.Rasterizer = (*mockRasterizer)(nil)

func newMockRasterizer(pages int) *mockRasterizer {
	return &mockRasterizer{
		available: true,
		valid:     true,
		pageCount: pages,
		box:       geom.NewBoundingBox(0, -50, 100, 0),
	}
}

func (r *mockRasterizer) Available() bool        { return r.available }
func (r *mockRasterizer) Valid(string) bool      { return r.valid }
func (r *mockRasterizer) SinglePage(string) bool { return r.single }

func (r *mockRasterizer) PageCount(context.Context, string) (int, error) {
	return r.pageCount, nil
}

func (r *mockRasterizer) BBox(context.Context, string, int) (geom.BoundingBox, error) {
	return r.box, nil
}

func (r *mockRasterizer) Process(ctx context.Context, req raster.Request, sink *xmltree.Element, tick func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.processed = append(r.processed, req.Page)
	r.mu.Unlock()
	for i := 0; i < r.ticks; i++ {
		tick()
	}
	if r.processErr != nil {
		return r.processErr
	}
	img := sink.AppendElement("rect")
	img.AddNumberAttribute("width", req.BBox.Width())
	img.AddNumberAttribute("height", req.BBox.Height())
	return nil
}

// ---------------------------------------------------------------------------
// Assertions
// ---------------------------------------------------------------------------

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("missing %q in:\n%s", substr, s)
	}
}

func assertNotContains(t *testing.T, s, substr string) {
	t.Helper()
	if strings.Contains(s, substr) {
		t.Errorf("unexpected %q in:\n%s", substr, s)
	}
}

// assertInOrder checks that every part occurs in s after the previous one.
func assertInOrder(t *testing.T, s string, parts ...string) {
	t.Helper()
	rest := s
	for _, p := range parts {
		i := strings.Index(rest, p)
		if i < 0 {
			t.Errorf("missing or out of order: %q", p)
			return
		}
		rest = rest[i+len(p):]
	}
}

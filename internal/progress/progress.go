// Package progress reports the advance of long-running rasterizations on
// the terminal. A Reporter stays silent for a short delay so that quick
// conversions print nothing, then redraws at a bounded rate.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Default timings.
const (
	DefaultDelay    = 500 * time.Millisecond
	DefaultInterval = 50 * time.Millisecond
)

// Renderer draws the indicator.
type Renderer interface {
	Draw(count int)
	Clear()
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// WithDelay sets how long the reporter stays silent after a reset.
func WithDelay(d time.Duration) Option {
	return func(r *Reporter) { r.delay = d }
}

// WithInterval sets the minimum time between two redraws.
func WithInterval(d time.Duration) Option {
	return func(r *Reporter) { r.interval = d }
}

// Reporter counts processing steps and draws them through a Renderer.
// A nil *Reporter is valid and reports nothing.
type Reporter struct {
	renderer Renderer
	now      func() time.Time
	delay    time.Duration
	interval time.Duration

	mu      sync.Mutex
	last    time.Time
	count   int
	drawing bool
}

// New creates a reporter drawing through r.
func New(r Renderer, opts ...Option) *Reporter {
	p := &Reporter{
		renderer: r,
		now:      time.Now,
		delay:    DefaultDelay,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.last = p.now()
	return p
}

// Tick records one step.
func (p *Reporter) Tick() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	t := p.now()
	if !p.drawing && t.Sub(p.last) > p.delay {
		p.drawing = true
	}
	if p.drawing && t.Sub(p.last) > p.interval {
		p.renderer.Draw(p.count)
		p.last = t
	}
}

// Finish draws the final count, clears the indicator and resets the
// reporter. It is safe to call when nothing was drawn.
func (p *Reporter) Finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drawing {
		p.renderer.Draw(p.count)
		p.renderer.Clear()
	}
	p.reset()
}

// Reset zeroes the count and restarts the delay.
func (p *Reporter) Reset() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Reporter) reset() {
	p.count = 0
	p.drawing = false
	p.last = p.now()
}

// Count returns the steps recorded since the last reset.
func (p *Reporter) Count() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Drawing reports whether the indicator is visible.
func (p *Reporter) Drawing() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drawing
}

// Spinner renders the count next to a spinner.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(false),
		progressbar.OptionClearOnFinish(),
	)
	return &Spinner{bar: bar}
}

func (s *Spinner) Draw(count int) {
	s.bar.Describe(fmt.Sprintf("%6d PostScript instructions processed", count))
	_ = s.bar.Set(count)
}

func (s *Spinner) Clear() { _ = s.bar.Clear() }

var _ Renderer = (*Spinner)(nil)

// Enabled reports whether f is a terminal the indicator may draw on.
func Enabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ForStderr returns a reporter drawing on stderr, or nil when stderr is
// not a terminal.
func ForStderr() *Reporter {
	if !Enabled(os.Stderr) {
		return nil
	}
	return New(NewSpinner(os.Stderr))
}

package progress

// Notes:
// - Time is driven by a fake clock; Tick and Finish never sleep.
// - The Spinner is only checked for writing something; its exact frames
//   belong to progressbar.

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordRenderer struct {
	draws  []int
	clears int
}

func (r *recordRenderer) Draw(count int) { r.draws = append(r.draws, count) }
func (r *recordRenderer) Clear()         { r.clears++ }

func newReporter() (*Reporter, *recordRenderer, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := &recordRenderer{}
	return New(r, WithClock(clock.now)), r, clock
}

// ---------------------------------------------------------------------------
// TestReporter - Delay and Redraw Rate
// ---------------------------------------------------------------------------

func TestReporter_SilentBeforeDelay(t *testing.T) {
	t.Parallel()

	p, r, clock := newReporter()
	for i := 0; i < 10; i++ {
		clock.advance(40 * time.Millisecond)
		p.Tick()
	}
	assert.Empty(t, r.draws)
	assert.Equal(t, 10, p.Count())
	assert.False(t, p.Drawing())

	p.Finish()
	assert.Empty(t, r.draws)
	assert.Zero(t, r.clears)
}

func TestReporter_DrawsAfterDelayAtBoundedRate(t *testing.T) {
	t.Parallel()

	p, r, clock := newReporter()
	clock.advance(600 * time.Millisecond)
	p.Tick() // delay elapsed: first draw
	require.Equal(t, []int{1}, r.draws)

	clock.advance(10 * time.Millisecond)
	p.Tick() // too soon
	clock.advance(10 * time.Millisecond)
	p.Tick()
	assert.Equal(t, []int{1}, r.draws)

	clock.advance(40 * time.Millisecond)
	p.Tick()
	assert.Equal(t, []int{1, 4}, r.draws)
}

func TestReporter_FinishDrawsFinalCountAndClears(t *testing.T) {
	t.Parallel()

	p, r, clock := newReporter()
	clock.advance(time.Second)
	p.Tick()
	p.Tick()
	p.Finish()

	assert.Equal(t, []int{1, 2}, r.draws)
	assert.Equal(t, 1, r.clears)
	assert.Zero(t, p.Count())
	assert.False(t, p.Drawing())
}

func TestReporter_ResetRestartsDelay(t *testing.T) {
	t.Parallel()

	p, r, clock := newReporter()
	clock.advance(time.Second)
	p.Reset()
	clock.advance(100 * time.Millisecond)
	p.Tick()
	assert.Empty(t, r.draws)
	assert.Equal(t, 1, p.Count())
}

func TestReporter_Options(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(0, 0)}
	r := &recordRenderer{}
	p := New(r, WithClock(clock.now), WithDelay(0), WithInterval(0))
	clock.advance(time.Nanosecond)
	p.Tick()
	assert.Equal(t, []int{1}, r.draws)
}

func TestReporter_NilIsNoop(t *testing.T) {
	t.Parallel()

	var p *Reporter
	p.Tick()
	p.Finish()
	p.Reset()
	assert.Zero(t, p.Count())
	assert.False(t, p.Drawing())
}

// ---------------------------------------------------------------------------
// TestSpinner and Terminal Detection
// ---------------------------------------------------------------------------

func TestSpinner_WritesCount(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSpinner(&buf)
	s.Draw(42)
	assert.Contains(t, buf.String(), "42 PostScript instructions processed")
	s.Clear()
}

func TestEnabled_RegularFile(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.False(t, Enabled(f))
}

package dvisvg

import (
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/fontsvg"
	"github.com/alnah/go-dvisvg/internal/raster"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent conversions; each may run a Ghostscript
	// process and hold traced glyph bitmaps in memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Ghostscript child processes.
	cpuDivisor = 2
)

// Workspace holds the resources one worker needs to convert files: a font
// embedder and the rasterizers. A workspace is used by one goroutine at a
// time.
type Workspace struct {
	Embedder    *fontsvg.Embedder
	Ghostscript raster.Rasterizer
	PDF         raster.Rasterizer
}

// WorkspaceFactory creates a workspace when the pool needs a new one.
type WorkspaceFactory func() (*Workspace, error)

// DefaultWorkspaceFactory returns a factory sharing finder between all
// workspaces. gsCommand names the Ghostscript executable ("" selects gs).
func DefaultWorkspaceFactory(finder *font.Finder, gsCommand string, logger zerolog.Logger) WorkspaceFactory {
	return func() (*Workspace, error) {
		return &Workspace{
			Embedder:    fontsvg.NewEmbedder(finder, logger),
			Ghostscript: raster.NewGhostscript(gsCommand, logger),
			PDF:         raster.NewMuPDF(logger),
		}, nil
	}
}

// Rasterizer returns the rasterizer handling the image file at path.
func (w *Workspace) Rasterizer(path string) raster.Rasterizer {
	return raster.Detect(path, w.Ghostscript, w.PDF)
}

// WorkspacePool manages workspaces for parallel processing.
// Workspaces are created lazily on first acquire to avoid startup delay.
type WorkspacePool struct {
	size    int
	factory WorkspaceFactory
	sem     chan *Workspace
	mu      sync.Mutex
	created int
	closed  bool
}

// NewWorkspacePool creates a pool with capacity for n workspaces built by
// factory.
func NewWorkspacePool(n int, factory WorkspaceFactory) *WorkspacePool {
	if n < 1 {
		n = 1
	}

	return &WorkspacePool{
		size:    n,
		factory: factory,
		sem:     make(chan *Workspace, n),
	}
}

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("workspace pool closed")

// Acquire gets a workspace from the pool, creating one if needed.
// Blocks if all workspaces are in use.
func (p *WorkspacePool) Acquire() (*Workspace, error) {
	select {
	case ws, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return ws, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		ws, err := p.factory()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		return ws, nil
	}
	p.mu.Unlock()

	ws, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return ws, nil
}

// Release returns a workspace to the pool.
// The send happens under the lock so that it never races with Close; the
// channel holds one slot per workspace and cannot block.
func (p *WorkspacePool) Release(ws *Workspace) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.sem <- ws
	}
}

// Close stops handing out workspaces. Blocked Acquire calls return
// ErrPoolClosed.
func (p *WorkspacePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.sem)
	return nil
}

// Size returns the pool capacity.
func (p *WorkspacePool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

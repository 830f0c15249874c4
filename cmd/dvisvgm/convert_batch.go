package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	dvisvg "github.com/alnah/go-dvisvg"
	"github.com/alnah/go-dvisvg/internal/dvi"
	"github.com/alnah/go-dvisvg/internal/fileutil"
	"github.com/alnah/go-dvisvg/internal/font"
	"github.com/alnah/go-dvisvg/internal/hints"
	"github.com/alnah/go-dvisvg/internal/pagerange"
	"github.com/alnah/go-dvisvg/internal/progress"
	"github.com/alnah/go-dvisvg/internal/raster"
)

// Sentinel errors for batch operations.
var (
	ErrReadInput     = errors.New("failed to read input file")
	ErrWorkspaceInit = errors.New("failed to initialize conversion workspace")
)

// Pool abstracts workspace pool operations for testability.
type Pool interface {
	Acquire() (*dvisvg.Workspace, error)
	Release(*dvisvg.Workspace)
	Size() int
}

// Compile-time interface implementation check.
var _ Pool = (*dvisvg.WorkspacePool)(nil)

// pageConverter is implemented by both converters.
type pageConverter interface {
	Convert(ctx context.Context, first, last int) (dvisvg.PageInfo, error)
	ConvertRanges(ctx context.Context, spec string) (dvisvg.PageInfo, error)
	GetSVGFilename(page int) string
}

var (
	_ pageConverter = (*dvisvg.DVIConverter)(nil)
	_ pageConverter = (*dvisvg.ImageConverter)(nil)
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath string
	Outputs   []string // files written, empty for stdout
	Pages     dvisvg.PageInfo
	Err       error
	Duration  time.Duration
}

// convertBatch processes files concurrently using the workspace pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ws, err := pool.Acquire()
			if err != nil {
				// Workspace creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %v", ErrWorkspaceInit, err),
					}
				}
				return
			}
			defer pool.Release(ws)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, ws, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, ws *dvisvg.Workspace, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}

	out := dvisvg.NewFileOutput(f.InputPath, params.cfg.Output.Pattern)
	logger := params.logger.With().Str("file", f.InputPath).Logger()

	var conv pageConverter
	switch f.Kind {
	case kindDVI:
		c, err := newDVIConverter(f.InputPath, ws, out, params, logger)
		if err != nil {
			result.Err = err
			result.Duration = time.Since(start)
			return result
		}
		conv = c
	default:
		conv = newImageConverter(f.InputPath, ws, out, params, logger)
	}

	info, err := selectPages(ctx, conv, params.pages)
	result.Pages = info
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = withHints(err, params)
		return result
	}
	result.Outputs = writtenFiles(conv, params.pages, info)
	return result
}

// commonOptions returns the converter options derived from the config.
func (p *conversionParams) commonOptions(logger zerolog.Logger) []dvisvg.Option {
	return []dvisvg.Option{
		dvisvg.WithBBoxPolicy(dvisvg.ParseBBoxPolicy(p.cfg.Page.BBox)),
		dvisvg.WithTransform(p.cfg.Page.Transform),
		dvisvg.WithLogger(logger),
		dvisvg.WithClock(p.now),
		dvisvg.WithTimestampFormat(p.cfg.SVG.TimestampFormat),
	}
}

func newDVIConverter(path string, ws *dvisvg.Workspace, out dvisvg.OutputResolver, params *conversionParams, logger zerolog.Logger) (*dvisvg.DVIConverter, error) {
	f, err := os.Open(path) // #nosec G304 -- discovered path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	defer func() { _ = f.Close() }()

	loader := font.NewLoader(params.finder, params.fontMap)
	loader.Logger = logger
	reader, err := dvi.NewReader(f, loader, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("comment", reader.Comment()).Uint32("mag", reader.Magnification()).Msg("opened DVI file")

	opts := append(params.commonOptions(logger),
		dvisvg.WithMag(params.cfg.Page.Mag),
		dvisvg.WithEmbedder(ws.Embedder),
	)
	if params.noFonts {
		opts = append(opts, dvisvg.WithNoFonts())
	}
	return dvisvg.NewDVIConverter(reader, out, opts...), nil
}

func newImageConverter(path string, ws *dvisvg.Workspace, out dvisvg.OutputResolver, params *conversionParams, logger zerolog.Logger) *dvisvg.ImageConverter {
	opts := append(params.commonOptions(logger), dvisvg.WithResolution(params.cfg.Image.Resolution))
	if params.progress {
		opts = append(opts, dvisvg.WithProgress(progress.ForStderr()))
	}
	return dvisvg.NewImageConverter(path, ws.Rasterizer(path), out, opts...)
}

// selectPages converts a single page when spec is a number, else the
// page ranges it lists. An empty spec selects the first page.
func selectPages(ctx context.Context, conv pageConverter, spec string) (dvisvg.PageInfo, error) {
	if n, ok := singlePage(spec); ok {
		return conv.Convert(ctx, n, n)
	}
	return conv.ConvertRanges(ctx, strings.TrimSpace(spec))
}

// singlePage returns the page number when spec names exactly one page.
// Open ranges such as "-3" are not single pages.
func singlePage(spec string) (int, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 1, true
	}
	if spec[0] < '0' || spec[0] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(spec)
	return n, err == nil
}

// writtenFiles lists the existing output files of the converted pages.
func writtenFiles(conv pageConverter, spec string, info dvisvg.PageInfo) []string {
	if info.Converted == 0 {
		return nil
	}
	var pages []int
	if n, ok := singlePage(spec); ok {
		pages = []int{min(max(n, 1), info.Total)}
	} else if ranges, err := pagerange.Parse(strings.TrimSpace(spec), info.Total); err == nil {
		pages = pagerange.Pages(ranges)
	}

	var files []string
	for _, page := range pages {
		if name := conv.GetSVGFilename(page); name != "" && fileutil.FileExists(name) {
			files = append(files, name)
		}
	}
	return files
}

// withHints appends actionable hints to errors users can fix.
func withHints(err error, params *conversionParams) error {
	switch {
	case errors.Is(err, dvisvg.ErrRasterizerUnavailable), errors.Is(err, raster.ErrGhostscript):
		return fmt.Errorf("%w%s", err, hints.ForGhostscript(params.cfg.Image.Ghostscript))
	case errors.Is(err, dvisvg.ErrPageRange), errors.Is(err, dvisvg.ErrInvalidPageRange):
		return fmt.Errorf("%w%s", err, hints.ForPageRange())
	}
	return err
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results. Failures go to errw. The
// returned error wraps the first failure so the exit code reflects it.
func printResults(results []ConversionResult, out, errw io.Writer, common commonFlags, p palette) error {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(errw, "%s %s: %v\n", p.fail.Sprint("FAILED"), r.InputPath, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		if common.quiet {
			continue
		}

		if common.verbose {
			fmt.Fprintf(out, "%s: %d of %d page(s) (%v)\n",
				r.InputPath, r.Pages.Converted, r.Pages.Total, r.Duration.Round(time.Millisecond))
		}
		for _, name := range r.Outputs {
			fmt.Fprintf(out, "%s %s\n", p.ok.Sprint("Created"), name)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(out, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if summary.Failed > 0 {
		return &batchError{failed: summary.Failed, first: firstErr}
	}
	return nil
}

// batchError reports failed conversions whose details were already
// printed. It unwraps to the first failure.
type batchError struct {
	failed int
	first  error
}

func (e *batchError) Error() string { return fmt.Sprintf("%d conversion(s) failed", e.failed) }
func (e *batchError) Unwrap() error { return e.first }

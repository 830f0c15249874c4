package main

import (
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-dvisvg/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	noColor bool
}

// pageFlags holds page selection and geometry flags.
type pageFlags struct {
	pages     string
	bbox      string
	transform string
}

// fontFlags holds font lookup and embedding flags.
type fontFlags struct {
	dirs    []string
	maps    []string
	mag     float64
	noFonts bool
}

// imageFlags holds rasterization flags for PS, EPS and PDF input.
type imageFlags struct {
	resolution  float64
	ghostscript string
}

// svgFlags holds serialization flags.
type svgFlags struct {
	precision  int
	noNewlines bool
	timestamp  string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	output  string
	workers int
	page    pageFlags
	fonts   fontFlags
	image   imageFlags
	svg     svgFlags

	set *flag.FlagSet
}

// changed reports whether the flag name was given on the command line.
func (f *convertFlags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug messages and timing")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addPageFlags adds page flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.pages, "page", "p", "1", "page or page ranges to convert (e.g. 3 or 1-4,7)")
	fs.StringVarP(&f.bbox, "bbox", "b", config.DefaultBBox, "bounding box: min, dvi, none, a margin (e.g. 5mm) or a paper size")
	fs.StringVarP(&f.transform, "transform", "T", "", "transformation commands (e.g. \"R90 S2\")")
}

// addFontFlags adds font flags to a FlagSet.
func addFontFlags(fs *flag.FlagSet, f *fontFlags) {
	fs.StringArrayVar(&f.dirs, "font-dir", nil, "directory searched for font files (repeatable)")
	fs.StringArrayVar(&f.maps, "font-map", nil, "font map file (repeatable)")
	fs.Float64VarP(&f.mag, "mag", "M", config.DefaultMag, "magnification of traced Metafont glyphs")
	fs.BoolVarP(&f.noFonts, "no-fonts", "n", false, "do not embed glyph definitions")
}

// addImageFlags adds image flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.Float64VarP(&f.resolution, "resolution", "r", config.DefaultResolution, "rasterization resolution in dpi")
	fs.StringVar(&f.ghostscript, "ghostscript", config.DefaultGhostscript, "Ghostscript command")
}

// addSVGFlags adds serialization flags to a FlagSet.
func addSVGFlags(fs *flag.FlagSet, f *svgFlags) {
	fs.IntVar(&f.precision, "precision", config.DefaultPrecision, "decimal places of written numbers (0-12)")
	fs.BoolVar(&f.noNewlines, "no-newlines", false, "do not separate elements with line breaks")
	fs.StringVar(&f.timestamp, "timestamp", "", "layout of the timestamp comment (e.g. iso, YYYY-MM-DD)")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{set: fs}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", config.DefaultPattern, "output file name pattern (%f, %p, %P; - = stdout)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addFontFlags(fs, &f.fonts)
	addImageFlags(fs, &f.image)
	addSVGFlags(fs, &f.svg)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseCommonFlags parses the flags of the doctor and config commands.
// The help flag is reported as flag.ErrHelp after usage is printed.
func parseCommonFlags(name string, args []string) (*commonFlags, bool, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &commonFlags{}
	addCommonFlags(fs, f)
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	fs.Usage = func() { _ = runHelp([]string{name}, DefaultEnv()) }

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return f, *jsonOutput, nil
}

package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// palette colors the status words of the result listing.
type palette struct {
	fail *color.Color
	ok   *color.Color
}

// newPalette returns colors that are switched on or off explicitly, so
// the global color.NoColor setting does not apply.
func newPalette(enabled bool) palette {
	p := palette{
		fail: color.New(color.FgRed, color.Bold),
		ok:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.fail, p.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// colorSupported reports whether w is a terminal and NO_COLOR is unset.
func colorSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newLogger returns the console logger of a run. -q keeps errors only,
// -v adds debug messages.
func newLogger(w io.Writer, c commonFlags) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case c.quiet:
		level = zerolog.ErrorLevel
	case c.verbose:
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      c.noColor || !colorSupported(w),
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(cw).Level(level)
}

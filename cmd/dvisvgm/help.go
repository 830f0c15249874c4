package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dvisvgm [command] [flags] <file>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert DVI, EPS, PS or PDF files to SVG (default)")
	fmt.Fprintln(w, "  doctor     Check Ghostscript, fonts and environment")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'dvisvgm help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dvisvgm [convert] <file>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert pages of DVI, EPS, PostScript and PDF files to SVG.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file     Input file or directory (.dvi, .eps, .ps, .pdf)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	io.WriteString(w, "  -o, --output <pattern>    Output file name pattern (default %f-%p.svg)\n")
	io.WriteString(w, "                            %f base name, %p page, %P padded page, - stdout\n")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pages:")
	fmt.Fprintln(w, "  -p, --page <ranges>       Page or ranges to convert: 3, 2-5, -3, 7-, 1,4-6")
	fmt.Fprintln(w, "  -b, --bbox <s>            Bounding box: min, dvi, none, a4, letter-landscape")
	fmt.Fprintln(w, "  -T, --transform <cmds>    Transformations: T<x>,<y> S<sx>[,<sy>] R<deg> FH FV KX KY M")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fonts:")
	fmt.Fprintln(w, "      --font-dir <dir>      Directory with tfm, pk, pfb and otf files (repeatable)")
	fmt.Fprintln(w, "      --font-map <file>     dvips font map file (repeatable)")
	fmt.Fprintln(w, "  -M, --mag <f>             Magnification of traced Metafont glyphs (default 4)")
	fmt.Fprintln(w, "  -n, --no-fonts            Do not embed glyph definitions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintln(w, "  -r, --resolution <dpi>    Rasterization resolution (10-2400, default 300)")
	fmt.Fprintln(w, "      --ghostscript <cmd>   Ghostscript command (default gs)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SVG:")
	fmt.Fprintln(w, "      --precision <n>       Decimal places of numbers (0-12, default 6)")
	fmt.Fprintln(w, "      --no-newlines         Write elements without line breaks")
	fmt.Fprintln(w, "      --timestamp <s>       Timestamp layout: iso, european, us, long or tokens")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug messages and timing")
	fmt.Fprintln(w, "      --no-color            Disable colored output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DVISVGM_CONFIG, DVISVGM_OUTPUT, DVISVGM_BBOX, DVISVGM_TRANSFORM, DVISVGM_MAG,")
	fmt.Fprintln(w, "  DVISVGM_FONT_DIRS, DVISVGM_FONT_MAPS, DVISVGM_RESOLUTION, DVISVGM_GHOSTSCRIPT,")
	fmt.Fprintln(w, "  DVISVGM_PRECISION, DVISVGM_WORKERS. A .env file in the working directory is read.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: dvisvgm doctor [--json] [-c <config>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that Ghostscript and the font directories are usable.")
	case "config":
		fmt.Fprintln(env.Stdout, "Usage: dvisvgm config [-c <config>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Print the configuration after applying the file and DVISVGM_* variables.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: dvisvgm version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: dvisvgm help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}

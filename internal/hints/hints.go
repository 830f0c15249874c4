// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-dvisvg/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForGhostscript returns hints for a missing or failing Ghostscript.
// Suggests the platform's package and the --ghostscript setting.
func ForGhostscript(command string) string {
	var hints []string

	switch {
	case IsInContainer():
		hints = append(hints, "install ghostscript in the image (apt-get install ghostscript)")
	case runtime.GOOS == "windows":
		hints = append(hints, "install Ghostscript and use gswin64c as command")
	default:
		hints = append(hints, "install Ghostscript (package ghostscript)")
	}

	if os.Getenv("DVISVGM_GHOSTSCRIPT") == "" && (command == "" || command == "gs") {
		hints = append(hints, "set DVISVGM_GHOSTSCRIPT or image.ghostscript to a custom binary")
	}

	return formatHints(hints)
}

// ForFontDirs returns hints when fonts cannot be located in dirs.
func ForFontDirs(dirs []string) string {
	if len(dirs) == 0 {
		return format("use --font-dir to point at your TeX font tree (e.g. /usr/share/texmf)")
	}
	var missing []string
	for _, d := range dirs {
		if !fileutil.DirExists(d) {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return format("font directories not found: " + strings.Join(missing, ", "))
	}
	return format("check that the directories contain tfm and pk files")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-dvisvg/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-dvisvg") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForPageRange returns a hint describing the page selection syntax.
func ForPageRange() string {
	return format("use page numbers and ranges such as 1,3-5 or 7-")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

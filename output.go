package dvisvg

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-dvisvg/internal/fileutil"
)

// OutputResolver maps page numbers to output sinks.
type OutputResolver interface {
	// PageWriter opens the sink of page out of total pages.
	PageWriter(page, total int) (io.WriteCloser, error)
	// Filename returns the file written for page, or "" for stdout.
	Filename(page, total int) string
}

var _ OutputResolver = (*FileOutput)(nil)

// FileOutput writes each page to a file named after a pattern:
//
//	%f  base name of the input file without extension
//	%p  page number
//	%P  page number padded with zeros to the width of the page count
//	%%  a literal percent sign
//
// An empty pattern or "-" writes to Stdout. Names without an extension
// get ".svg".
type FileOutput struct {
	Input   string
	Pattern string
	Stdout  io.Writer
}

// NewFileOutput creates a resolver for pages of input.
func NewFileOutput(input, pattern string) *FileOutput {
	return &FileOutput{Input: input, Pattern: pattern, Stdout: os.Stdout}
}

func (o *FileOutput) toStdout() bool { return o.Pattern == "" || o.Pattern == "-" }

func (o *FileOutput) Filename(page, total int) string {
	if o.toStdout() {
		return ""
	}
	name := expandPattern(o.Pattern, fileutil.BaseName(o.Input), page, total)
	if filepath.Ext(name) == "" {
		name += ".svg"
	}
	return name
}

func (o *FileOutput) PageWriter(page, total int) (io.WriteCloser, error) {
	if o.toStdout() {
		w := o.Stdout
		if w == nil {
			w = os.Stdout
		}
		return nopCloser{w}, nil
	}
	return fileutil.CreateFile(o.Filename(page, total))
}

func expandPattern(pattern, base string, page, total int) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch != '%' || i+1 == len(pattern) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch pattern[i] {
		case 'f':
			sb.WriteString(base)
		case 'p':
			sb.WriteString(strconv.Itoa(page))
		case 'P':
			width := len(strconv.Itoa(max(total, page)))
			num := strconv.Itoa(page)
			sb.WriteString(strings.Repeat("0", width-len(num)))
			sb.WriteString(num)
		case '%':
			sb.WriteByte('%')
		default:
			sb.WriteByte('%')
			sb.WriteByte(pattern[i])
		}
	}
	return sb.String()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

package dvisvg

import (
	"fmt"
	"io"

	"github.com/alnah/go-dvisvg/internal/geom"
	"github.com/alnah/go-dvisvg/internal/transform"
	"github.com/alnah/go-dvisvg/internal/xmltree"
)

const (
	svgNamespace = "http://www.w3.org/2000/svg"
	svgVersion   = "1.1"
	svgDTD       = "\"-//W3C//DTD SVG 1.1//EN\"\n  \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\""
)

// newRoot creates the <svg> element. Size attributes are written only
// for a usable box.
func newRoot(box geom.BoundingBox) *xmltree.Element {
	root := xmltree.NewElement("svg")
	if box.Usable() {
		root.AddNumberAttribute("width", box.Width())
		root.AddNumberAttribute("height", box.Height())
		root.AddAttribute("viewBox", box.ViewBox())
	}
	root.AddAttribute("version", svgVersion)
	root.AddAttribute("xmlns", svgNamespace)
	return root
}

func generatorComment(version string) *xmltree.Comment {
	return xmltree.NewComment(" This file was generated by dvisvgm " + version + " ")
}

// userMatrix evaluates the transformation commands against box. scale
// converts box lengths to TeX points.
func userMatrix(cmds string, box geom.BoundingBox, scale float64) (geom.Matrix, error) {
	m, err := transform.Parse(cmds, transform.Bindings(box, scale))
	if err != nil {
		return geom.Matrix{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return m, nil
}

// writeDocument serializes doc into w and closes it.
func writeDocument(doc *xmltree.Document, w io.WriteCloser) error {
	if err := doc.Write(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// displayName is the name used in reports for an output file.
func displayName(name string) string {
	if name == "" {
		return "<stdout>"
	}
	return name
}

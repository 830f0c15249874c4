package xmltree

import (
	"bufio"
	"io"
)

// xmlDeclaration starts every serialized document.
const xmlDeclaration = "<?xml version='1.0' encoding='UTF-8'?>\n"

// Document owns one root element and the top-level nodes (comments, a
// document type declaration) that precede it.
type Document struct {
	root  *Element
	nodes []Node
}

// NewDocument creates a document with the given root, which may be nil.
func NewDocument(root *Element) *Document {
	return &Document{root: root}
}

// Root returns the root element or nil.
func (d *Document) Root() *Element { return d.root }

// SetRoot replaces the root element.
func (d *Document) SetRoot(root *Element) { d.root = root }

// Append adds a top-level node. An element becomes the root if none is
// set yet; nil is ignored.
func (d *Document) Append(n Node) Node {
	if isNil(n) {
		return nil
	}
	if el, ok := n.(*Element); ok && d.root == nil {
		d.root = el
		return el
	}
	d.nodes = append(d.nodes, n)
	return n
}

// Nodes returns the top-level nodes written before the root.
// The returned slice must not be modified.
func (d *Document) Nodes() []Node { return d.nodes }

// Clear removes the root and all top-level nodes.
func (d *Document) Clear() {
	d.root = nil
	d.nodes = nil
}

// Write serializes the XML declaration, the top-level nodes and the root,
// each on its own line.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(xmlDeclaration)
	for _, n := range d.nodes {
		n.writeTo(bw)
		_ = bw.WriteByte('\n')
	}
	if d.root != nil {
		d.root.writeTo(bw)
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

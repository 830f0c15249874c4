// Package xmltree provides a small mutable XML tree used to assemble SVG
// documents, together with its serializer.
//
// The tree is strictly hierarchical: an Element owns its children and a
// Document owns its root and top-level nodes. Nodes returned from tree
// operations are handles into the tree; they stay valid as long as the node
// is attached and must not be attached to a second parent.
package xmltree

import (
	"bufio"
	"io"
)

// WriteNewlines controls whether the serializer inserts newlines between
// non-text children. Whitespace-only text is insignificant to SVG renderers,
// so disabling it only changes the layout of the output.
var WriteNewlines = true

// Node is one of *Element, *Text, *CData, *Comment or *DocType.
// The set of variants is closed.
type Node interface {
	// Write serializes the node and its descendants to w.
	Write(w io.Writer) error

	// Clone returns a deep, detached copy of the node.
	Clone() Node

	writeTo(w *bufio.Writer)
}

// Compile-time checks that every variant implements Node.
var (
	_ Node = (*Element)(nil)
	_ Node = (*Text)(nil)
	_ Node = (*CData)(nil)
	_ Node = (*Comment)(nil)
	_ Node = (*DocType)(nil)
)

// isNil reports whether n is nil or a nil pointer of one of the variants.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Element:
		return v == nil
	case *Text:
		return v == nil
	case *CData:
		return v == nil
	case *Comment:
		return v == nil
	case *DocType:
		return v == nil
	}
	return false
}

// write buffers n's serialization and reports the first write error.
func write(w io.Writer, n Node) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	n.writeTo(bw)
	return bw.Flush()
}

func isText(n Node) bool {
	_, ok := n.(*Text)
	return ok
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

// Text is character data. Its content is stored unescaped and escaped on
// serialization.
type Text struct {
	text string
}

// NewText creates a detached text node.
func NewText(s string) *Text {
	return &Text{text: s}
}

// Content returns the unescaped text.
func (t *Text) Content() string { return t.text }

// Append adds s to the end of the text.
func (t *Text) Append(s string) { t.text += s }

// Prepend adds s to the start of the text.
func (t *Text) Prepend(s string) { t.text = s + t.text }

func (t *Text) Write(w io.Writer) error { return write(w, t) }

func (t *Text) Clone() Node { return &Text{text: t.text} }

func (t *Text) writeTo(w *bufio.Writer) {
	_, _ = w.WriteString(EscapeText(t.text))
}

// ---------------------------------------------------------------------------
// CData
// ---------------------------------------------------------------------------

// CData is a CDATA section. An empty section serializes to nothing.
type CData struct {
	data string
}

// NewCData creates a detached CDATA section.
func NewCData(s string) *CData {
	return &CData{data: s}
}

// Content returns the raw section data.
func (c *CData) Content() string { return c.data }

// Append adds s to the section data.
func (c *CData) Append(s string) { c.data += s }

// Empty reports whether the section holds no data.
func (c *CData) Empty() bool { return c.data == "" }

func (c *CData) Write(w io.Writer) error { return write(w, c) }

func (c *CData) Clone() Node { return &CData{data: c.data} }

func (c *CData) writeTo(w *bufio.Writer) {
	if c.data == "" {
		return
	}
	_, _ = w.WriteString("<![CDATA[\n")
	_, _ = w.WriteString(c.data)
	_, _ = w.WriteString("]]>")
}

// ---------------------------------------------------------------------------
// Comment
// ---------------------------------------------------------------------------

// Comment is an XML comment <!--text-->.
type Comment struct {
	text string
}

// NewComment creates a detached comment. The text is written verbatim.
func NewComment(s string) *Comment {
	return &Comment{text: s}
}

// Content returns the comment text.
func (c *Comment) Content() string { return c.text }

func (c *Comment) Write(w io.Writer) error { return write(w, c) }

func (c *Comment) Clone() Node { return &Comment{text: c.text} }

func (c *Comment) writeTo(w *bufio.Writer) {
	_, _ = w.WriteString("<!--")
	_, _ = w.WriteString(c.text)
	_, _ = w.WriteString("-->")
}

// ---------------------------------------------------------------------------
// DocType
// ---------------------------------------------------------------------------

// DocType is a document type declaration, for example
// <!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://...">.
type DocType struct {
	name   string
	typ    string
	extern string
}

// NewDocType creates a declaration for root element name, declaration type
// typ (PUBLIC or SYSTEM) and the external identifier part, which is written
// verbatim.
func NewDocType(name, typ, extern string) *DocType {
	return &DocType{name: name, typ: typ, extern: extern}
}

func (d *DocType) Write(w io.Writer) error { return write(w, d) }

func (d *DocType) Clone() Node {
	c := *d
	return &c
}

func (d *DocType) writeTo(w *bufio.Writer) {
	_, _ = w.WriteString("<!DOCTYPE ")
	_, _ = w.WriteString(d.name)
	if d.typ != "" {
		_ = w.WriteByte(' ')
		_, _ = w.WriteString(d.typ)
	}
	if d.extern != "" {
		_ = w.WriteByte(' ')
		_, _ = w.WriteString(d.extern)
	}
	_ = w.WriteByte('>')
}

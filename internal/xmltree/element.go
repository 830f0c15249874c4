package xmltree

import (
	"bufio"
	"io"
)

// Attribute is a name/value pair of an element.
type Attribute struct {
	Name  string
	Value string
}

// Element is a named node with ordered attributes and owned children.
// Attribute names are unique. The child list never holds two adjacent
// Text nodes when built through Append and Prepend.
type Element struct {
	name     string
	attrs    []Attribute
	children []Node
}

// NewElement creates a detached element.
func NewElement(name string) *Element {
	return &Element{name: name}
}

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// AddAttribute sets attribute name to value. Re-adding an existing name
// overwrites its value in place, keeping the original position.
func (e *Element) AddAttribute(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attribute{Name: name, Value: value})
}

// AddNumberAttribute sets attribute name to v formatted with FormatNumber.
func (e *Element) AddNumberAttribute(name string, v float64) {
	e.AddAttribute(name, FormatNumber(v))
}

// Attribute returns the value of attribute name.
func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether attribute name is set.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attribute(name)
	return ok
}

// RemoveAttribute deletes attribute name if present.
func (e *Element) RemoveAttribute(name string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			return
		}
	}
}

// Attributes returns a copy of the attributes in insertion order.
func (e *Element) Attributes() []Attribute {
	out := make([]Attribute, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// Children returns the child nodes in document order.
// The returned slice must not be modified.
func (e *Element) Children() []Node { return e.children }

// FirstChild returns the first child or nil.
func (e *Element) FirstChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// LastChild returns the last child or nil.
func (e *Element) LastChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[len(e.children)-1]
}

// Empty reports whether the element has no children.
func (e *Element) Empty() bool { return len(e.children) == 0 }

// Clear removes all attributes and children.
func (e *Element) Clear() {
	e.attrs = nil
	e.children = nil
}

// Append adds child at the end and returns the resulting node. A Text child
// following a Text node is merged into it and the existing node is
// returned. A nil child, typed or not, is ignored and nil is returned.
func (e *Element) Append(child Node) Node {
	if isNil(child) {
		return nil
	}
	if t, ok := child.(*Text); ok {
		if last, ok := e.LastChild().(*Text); ok {
			last.Append(t.text)
			return last
		}
	}
	e.children = append(e.children, child)
	return child
}

// AppendText appends s as text, merging it into a trailing Text node.
func (e *Element) AppendText(s string) Node {
	return e.Append(NewText(s))
}

// AppendElement appends a new child element and returns it.
func (e *Element) AppendElement(name string) *Element {
	child := NewElement(name)
	e.children = append(e.children, child)
	return child
}

// Prepend adds child at the front and returns the resulting node. A Text
// child preceding a leading Text node is merged into it and the existing
// first child is returned. A nil child, typed or not, is ignored and nil
// is returned.
func (e *Element) Prepend(child Node) Node {
	if isNil(child) {
		return nil
	}
	if t, ok := child.(*Text); ok {
		if first, ok := e.FirstChild().(*Text); ok {
			first.Prepend(t.text)
			return first
		}
	}
	e.children = append(e.children, nil)
	copy(e.children[1:], e.children)
	e.children[0] = child
	return child
}

// InsertBefore inserts child directly before sibling. It reports false and
// inserts nothing if sibling is not a direct child. Text is never merged.
func (e *Element) InsertBefore(child, sibling Node) bool {
	i := e.indexOf(sibling)
	if i < 0 || isNil(child) {
		return false
	}
	e.insertAt(i, child)
	return true
}

// InsertAfter inserts child directly after sibling. It reports false and
// inserts nothing if sibling is not a direct child. Text is never merged.
func (e *Element) InsertAfter(child, sibling Node) bool {
	i := e.indexOf(sibling)
	if i < 0 || isNil(child) {
		return false
	}
	e.insertAt(i+1, child)
	return true
}

// Remove detaches the direct child by identity. Unknown nodes are ignored.
func (e *Element) Remove(child Node) {
	if i := e.indexOf(child); i >= 0 {
		e.children = append(e.children[:i], e.children[i+1:]...)
	}
}

func (e *Element) indexOf(n Node) int {
	if isNil(n) {
		return -1
	}
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (e *Element) insertAt(i int, n Node) {
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = n
}

// Descendants returns all descendant elements in depth-first pre-order
// whose name equals name and which carry attribute attrName. An empty
// name or attrName matches any element.
func (e *Element) Descendants(name, attrName string) []*Element {
	var out []*Element
	e.collect(name, attrName, &out)
	return out
}

func (e *Element) collect(name, attrName string, out *[]*Element) {
	for _, c := range e.children {
		el, ok := c.(*Element)
		if !ok {
			continue
		}
		if (name == "" || el.name == name) && (attrName == "" || el.HasAttribute(attrName)) {
			*out = append(*out, el)
		}
		el.collect(name, attrName, out)
	}
}

// FirstDescendant returns the first matching descendant in depth-first
// pre-order, or nil. Empty name and attrName act as wildcards; a non-empty
// attrValue requires attrName to have exactly that value.
func (e *Element) FirstDescendant(name, attrName, attrValue string) *Element {
	for _, c := range e.children {
		el, ok := c.(*Element)
		if !ok {
			continue
		}
		if name == "" || el.name == name {
			if attrName == "" {
				return el
			}
			if v, ok := el.Attribute(attrName); ok && (attrValue == "" || v == attrValue) {
				return el
			}
		}
		if d := el.FirstDescendant(name, attrName, attrValue); d != nil {
			return d
		}
	}
	return nil
}

// Clone returns a deep copy of the element and its subtree.
func (e *Element) Clone() Node {
	c := &Element{name: e.name, attrs: e.Attributes()}
	if len(e.children) > 0 {
		c.children = make([]Node, len(e.children))
		for i, child := range e.children {
			c.children[i] = child.Clone()
		}
	}
	return c
}

func (e *Element) Write(w io.Writer) error { return write(w, e) }

func (e *Element) writeTo(w *bufio.Writer) {
	_ = w.WriteByte('<')
	_, _ = w.WriteString(e.name)
	for _, a := range e.attrs {
		_ = w.WriteByte(' ')
		_, _ = w.WriteString(a.Name)
		_, _ = w.WriteString("='")
		_, _ = w.WriteString(EscapeAttribute(a.Value))
		_ = w.WriteByte('\'')
	}
	children := e.written()
	if len(children) == 0 {
		_, _ = w.WriteString("/>")
		return
	}
	_ = w.WriteByte('>')
	if WriteNewlines && !isText(children[0]) {
		_ = w.WriteByte('\n')
	}
	for i, c := range children {
		c.writeTo(w)
		if isText(c) {
			continue
		}
		if WriteNewlines && (i+1 == len(children) || !isText(children[i+1])) {
			_ = w.WriteByte('\n')
		}
	}
	_, _ = w.WriteString("</")
	_, _ = w.WriteString(e.name)
	_ = w.WriteByte('>')
}

// written returns the children that produce output. Empty CDATA sections
// are skipped so they leave no trace in the serialization.
func (e *Element) written() []Node {
	skip := 0
	for _, c := range e.children {
		if cd, ok := c.(*CData); ok && cd.Empty() {
			skip++
		}
	}
	if skip == 0 {
		return e.children
	}
	out := make([]Node, 0, len(e.children)-skip)
	for _, c := range e.children {
		if cd, ok := c.(*CData); ok && cd.Empty() {
			continue
		}
		out = append(out, c)
	}
	return out
}

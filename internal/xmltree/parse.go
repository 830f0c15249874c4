package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// ErrMalformed indicates XML input that cannot be turned into a tree.
var ErrMalformed = errors.New("malformed XML")

// ParseFragment reads a sequence of XML nodes, such as the payload of a raw
// SVG special, and returns the top-level nodes. Namespace prefixes are kept
// as written. Processing instructions and directives are dropped.
func ParseFragment(r io.Reader) ([]Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	var (
		top   []Node
		stack []*Element
	)
	add := func(n Node) {
		if len(stack) == 0 {
			if t, ok := n.(*Text); ok && len(top) > 0 {
				if last, ok := top[len(top)-1].(*Text); ok {
					last.Append(t.text)
					return
				}
			}
			top = append(top, n)
			return
		}
		stack[len(stack)-1].Append(n)
	}

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := NewElement(qualified(t.Name))
			for _, a := range t.Attr {
				el.AddAttribute(qualified(a.Name), a.Value)
			}
			add(el)
			stack = append(stack, el)
		case xml.EndElement:
			name := qualified(t.Name)
			if len(stack) == 0 || stack[len(stack)-1].name != name {
				return nil, fmt.Errorf("%w: unexpected end tag </%s>", ErrMalformed, name)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			add(NewText(string(t)))
		case xml.Comment:
			add(NewComment(string(t)))
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: unclosed element <%s>", ErrMalformed, stack[len(stack)-1].name)
	}
	return top, nil
}

// Parse reads a document and returns its root element. Text and comments
// outside the root are discarded.
func Parse(r io.Reader) (*Element, error) {
	nodes, err := ParseFragment(r)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if el, ok := n.(*Element); ok {
			return el, nil
		}
	}
	return nil, fmt.Errorf("%w: no root element", ErrMalformed)
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

package xmltree

// Notes:
// - Serialization tests toggle WriteNewlines only through render(), which
//   always writes with newlines enabled; the flag itself is covered in
//   TestWriteNewlinesDisabled, which is not parallel because the flag is
//   package-level.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, n Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, n.Write(&buf))
	return buf.String()
}

func textContents(e *Element) string {
	var sb strings.Builder
	for _, c := range e.Children() {
		if txt, ok := c.(*Text); ok {
			sb.WriteString(txt.Content())
		}
	}
	return sb.String()
}

func assertNoAdjacentText(t *testing.T, e *Element) {
	t.Helper()
	children := e.Children()
	for i := 1; i < len(children); i++ {
		if isText(children[i-1]) && isText(children[i]) {
			t.Fatalf("adjacent text nodes at %d and %d", i-1, i)
		}
	}
}

// ---------------------------------------------------------------------------
// TestAddAttribute - Upsert semantics
// ---------------------------------------------------------------------------

func TestAddAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(e *Element)
		want  []Attribute
	}{
		{
			name: "new names keep insertion order",
			setup: func(e *Element) {
				e.AddAttribute("x", "1")
				e.AddAttribute("y", "2")
			},
			want: []Attribute{{"x", "1"}, {"y", "2"}},
		},
		{
			name: "re-adding overwrites at original position",
			setup: func(e *Element) {
				e.AddAttribute("a", "1")
				e.AddAttribute("b", "2")
				e.AddAttribute("a", "3")
			},
			want: []Attribute{{"a", "3"}, {"b", "2"}},
		},
		{
			name: "number values are fixed-point",
			setup: func(e *Element) {
				e.AddNumberAttribute("w", 0.0000001)
				e.AddNumberAttribute("h", 1e9)
				e.AddNumberAttribute("d", 2.5)
			},
			want: []Attribute{{"w", "0"}, {"h", "1000000000"}, {"d", "2.5"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewElement("e")
			tt.setup(e)
			assert.Equal(t, tt.want, e.Attributes())
		})
	}
}

func TestAddAttribute_SerializedPosition(t *testing.T) {
	t.Parallel()

	e := NewElement("rect")
	e.AddAttribute("x", "1")
	e.AddAttribute("y", "2")
	e.AddAttribute("x", "5")
	assert.Equal(t, "<rect x='5' y='2'/>", render(t, e))
}

func TestRemoveAttribute(t *testing.T) {
	t.Parallel()

	e := NewElement("e")
	e.AddAttribute("a", "1")
	e.AddAttribute("b", "2")
	e.RemoveAttribute("a")
	e.RemoveAttribute("missing")
	assert.False(t, e.HasAttribute("a"))
	assert.Equal(t, []Attribute{{"b", "2"}}, e.Attributes())
}

// ---------------------------------------------------------------------------
// TestAppend / TestPrepend - Text merging
// ---------------------------------------------------------------------------

func TestAppend_MergesText(t *testing.T) {
	t.Parallel()

	e := NewElement("text")
	first := e.AppendText("ab")
	second := e.Append(NewText("cd"))
	assert.Same(t, first, second)
	require.Len(t, e.Children(), 1)
	assert.Equal(t, "abcd", textContents(e))
}

func TestAppend_NonTextNeverMerges(t *testing.T) {
	t.Parallel()

	e := NewElement("g")
	e.AppendText("a")
	c := NewComment("c")
	got := e.Append(c)
	assert.Same(t, c, got)
	e.AppendText("b")
	assert.Len(t, e.Children(), 3)
}

func TestAppend_Nil(t *testing.T) {
	t.Parallel()

	e := NewElement("g")
	assert.Nil(t, e.Append(nil))
	assert.Nil(t, e.Prepend(nil))
	assert.True(t, e.Empty())
}

func TestAppend_TypedNil(t *testing.T) {
	t.Parallel()

	e := NewElement("text")
	e.AppendText("a")
	for _, n := range []Node{(*Text)(nil), (*Element)(nil), (*CData)(nil), (*Comment)(nil), (*DocType)(nil)} {
		assert.Nil(t, e.Append(n))
		assert.Nil(t, e.Prepend(n))
		assert.False(t, e.InsertBefore(n, e.FirstChild()))
		assert.False(t, e.InsertAfter(n, e.FirstChild()))
	}
	require.Len(t, e.Children(), 1)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf))
	assert.Equal(t, "<text>a</text>", buf.String())

	d := NewDocument(nil)
	assert.Nil(t, d.Append((*Element)(nil)))
	assert.Nil(t, d.Root())
}

func TestPrepend_MergesIntoFirstText(t *testing.T) {
	t.Parallel()

	e := NewElement("text")
	existing := e.AppendText("world")
	incoming := NewText("hello ")
	got := e.Prepend(incoming)
	assert.Same(t, existing, got)
	assert.NotSame(t, incoming, got)
	assert.Equal(t, "hello world", textContents(e))
}

func TestPrepend_InsertsAtFront(t *testing.T) {
	t.Parallel()

	e := NewElement("g")
	tail := e.AppendElement("b")
	head := NewElement("a")
	assert.Same(t, head, e.Prepend(head))
	assert.Equal(t, []Node{head, tail}, e.Children())
}

func TestTextSequences_NeverAdjacent(t *testing.T) {
	t.Parallel()

	type step struct {
		prepend bool
		text    string
		node    Node
	}
	tests := []struct {
		name  string
		steps []step
		want  string
	}{
		{
			name:  "appends only",
			steps: []step{{text: "a"}, {text: "b"}, {text: "c"}},
			want:  "abc",
		},
		{
			name:  "appends around element",
			steps: []step{{text: "a"}, {node: NewElement("x")}, {text: "b"}, {text: "c"}},
			want:  "abc",
		},
		{
			name:  "prepend then append",
			steps: []step{{text: "b"}, {prepend: true, text: "a"}, {text: "c"}},
			want:  "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewElement("t")
			for _, s := range tt.steps {
				n := s.node
				if n == nil {
					n = NewText(s.text)
				}
				if s.prepend {
					e.Prepend(n)
				} else {
					e.Append(n)
				}
				assertNoAdjacentText(t, e)
			}
			assert.Equal(t, tt.want, textContents(e))
		})
	}
}

// ---------------------------------------------------------------------------
// TestInsert / TestRemove - Identity-based positioning
// ---------------------------------------------------------------------------

func TestInsertBeforeAfter(t *testing.T) {
	t.Parallel()

	e := NewElement("g")
	mid := e.AppendElement("mid")
	before := NewElement("before")
	after := NewElement("after")

	require.True(t, e.InsertBefore(before, mid))
	require.True(t, e.InsertAfter(after, mid))
	assert.Equal(t, []Node{before, mid, after}, e.Children())

	stranger := NewElement("stranger")
	assert.False(t, e.InsertBefore(NewElement("x"), stranger))
	assert.False(t, e.InsertAfter(NewElement("x"), stranger))
	assert.Len(t, e.Children(), 3)
}

func TestInsertBefore_DoesNotMergeText(t *testing.T) {
	t.Parallel()

	e := NewElement("t")
	txt := e.AppendText("a")
	require.True(t, e.InsertBefore(NewText("b"), txt))
	assert.Len(t, e.Children(), 2)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	e := NewElement("g")
	a := e.AppendElement("a")
	b := e.AppendElement("b")
	e.Remove(NewElement("a"))
	assert.Len(t, e.Children(), 2)
	e.Remove(a)
	assert.Equal(t, []Node{b}, e.Children())
}

// ---------------------------------------------------------------------------
// TestDescendants - Pre-order search
// ---------------------------------------------------------------------------

func buildSearchTree() (*Element, map[string]*Element) {
	root := NewElement("svg")
	g1 := root.AppendElement("g")
	g1.AddAttribute("id", "g1")
	p1 := g1.AppendElement("path")
	p1.AddAttribute("id", "p1")
	g2 := g1.AppendElement("g")
	p2 := g2.AppendElement("path")
	p2.AddAttribute("d", "M0 0")
	p3 := root.AppendElement("path")
	p3.AddAttribute("id", "p3")
	return root, map[string]*Element{"g1": g1, "p1": p1, "g2": g2, "p2": p2, "p3": p3}
}

func TestDescendants(t *testing.T) {
	t.Parallel()

	root, n := buildSearchTree()
	tests := []struct {
		name     string
		elemName string
		attrName string
		want     []*Element
	}{
		{"all elements", "", "", []*Element{n["g1"], n["p1"], n["g2"], n["p2"], n["p3"]}},
		{"by name", "path", "", []*Element{n["p1"], n["p2"], n["p3"]}},
		{"by attribute", "", "id", []*Element{n["g1"], n["p1"], n["p3"]}},
		{"by name and attribute", "path", "id", []*Element{n["p1"], n["p3"]}},
		{"no match", "circle", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, root.Descendants(tt.elemName, tt.attrName))
		})
	}
}

func TestFirstDescendant(t *testing.T) {
	t.Parallel()

	root, n := buildSearchTree()
	assert.Same(t, n["g1"], root.FirstDescendant("", "", ""))
	assert.Same(t, n["p1"], root.FirstDescendant("path", "", ""))
	assert.Same(t, n["p2"], root.FirstDescendant("path", "d", ""))
	assert.Same(t, n["p3"], root.FirstDescendant("path", "id", "p3"))
	assert.Nil(t, root.FirstDescendant("path", "id", "nope"))
}

// ---------------------------------------------------------------------------
// TestWrite - Serialization rules
// ---------------------------------------------------------------------------

func TestWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func() *Element
		want  string
	}{
		{
			name:  "childless element self-closes",
			build: func() *Element { return NewElement("g") },
			want:  "<g/>",
		},
		{
			name: "element children get newlines",
			build: func() *Element {
				e := NewElement("svg")
				e.AppendElement("g")
				e.AppendElement("defs")
				return e
			},
			want: "<svg>\n<g/>\n<defs/>\n</svg>",
		},
		{
			name: "leading text suppresses opening newline",
			build: func() *Element {
				e := NewElement("text")
				e.AppendText("a<b")
				return e
			},
			want: "<text>a&lt;b</text>",
		},
		{
			name: "no newline before text sibling",
			build: func() *Element {
				e := NewElement("p")
				e.AppendElement("b")
				e.AppendText("x")
				return e
			},
			want: "<p>\n<b/>x</p>",
		},
		{
			name: "attribute values are escaped",
			build: func() *Element {
				e := NewElement("a")
				e.AddAttribute("t", "it's <&>")
				return e
			},
			want: "<a t='it&apos;s &lt;&amp;&gt;'/>",
		},
		{
			name: "cdata and comment",
			build: func() *Element {
				e := NewElement("style")
				e.Append(NewCData("x{}\n"))
				return e
			},
			want: "<style>\n<![CDATA[\nx{}\n]]>\n</style>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, render(t, tt.build()))
		})
	}
}

func TestWrite_EmptyCDataIsInvisible(t *testing.T) {
	t.Parallel()

	e := NewElement("style")
	e.AddAttribute("type", "text/css")
	before := render(t, e)
	e.Append(NewCData(""))
	assert.Equal(t, before, render(t, e))
	assert.Equal(t, "<style type='text/css'/>", before)
}

func TestWriteNewlinesDisabled(t *testing.T) {
	WriteNewlines = false
	defer func() { WriteNewlines = true }()

	e := NewElement("svg")
	e.AppendElement("g")
	e.AppendElement("defs")
	assert.Equal(t, "<svg><g/><defs/></svg>", render(t, e))
}

// ---------------------------------------------------------------------------
// TestClone - Deep copies
// ---------------------------------------------------------------------------

func TestClone(t *testing.T) {
	t.Parallel()

	e := NewElement("g")
	e.AddAttribute("id", "a")
	child := e.AppendElement("path")
	e.AppendText("t")

	c, ok := e.Clone().(*Element)
	require.True(t, ok)
	assert.Equal(t, render(t, e), render(t, c))

	child.AddAttribute("d", "M0 0")
	c.AddAttribute("id", "b")
	v, _ := e.Attribute("id")
	assert.Equal(t, "a", v)
	assert.False(t, c.Children()[0].(*Element).HasAttribute("d"))
}

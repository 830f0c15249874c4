package dvi

// Notes:
// - DVI files are assembled in memory by dviBuilder with the standard
//   TeX scale (num/den giving scaled points), so 65536 units are 1pt.
// - Virtual fonts are not executed; all fonts come from the FontLoader.

import (
	"bytes"
	"encoding/binary"
	"errors"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-dvisvg/internal/font"
)

const sp = 65536 // DVI units per point with the standard scale

type dviBuilder struct {
	buf   bytes.Buffer
	pages []int
}

func (b *dviBuilder) op(v ...byte) *dviBuilder { b.buf.Write(v); return b }

func (b *dviBuilder) u32(v uint32) *dviBuilder {
	_ = binary.Write(&b.buf, binary.BigEndian, v)
	return b
}

func (b *dviBuilder) i32(v int32) *dviBuilder { return b.u32(uint32(v)) }

func (b *dviBuilder) pre() *dviBuilder {
	b.op(opPre, dviID).u32(25400000).u32(473628672).u32(1000)
	return b.op(3, 'T', 'e', 'X')
}

func (b *dviBuilder) bop(count0 int32) *dviBuilder {
	prev := int32(-1)
	if len(b.pages) > 0 {
		prev = int32(b.pages[len(b.pages)-1])
	}
	b.pages = append(b.pages, b.buf.Len())
	b.op(opBOP).i32(count0)
	for i := 1; i < 10; i++ {
		b.i32(0)
	}
	return b.i32(prev)
}

func (b *dviBuilder) fntDef(num byte, name string) *dviBuilder {
	b.op(opFntDef1, num).u32(0).u32(10 * sp).u32(10 * sp)
	return b.op(0, byte(len(name))).op([]byte(name)...)
}

func (b *dviBuilder) post(width, height int32) []byte {
	q := b.buf.Len()
	b.op(opPost).i32(int32(b.pages[len(b.pages)-1])).u32(25400000).u32(473628672).u32(1000)
	b.i32(height).i32(width).op(0, 2).op(0, byte(len(b.pages)))
	b.fntDef(0, "cmr10")
	b.op(opPostPost).u32(uint32(q)).op(dviID, trailer, trailer, trailer, trailer)
	return b.buf.Bytes()
}

// sampleDVI has two pages. Page 1 sets 'A', moves right 10pt, draws a
// 2pt by 3pt rule, emits a special 5pt lower and puts 'B'. Page 2 is empty.
func sampleDVI() []byte {
	b := &dviBuilder{}
	b.pre()
	b.bop(1).fntDef(0, "cmr10").op(opFntNum0, 'A')
	b.op(opRight1+2, 0x0A, 0x00, 0x00)
	b.op(opSetRule).i32(2 * sp).i32(3 * sp)
	b.op(opPush, opDown1+3).i32(5 * sp)
	b.op(opXXX1, 5).op([]byte("hello")...)
	b.op(opPop, opPut1, 'B', opEOP)
	b.bop(2).op(opNop, opEOP)
	return b.post(50*sp, 100*sp)
}

// tfmA builds metrics with one character 'A' of half the design size.
func tfmA(t *testing.T) *font.TFM {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []uint16{13, 2, 65, 65, 2, 1, 1, 0, 0, 0, 0, 0} {
		_ = binary.Write(&buf, binary.BigEndian, v)
	}
	for _, w := range []uint32{0, 10 << 20, 0x01000000, 0, 1 << 19, 0, 0} {
		_ = binary.Write(&buf, binary.BigEndian, w)
	}
	tfm, err := font.ParseTFM(&buf)
	require.NoError(t, err)
	return tfm
}

type fakeLoader struct {
	tfm   *font.TFM
	calls []string
	err   error
}

func (l *fakeLoader) Load(name string, scaled, design float64, _ uint32) (*font.PhysicalFont, error) {
	l.calls = append(l.calls, name)
	if l.err != nil {
		return nil, l.err
	}
	return font.NewPhysicalFont(name, scaled, l.tfm, font.Source{}), nil
}

type event struct {
	kind string
	x, y float64
	arg  any
}

type recorder struct {
	events []event
}

func (r *recorder) SetChar(x, y float64, c int, f font.Font) {
	r.events = append(r.events, event{"char", x, y, c})
}

func (r *recorder) SetRule(x, y, h, w float64) {
	r.events = append(r.events, event{"rule", x, y, [2]float64{h, w}})
}

func (r *recorder) Special(s string, x, y float64) {
	r.events = append(r.events, event{"special", x, y, s})
}

func (r *recorder) BeginPage(n int, c [10]int32) {
	r.events = append(r.events, event{"bop", 0, 0, [2]int{n, int(c[0])}})
}

func (r *recorder) EndPage() { r.events = append(r.events, event{kind: "eop"}) }

// ----------------------------------------------------------------------------
// Reader
// ----------------------------------------------------------------------------

func TestReaderPostamble(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{tfm: tfmA(t)}
	r, err := NewReader(bytes.NewReader(sampleDVI()), loader, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "TeX", r.Comment())
	assert.Equal(t, uint32(1000), r.Magnification())

	require.NoError(t, r.ExecutePostamble())
	require.NoError(t, r.ExecutePostamble())

	assert.Equal(t, 2, r.TotalPages())
	assert.InDelta(t, 50, r.PageWidth(), 1e-9)
	assert.InDelta(t, 100, r.PageHeight(), 1e-9)
	assert.Equal(t, []string{"cmr10"}, loader.calls)

	f, ok := r.FontManager().Font(0)
	require.True(t, ok)
	assert.InDelta(t, 10, f.ScaledSize(), 1e-9)
	assert.Equal(t, 0, r.FontManager().ID(f))
}

func TestReaderExecutePage(t *testing.T) {
	t.Parallel()

	r, err := NewReader(bytes.NewReader(sampleDVI()), &fakeLoader{tfm: tfmA(t)}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.ExecutePostamble())

	rec := &recorder{}
	drawn, err := r.ExecutePage(2, rec)
	require.NoError(t, err)
	assert.False(t, drawn)
	assert.Equal(t, []event{{"bop", 0, 0, [2]int{2, 2}}, {kind: "eop"}}, rec.events)

	rec = &recorder{}
	drawn, err = r.ExecutePage(1, rec)
	require.NoError(t, err)
	assert.True(t, drawn)
	require.Len(t, rec.events, 6)

	want := []event{
		{"bop", 0, 0, [2]int{1, 1}},
		{"char", 0, 0, 65},
		{"rule", 15, 0, [2]float64{2, 3}},
		{"special", 18, 5, "hello"},
		{"char", 18, 0, 66},
		{kind: "eop"},
	}
	for i, w := range want {
		got := rec.events[i]
		assert.Equal(t, w.kind, got.kind, "event %d", i)
		assert.InDelta(t, w.x, got.x, 1e-9, "event %d x", i)
		assert.InDelta(t, w.y, got.y, 1e-9, "event %d y", i)
		if rule, ok := w.arg.([2]float64); ok {
			gotRule := got.arg.([2]float64)
			assert.InDelta(t, rule[0], gotRule[0], 1e-9)
			assert.InDelta(t, rule[1], gotRule[1], 1e-9)
		} else {
			assert.Equal(t, w.arg, got.arg, "event %d", i)
		}
	}
}

func TestReaderExecutePageReadsPostambleLazily(t *testing.T) {
	t.Parallel()

	r, err := NewReader(bytes.NewReader(sampleDVI()), nil, zerolog.Nop())
	require.NoError(t, err)

	drawn, err := r.ExecutePage(1, &recorder{})
	require.NoError(t, err)
	assert.True(t, drawn)
	assert.Equal(t, 2, r.TotalPages())
}

func TestReaderFontLoadFailureKeepsGoing(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{err: font.ErrFontNotFound}
	r, err := NewReader(bytes.NewReader(sampleDVI()), loader, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.ExecutePostamble())

	f, ok := r.FontManager().Font(0)
	require.True(t, ok)
	assert.Equal(t, "cmr10", f.Name())
	assert.Equal(t, 0.0, f.CharWidth('A'))
}

func TestExecutePageOutOfRange(t *testing.T) {
	t.Parallel()

	r, err := NewReader(bytes.NewReader(sampleDVI()), nil, zerolog.Nop())
	require.NoError(t, err)
	for _, n := range []int{0, 3} {
		_, err := r.ExecutePage(n, &recorder{})
		assert.ErrorIs(t, err, ErrNoPage)
	}
}

func TestReaderInvalidInput(t *testing.T) {
	t.Parallel()

	valid := sampleDVI()
	noTrailer := valid[:len(valid)-4]
	brokenChain := append([]byte(nil), valid...)
	b := &dviBuilder{}
	b.pre()
	pageStart := b.buf.Len()
	brokenChain[pageStart] = opNop

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not dvi", []byte("hello world")},
		{"zero scale", append([]byte{opPre, dviID}, make([]byte, 13)...)},
		{"truncated trailer", noTrailer},
		{"broken page chain", brokenChain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := NewReader(bytes.NewReader(tt.data), nil, zerolog.Nop())
			if err == nil {
				err = r.ExecutePostamble()
			}
			assert.True(t, errors.Is(err, ErrInvalidDVI), "got %v", err)
		})
	}
}

func TestExecutePageBadContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body []byte
	}{
		{"undefined font", []byte{opFntNum0 + 5, 'A', opEOP}},
		{"pop on empty stack", []byte{opPop, opEOP}},
		{"unbalanced push", []byte{opPush, opEOP}},
		{"bop inside page", []byte{opBOP}},
		{"missing eop", []byte{opNop}},
		{"special longer than file", []byte{opXXX1 + 3, 0x60, 0, 0, 0, 'x', opEOP}},
		{"special length past 2GiB", []byte{opXXX1 + 3, 0xFF, 0xFF, 0xFF, 0xF0, opEOP}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := &dviBuilder{}
			b.pre()
			b.bop(1).op(tt.body...)
			data := b.post(sp, sp)
			r, err := NewReader(bytes.NewReader(data), nil, zerolog.Nop())
			require.NoError(t, err)
			_, err = r.ExecutePage(1, &recorder{})
			assert.ErrorIs(t, err, ErrInvalidDVI)
		})
	}
}

// Not parallel: the allocation counter is process wide.
func TestExecutePageTruncatedSpecialDoesNotAllocate(t *testing.T) {
	b := &dviBuilder{}
	b.pre()
	b.bop(1).op(opXXX1+3, 0x60, 0, 0, 0, 'x')
	r, err := NewReader(bytes.NewReader(b.post(sp, sp)), nil, zerolog.Nop())
	require.NoError(t, err)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = r.ExecutePage(1, &recorder{})
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, ErrInvalidDVI)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}

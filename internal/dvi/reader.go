// Package dvi interprets TeX DVI files. Pages are executed one at a time
// against an Actions handler supplied by the caller, so the same page can
// be run once to measure it and once to render it.
package dvi

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/alnah/go-dvisvg/internal/font"
)

// Sentinel errors.
var (
	ErrInvalidDVI = errors.New("invalid DVI file")
	ErrNoPage     = errors.New("page does not exist")
)

// maxDVISize bounds the bytes read from a DVI file.
const maxDVISize = 256 << 20

// DVI opcodes.
const (
	opSet1     = 128
	opSetRule  = 132
	opPut1     = 133
	opPutRule  = 137
	opNop      = 138
	opBOP      = 139
	opEOP      = 140
	opPush     = 141
	opPop      = 142
	opRight1   = 143
	opW0       = 147
	opW1       = 148
	opX0       = 152
	opX1       = 153
	opDown1    = 157
	opY0       = 161
	opY1       = 162
	opZ0       = 166
	opZ1       = 167
	opFntNum0  = 171
	opFnt1     = 235
	opXXX1     = 239
	opFntDef1  = 243
	opPre      = 247
	opPost     = 248
	opPostPost = 249

	dviID    = 2
	trailer  = 223
	bopBytes = 1 + 10*4 + 4
)

// Actions receives the drawing operations of a page. Lengths are TeX
// points; y grows downward.
type Actions interface {
	SetChar(x, y float64, c int, f font.Font)
	SetRule(x, y, height, width float64)
	Special(s string, x, y float64)
	BeginPage(n int, c [10]int32)
	EndPage()
}

// Interpreter is the view of a DVI document the converter works with.
type Interpreter interface {
	ExecutePostamble() error
	TotalPages() int
	PageWidth() float64
	PageHeight() float64
	ExecutePage(n int, a Actions) (bool, error)
	FontManager() *font.Manager
}

// FontLoader creates the fonts named in font definitions.
type FontLoader interface {
	Load(name string, scaledSize, designSize float64, checksum uint32) (*font.PhysicalFont, error)
}

var (
	_ Interpreter = (*Reader)(nil)
	_ FontLoader  = (*font.Loader)(nil)
)

// Reader interprets a DVI file held in memory.
type Reader struct {
	data   []byte
	loader FontLoader
	logger zerolog.Logger

	conv     float64 // TeX points per DVI unit, including magnification
	mag      uint32
	comment  string
	width    float64
	height   float64
	pages    []int // offsets of the bop commands in page order
	fonts    map[uint32]font.Font
	manager  *font.Manager
	postRead bool
}

// NewReader reads a DVI file from r. loader may be nil, in which case all
// fonts are created without metrics.
func NewReader(r io.Reader, loader FontLoader, logger zerolog.Logger) (*Reader, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDVISize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDVI, err)
	}
	d := &Reader{
		data:    data,
		loader:  loader,
		logger:  logger,
		fonts:   make(map[uint32]font.Font),
		manager: font.NewManager(),
	}
	if err := d.readPreamble(); err != nil {
		return nil, err
	}
	return d, nil
}

// Comment returns the preamble comment.
func (d *Reader) Comment() string { return d.comment }

// Magnification returns the magnification factor times 1000.
func (d *Reader) Magnification() uint32 { return d.mag }

// TotalPages returns the page count; valid after ExecutePostamble.
func (d *Reader) TotalPages() int { return len(d.pages) }

// PageWidth returns the width of the widest page in TeX points.
func (d *Reader) PageWidth() float64 { return d.width }

// PageHeight returns the height plus depth of the tallest page.
func (d *Reader) PageHeight() float64 { return d.height }

// FontManager returns the fonts defined so far.
func (d *Reader) FontManager() *font.Manager { return d.manager }

func (d *Reader) readPreamble() error {
	c := &cursor{data: d.data}
	if c.u(1) != opPre || c.u(1) != dviID {
		return fmt.Errorf("%w: missing preamble", ErrInvalidDVI)
	}
	num, den, mag := c.u(4), c.u(4), c.u(4)
	d.comment = string(c.bytes(int(c.u(1))))
	if c.err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDVI, c.err)
	}
	if num == 0 || den == 0 || mag == 0 {
		return fmt.Errorf("%w: zero scale factor", ErrInvalidDVI)
	}
	d.mag = mag
	// DVI units are num/den 10^-7 m; 1 in = 0.0254 m = 72.27 pt.
	d.conv = float64(num) / float64(den) * 72.27 / 254000 * float64(mag) / 1000
	return nil
}

// ExecutePostamble reads the postamble: page size, font definitions and
// the chain of page offsets.
func (d *Reader) ExecutePostamble() error {
	if d.postRead {
		return nil
	}
	end := len(d.data) - 1
	for end >= 0 && d.data[end] == trailer {
		end--
	}
	if len(d.data)-1-end < 4 || end < 5 || d.data[end] != dviID {
		return fmt.Errorf("%w: bad trailer", ErrInvalidDVI)
	}
	c := &cursor{data: d.data, pos: end - 5}
	if c.u(1) != opPostPost {
		return fmt.Errorf("%w: missing post_post", ErrInvalidDVI)
	}
	c.pos = int(c.u(4))
	if c.u(1) != opPost {
		return fmt.Errorf("%w: missing postamble", ErrInvalidDVI)
	}
	lastBOP := int(int32(c.u(4)))
	c.skip(12) // num, den, mag repeat the preamble
	d.height = float64(c.s(4)) * d.conv
	d.width = float64(c.s(4)) * d.conv
	c.skip(2) // stack depth
	total := int(c.u(2))
	if c.err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDVI, c.err)
	}

	for {
		op := c.u(1)
		if c.err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDVI, c.err)
		}
		if op == opNop {
			continue
		}
		if op >= opFntDef1 && op < opFntDef1+4 {
			if err := d.defineFont(c, int(op-opFntDef1+1)); err != nil {
				return err
			}
			continue
		}
		if op == opPostPost {
			break
		}
		return fmt.Errorf("%w: unexpected opcode %d in postamble", ErrInvalidDVI, op)
	}

	pages := make([]int, 0, total)
	for off := lastBOP; off >= 0; {
		if off+bopBytes > len(d.data) || d.data[off] != opBOP || len(pages) > len(d.data)/bopBytes {
			return fmt.Errorf("%w: broken page chain", ErrInvalidDVI)
		}
		pages = append(pages, off)
		bc := &cursor{data: d.data, pos: off + 1 + 40}
		off = int(int32(bc.u(4)))
	}
	for i, j := 0, len(pages)-1; i < j; i, j = i+1, j-1 {
		pages[i], pages[j] = pages[j], pages[i]
	}
	if len(pages) != total {
		d.logger.Warn().Int("declared", total).Int("found", len(pages)).Msg("page count mismatch")
	}
	d.pages = pages
	d.postRead = true
	return nil
}

// defineFont reads a fnt_def body. Fonts already defined under the same
// number are kept.
func (d *Reader) defineFont(c *cursor, size int) error {
	num := c.u(size)
	checksum := c.u(4)
	scaled := float64(c.u(4)) * d.conv
	design := float64(c.u(4)) * d.conv
	a, l := int(c.u(1)), int(c.u(1))
	area := c.bytes(a + l)
	if c.err != nil {
		return fmt.Errorf("%w: font definition: %v", ErrInvalidDVI, c.err)
	}
	name := string(area[a:])
	if _, ok := d.fonts[num]; ok {
		return nil
	}
	var f *font.PhysicalFont
	if d.loader != nil {
		var err error
		if f, err = d.loader.Load(name, scaled, design, checksum); err != nil {
			d.logger.Warn().Err(err).Str("font", name).Msg("font not loaded; characters have no metrics")
		}
	}
	if f == nil {
		f = font.NewPhysicalFont(name, scaled, nil, font.Source{})
	}
	d.fonts[num] = f
	d.manager.Register(num, f)
	return nil
}

// ExecutePage runs page n (1-based) against a and reports whether it
// drew any character or rule.
func (d *Reader) ExecutePage(n int, a Actions) (bool, error) {
	if !d.postRead {
		if err := d.ExecutePostamble(); err != nil {
			return false, err
		}
	}
	if n < 1 || n > len(d.pages) {
		return false, fmt.Errorf("%w: %d", ErrNoPage, n)
	}
	c := &cursor{data: d.data, pos: d.pages[n-1] + 1}
	var counts [10]int32
	for i := range counts {
		counts[i] = c.s(4)
	}
	c.skip(4)
	a.BeginPage(n, counts)
	p := &pageState{d: d, c: c, a: a}
	if err := p.run(); err != nil {
		return p.drawn, err
	}
	a.EndPage()
	return p.drawn, nil
}

// ----------------------------------------------------------------------------
// Page execution
// ----------------------------------------------------------------------------

type registers struct {
	h, v, w, x, y, z float64
}

type pageState struct {
	d     *Reader
	c     *cursor
	a     Actions
	reg   registers
	stack []registers
	font  font.Font
	drawn bool
}

func (p *pageState) run() error {
	for {
		op := int(p.c.u(1))
		if p.c.err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDVI, p.c.err)
		}
		switch {
		case op < opSet1:
			p.setChar(op, true)
		case op < opSetRule:
			p.setChar(int(p.c.u(op-opSet1+1)), true)
		case op == opSetRule, op == opPutRule:
			p.rule(op == opSetRule)
		case op < opPutRule:
			p.setChar(int(p.c.u(op-opPut1+1)), false)
		case op == opNop:
		case op == opBOP:
			return fmt.Errorf("%w: bop inside page", ErrInvalidDVI)
		case op == opEOP:
			if len(p.stack) != 0 {
				return fmt.Errorf("%w: unbalanced push/pop", ErrInvalidDVI)
			}
			return nil
		case op == opPush:
			p.stack = append(p.stack, p.reg)
		case op == opPop:
			if len(p.stack) == 0 {
				return fmt.Errorf("%w: pop on empty stack", ErrInvalidDVI)
			}
			p.reg = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
		case op < opW0:
			p.reg.h += p.length(op - opRight1 + 1)
		case op == opW0:
			p.reg.h += p.reg.w
		case op < opX0:
			p.reg.w = p.length(op - opW1 + 1)
			p.reg.h += p.reg.w
		case op == opX0:
			p.reg.h += p.reg.x
		case op < opDown1:
			p.reg.x = p.length(op - opX1 + 1)
			p.reg.h += p.reg.x
		case op < opY0:
			p.reg.v += p.length(op - opDown1 + 1)
		case op == opY0:
			p.reg.v += p.reg.y
		case op < opZ0:
			p.reg.y = p.length(op - opY1 + 1)
			p.reg.v += p.reg.y
		case op == opZ0:
			p.reg.v += p.reg.z
		case op < opFntNum0:
			p.reg.z = p.length(op - opZ1 + 1)
			p.reg.v += p.reg.z
		case op < opFnt1:
			if err := p.selectFont(uint32(op - opFntNum0)); err != nil {
				return err
			}
		case op < opXXX1:
			if err := p.selectFont(p.c.u(op - opFnt1 + 1)); err != nil {
				return err
			}
		case op < opFntDef1:
			payload := p.c.bytes(int(p.c.u(op - opXXX1 + 1)))
			if p.c.err == nil {
				p.a.Special(string(payload), p.reg.h, p.reg.v)
			}
		case op < opPre:
			if err := p.d.defineFont(p.c, op-opFntDef1+1); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected opcode %d in page", ErrInvalidDVI, op)
		}
	}
}

func (p *pageState) length(n int) float64 { return float64(p.c.s(n)) * p.d.conv }

func (p *pageState) selectFont(num uint32) error {
	f, ok := p.d.fonts[num]
	if !ok {
		return fmt.Errorf("%w: undefined font %d", ErrInvalidDVI, num)
	}
	p.font = f
	return nil
}

func (p *pageState) setChar(c int, advance bool) {
	if p.c.err != nil {
		return
	}
	if p.font == nil {
		p.d.logger.Warn().Int("char", c).Msg("character without selected font")
		return
	}
	p.a.SetChar(p.reg.h, p.reg.v, c, p.font)
	p.drawn = true
	if advance {
		p.reg.h += p.font.CharWidth(c)
	}
}

func (p *pageState) rule(advance bool) {
	height, width := p.length(4), p.length(4)
	if p.c.err != nil {
		return
	}
	if height > 0 && width > 0 {
		p.a.SetRule(p.reg.h, p.reg.v, height, width)
		p.drawn = true
	}
	if advance {
		p.reg.h += width
	}
}

// ----------------------------------------------------------------------------
// Byte cursor
// ----------------------------------------------------------------------------

// cursor reads big-endian values; the first failure sticks and later
// reads return zeros.
type cursor struct {
	data []byte
	pos  int
	err  error
}

// bytes returns the next n bytes without copying. Past the end it sets
// c.err and returns nil.
func (c *cursor) bytes(n int) []byte {
	if c.err != nil || n < 0 || c.pos < 0 || n > len(c.data)-c.pos {
		if c.err == nil {
			c.err = io.ErrUnexpectedEOF
		}
		return nil
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) skip(n int) { c.bytes(n) }

func (c *cursor) u(n int) uint32 {
	var v uint32
	for _, b := range c.bytes(n) {
		v = v<<8 | uint32(b)
	}
	return v
}

func (c *cursor) s(n int) int32 {
	v := c.u(n)
	shift := 32 - 8*uint(n)
	return int32(v<<shift) >> shift
}

package font

import (
	"bufio"
	"fmt"
	"io"
)

// PK opcodes.
const (
	pkXXX1 = 240
	pkXXX4 = 243
	pkYYY  = 244
	pkPost = 245
	pkNoOp = 246
	pkPre  = 247
	pkID   = 89
)

// maxGlyphPixels bounds the bitmap size of a single PK glyph.
const maxGlyphPixels = 1 << 24

// PKGlyph is one character bitmap of a PK font. Pixel rows run top to
// bottom. The reference point lies HOffset pixels right of the left edge
// and VOffset pixels below the top row.
type PKGlyph struct {
	Code    int
	TFMW    float64 // width relative to the design size
	DX      float64 // escapement in pixels
	Width   int
	Height  int
	HOffset int
	VOffset int
	Bitmap  [][]bool
}

// PKFont is a packed bitmap font.
type PKFont struct {
	Comment    string
	DesignSize float64 // TeX points
	Checksum   uint32
	HPPP       float64 // horizontal pixels per point
	VPPP       float64
	Glyphs     map[int]*PKGlyph
}

// ParsePK reads a PK file.
func ParsePK(r io.Reader) (*PKFont, error) {
	pr := &pkReader{r: bufio.NewReader(r)}
	f, err := pr.read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPK, err)
	}
	return f, nil
}

type pkReader struct {
	r   *bufio.Reader
	err error
}

// bytes reads n bytes. The buffer grows with the data actually read, so
// a corrupt length cannot allocate more than the file holds.
func (p *pkReader) bytes(n int) []byte {
	if p.err != nil || n < 0 {
		if p.err == nil {
			p.err = fmt.Errorf("negative length %d", n)
		}
		return nil
	}
	buf, err := io.ReadAll(io.LimitReader(p.r, int64(n)))
	if err == nil && len(buf) < n {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		p.err = err
		return nil
	}
	return buf
}

// skip discards n bytes.
func (p *pkReader) skip(n int64) {
	if p.err != nil {
		return
	}
	if _, err := io.CopyN(io.Discard, p.r, n); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		p.err = err
	}
}

func (p *pkReader) unsigned(n int) uint32 {
	var v uint32
	for _, b := range p.bytes(n) {
		v = v<<8 | uint32(b)
	}
	return v
}

func (p *pkReader) signed(n int) int32 {
	v := p.unsigned(n)
	shift := 32 - 8*uint(n)
	return int32(v<<shift) >> shift
}

func (p *pkReader) read() (*PKFont, error) {
	if p.unsigned(1) != pkPre || p.unsigned(1) != pkID {
		if p.err != nil {
			return nil, p.err
		}
		return nil, fmt.Errorf("missing preamble")
	}
	f := &PKFont{Glyphs: make(map[int]*PKGlyph)}
	f.Comment = string(p.bytes(int(p.unsigned(1))))
	f.DesignSize = fixWord(p.unsigned(4))
	f.Checksum = p.unsigned(4)
	f.HPPP = float64(p.unsigned(4)) / (1 << 16)
	f.VPPP = float64(p.unsigned(4)) / (1 << 16)
	if p.err != nil {
		return nil, p.err
	}

	for {
		flag := p.unsigned(1)
		if p.err != nil {
			return nil, p.err
		}
		switch {
		case flag < pkXXX1:
			g, err := p.char(byte(flag))
			if err != nil {
				return nil, err
			}
			f.Glyphs[g.Code] = g
		case flag <= pkXXX4:
			p.skip(int64(p.unsigned(int(flag - pkXXX1 + 1))))
		case flag == pkYYY:
			p.skip(4)
		case flag == pkPost:
			return f, nil
		case flag == pkNoOp:
		default:
			return nil, fmt.Errorf("unexpected opcode %d", flag)
		}
		if p.err != nil {
			return nil, p.err
		}
	}
}

func (p *pkReader) char(flag byte) (*PKGlyph, error) {
	dynF := int(flag >> 4)
	blackFirst := flag&8 != 0
	g := &PKGlyph{}

	var length int
	switch {
	case flag&7 == 7:
		length = int(p.unsigned(4))
		g.Code = int(p.unsigned(4))
		length -= 28
		g.TFMW = fixWord(p.unsigned(4))
		g.DX = float64(p.signed(4)) / (1 << 16)
		p.signed(4) // dy
		g.Width = int(p.unsigned(4))
		g.Height = int(p.unsigned(4))
		g.HOffset = int(p.signed(4))
		g.VOffset = int(p.signed(4))
	case flag&4 != 0:
		length = int(flag&3)<<16 | int(p.unsigned(2))
		g.Code = int(p.unsigned(1))
		length -= 13
		g.TFMW = fixWord(p.unsigned(3))
		g.DX = float64(p.unsigned(2))
		g.Width = int(p.unsigned(2))
		g.Height = int(p.unsigned(2))
		g.HOffset = int(p.signed(2))
		g.VOffset = int(p.signed(2))
	default:
		length = int(flag&3)<<8 | int(p.unsigned(1))
		g.Code = int(p.unsigned(1))
		length -= 8
		g.TFMW = fixWord(p.unsigned(3))
		g.DX = float64(p.unsigned(1))
		g.Width = int(p.unsigned(1))
		g.Height = int(p.unsigned(1))
		g.HOffset = int(p.signed(1))
		g.VOffset = int(p.signed(1))
	}
	if p.err != nil {
		return nil, p.err
	}
	if length < 0 {
		return nil, fmt.Errorf("char %d: bad packet length", g.Code)
	}
	if g.Width < 0 || g.Height < 0 || (g.Height > 0 && g.Width > maxGlyphPixels/g.Height) {
		return nil, fmt.Errorf("char %d: bitmap %dx%d too large", g.Code, g.Width, g.Height)
	}
	raster := p.bytes(length)
	if p.err != nil {
		return nil, p.err
	}
	if g.Width <= 0 || g.Height <= 0 {
		return g, nil
	}
	var err error
	if dynF == 14 {
		g.Bitmap, err = unpackBits(raster, g.Width, g.Height)
	} else {
		g.Bitmap, err = unpackRuns(raster, g.Width, g.Height, dynF, blackFirst)
	}
	if err != nil {
		return nil, fmt.Errorf("char %d: %w", g.Code, err)
	}
	return g, nil
}

func newBitmap(w, h int) [][]bool {
	rows := make([][]bool, h)
	for i := range rows {
		rows[i] = make([]bool, w)
	}
	return rows
}

// unpackBits decodes a raster stored as a plain bit stream.
func unpackBits(raster []byte, w, h int) ([][]bool, error) {
	if len(raster)*8 < w*h {
		return nil, fmt.Errorf("raster too short")
	}
	bm := newBitmap(w, h)
	for i := 0; i < w*h; i++ {
		bm[i/w][i%w] = raster[i/8]&(0x80>>(uint(i)%8)) != 0
	}
	return bm, nil
}

type nybbles struct {
	data []byte
	pos  int // in nybbles
}

func (n *nybbles) next() (int, bool) {
	if n.pos/2 >= len(n.data) {
		return 0, false
	}
	b := n.data[n.pos/2]
	if n.pos%2 == 0 {
		b >>= 4
	}
	n.pos++
	return int(b & 0x0f), true
}

// packedNum decodes one run count. A repeat count prefix is returned
// through repeat.
func (n *nybbles) packedNum(dynF int, repeat *int) (int, error) {
	i, ok := n.next()
	if !ok {
		return 0, fmt.Errorf("raster truncated")
	}
	switch {
	case i == 0:
		j := 0
		for i == 0 {
			if i, ok = n.next(); !ok {
				return 0, fmt.Errorf("raster truncated")
			}
			j++
		}
		for ; j > 0; j-- {
			k, ok := n.next()
			if !ok {
				return 0, fmt.Errorf("raster truncated")
			}
			i = i*16 + k
		}
		return i - 15 + (13-dynF)*16 + dynF, nil
	case i <= dynF:
		return i, nil
	case i < 14:
		k, ok := n.next()
		if !ok {
			return 0, fmt.Errorf("raster truncated")
		}
		return (i-dynF-1)*16 + k + dynF + 1, nil
	default:
		if i == 14 {
			r, err := n.packedNum(dynF, nil)
			if err != nil {
				return 0, err
			}
			if repeat != nil {
				*repeat = r
			}
		} else if repeat != nil {
			*repeat = 1
		}
		return n.packedNum(dynF, repeat)
	}
}

// unpackRuns decodes a run-length encoded raster.
func unpackRuns(raster []byte, w, h, dynF int, black bool) ([][]bool, error) {
	bm := newBitmap(w, h)
	src := &nybbles{data: raster}
	row := make([]bool, w)
	y, x, repeat := 0, 0, 0
	for y < h {
		count, err := src.packedNum(dynF, &repeat)
		if err != nil {
			return nil, err
		}
		for count > 0 && y < h {
			n := count
			if n > w-x {
				n = w - x
			}
			for k := 0; k < n; k++ {
				row[x+k] = black
			}
			x += n
			count -= n
			if x == w {
				for r := 0; r <= repeat && y < h; r++ {
					copy(bm[y], row)
					y++
				}
				repeat = 0
				x = 0
			}
		}
		black = !black
	}
	return bm, nil
}

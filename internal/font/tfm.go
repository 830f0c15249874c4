package font

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxTFMSize bounds the bytes read from a TFM file. Real files are a few KB.
const maxTFMSize = 1 << 20

// TFM holds the metrics of a TeX font metric file. Character dimensions
// are stored relative to the design size, as in the file.
type TFM struct {
	Checksum   uint32
	DesignSize float64 // TeX points
	FirstChar  int
	LastChar   int

	widths  []float64
	heights []float64
	depths  []float64
}

// fixWord converts a TFM fix_word (signed 12.20 fixed point).
func fixWord(v uint32) float64 {
	return float64(int32(v)) / (1 << 20)
}

// ParseTFM reads a TFM file.
func ParseTFM(r io.Reader) (*TFM, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxTFMSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTFM, err)
	}
	if len(data) < 24 {
		return nil, fmt.Errorf("%w: file too short", ErrInvalidTFM)
	}
	h := make([]int, 12)
	for i := range h {
		h[i] = int(binary.BigEndian.Uint16(data[2*i:]))
	}
	lf, lh, bc, ec := h[0], h[1], h[2], h[3]
	nw, nh, nd := h[4], h[5], h[6]
	if bc > ec+1 || ec > 255 || lh < 2 {
		return nil, fmt.Errorf("%w: bad header (bc=%d ec=%d lh=%d)", ErrInvalidTFM, bc, ec, lh)
	}
	nc := ec - bc + 1
	sum := 6 + lh + nc
	for _, n := range h[4:] {
		sum += n
	}
	if lf != sum || len(data) < 4*lf {
		return nil, fmt.Errorf("%w: inconsistent table sizes", ErrInvalidTFM)
	}

	word := func(i int) uint32 { return binary.BigEndian.Uint32(data[4*i:]) }
	t := &TFM{
		Checksum:   word(6),
		DesignSize: fixWord(word(7)),
		FirstChar:  bc,
		LastChar:   ec,
	}
	charBase := 6 + lh
	widthBase := charBase + nc
	heightBase := widthBase + nw
	depthBase := heightBase + nh

	table := func(base, n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = fixWord(word(base + i))
		}
		return out
	}
	widths := table(widthBase, nw)
	heights := table(heightBase, nh)
	depths := table(depthBase, nd)

	t.widths = make([]float64, nc)
	t.heights = make([]float64, nc)
	t.depths = make([]float64, nc)
	for i := 0; i < nc; i++ {
		info := data[4*(charBase+i):]
		wi, hi, di := int(info[0]), int(info[1]>>4), int(info[1]&0x0f)
		if wi >= nw || hi >= nh || di >= nd {
			return nil, fmt.Errorf("%w: char %d indexes outside its tables", ErrInvalidTFM, bc+i)
		}
		t.widths[i] = widths[wi]
		t.heights[i] = heights[hi]
		t.depths[i] = depths[di]
	}
	return t, nil
}

func (t *TFM) lookup(tab []float64, c int) float64 {
	if t == nil || c < t.FirstChar || c > t.LastChar {
		return 0
	}
	return tab[c-t.FirstChar]
}

// Width returns the width of c relative to the design size.
func (t *TFM) Width(c int) float64 {
	if t == nil {
		return 0
	}
	return t.lookup(t.widths, c)
}

// Height returns the height of c relative to the design size.
func (t *TFM) Height(c int) float64 {
	if t == nil {
		return 0
	}
	return t.lookup(t.heights, c)
}

// Depth returns the depth of c relative to the design size.
func (t *TFM) Depth(c int) float64 {
	if t == nil {
		return 0
	}
	return t.lookup(t.depths, c)
}

// HasChar reports whether c lies in the font's character range and has a
// non-zero width entry.
func (t *TFM) HasChar(c int) bool {
	return t != nil && c >= t.FirstChar && c <= t.LastChar && t.widths[c-t.FirstChar] != 0
}

package raster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-dvisvg/internal/geom"
)

type format int

const (
	formatUnknown format = iota
	formatPS
	formatEPS
	formatPDF
)

// dosEPSMagic starts EPS files with a binary preview header.
var dosEPSMagic = []byte{0xC5, 0xD0, 0xD3, 0xC6}

const sniffSize = 1024

// maxDSCLine bounds the lines scanned for DSC comments.
const maxDSCLine = 1 << 20

// sniff classifies a file by its first bytes.
func sniff(path string) format {
	f, err := os.Open(path) // #nosec G304 -- path is the conversion input
	if err != nil {
		return formatUnknown
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffSize)
	n, _ := io.ReadFull(f, head)
	return sniffBytes(head[:n])
}

func sniffBytes(head []byte) format {
	switch {
	case bytes.HasPrefix(head, dosEPSMagic):
		return formatEPS
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return formatPDF
	case bytes.HasPrefix(head, []byte("%!PS")):
		line, _, _ := bytes.Cut(head, []byte("\n"))
		if bytes.Contains(line, []byte(" EPSF-")) {
			return formatEPS
		}
		return formatPS
	}
	return formatUnknown
}

// dscInfo holds the document structuring comments of a PostScript file.
type dscInfo struct {
	pages int
	box   geom.BoundingBox // PostScript coordinates
	hires bool
}

// readDSC scans a PostScript or DOS EPS file for %%Pages and bounding box
// comments. Values given as (atend) are taken from the trailer.
func readDSC(path string) (dscInfo, error) {
	f, err := os.Open(path) // #nosec G304 -- path is the conversion input
	if err != nil {
		return dscInfo{}, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	var magic [12]byte
	if n, _ := io.ReadFull(f, magic[:]); n == len(magic) && bytes.HasPrefix(magic[:], dosEPSMagic) {
		offset := binary.LittleEndian.Uint32(magic[4:8])
		length := binary.LittleEndian.Uint32(magic[8:12])
		r = io.NewSectionReader(f, int64(offset), int64(length))
	} else if _, err := f.Seek(0, io.SeekStart); err != nil {
		return dscInfo{}, err
	}
	return parseDSC(r), nil
}

func parseDSC(r io.Reader) dscInfo {
	var info dscInfo
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxDSCLine)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !strings.HasPrefix(line, "%%") {
			continue
		}
		key, value, ok := strings.Cut(line[2:], ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "(atend)" {
			continue
		}
		switch key {
		case "Pages":
			if info.pages == 0 {
				fields := strings.Fields(value)
				if len(fields) > 0 {
					if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
						info.pages = n
					}
				}
			}
		case "HiResBoundingBox":
			if box, ok := parseBox(value); ok && !info.hires {
				info.box, info.hires = box, true
			}
		case "BoundingBox":
			if box, ok := parseBox(value); ok && !info.hires && !info.box.Valid() {
				info.box = box
			}
		}
	}
	return info
}

// parseBox reads "llx lly urx ury".
func parseBox(s string) (geom.BoundingBox, bool) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return geom.BoundingBox{}, false
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.BoundingBox{}, false
		}
		v[i] = n
	}
	return geom.NewBoundingBox(v[0], v[1], v[2], v[3]), true
}

// parseBBoxDevice extracts the box printed by Ghostscript's bbox device.
func parseBBoxDevice(out []byte) (geom.BoundingBox, bool) {
	info := parseDSC(bytes.NewReader(out))
	return info.box, info.box.Valid()
}

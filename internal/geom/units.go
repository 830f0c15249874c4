package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLength indicates a length string that cannot be parsed.
var ErrInvalidLength = errors.New("invalid length")

// Conversion factors to TeX points.
const (
	PtPerBP = 72.27 / 72
	PtPerIn = 72.27
	PtPerCM = 72.27 / 2.54
	PtPerMM = 72.27 / 25.4
	PtPerPC = 12.0
	PtPerDD = 1238.0 / 1157.0
	PtPerCC = 12 * PtPerDD
	PtPerSP = 1.0 / 65536
)

// Unit is a named length unit and its size in TeX points.
type Unit struct {
	Name   string
	Points float64
}

var units = []Unit{
	{"pt", 1},
	{"bp", PtPerBP},
	{"in", PtPerIn},
	{"cm", PtPerCM},
	{"mm", PtPerMM},
	{"pc", PtPerPC},
	{"dd", PtPerDD},
	{"cc", PtPerCC},
	{"sp", PtPerSP},
}

// Units returns all known units in a stable order.
func Units() []Unit {
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

// UnitPoints returns the size of the named unit in TeX points.
func UnitPoints(name string) (float64, bool) {
	for _, u := range units {
		if u.Name == name {
			return u.Points, true
		}
	}
	return 0, false
}

// ParseLength converts strings like "1.5cm" or "-3pt" to TeX points.
// A bare number is taken as points.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, unit := s, "pt"
	if len(s) > 2 {
		if _, ok := UnitPoints(s[len(s)-2:]); ok {
			num, unit = strings.TrimSpace(s[:len(s)-2]), s[len(s)-2:]
		}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	factor, _ := UnitPoints(unit)
	return v * factor, nil
}

// PtToMM converts TeX points to millimeters.
func PtToMM(pt float64) float64 {
	return pt / PtPerMM
}

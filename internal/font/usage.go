package font

import "sort"

// UsedChars records the character codes drawn per font. Fonts are keyed
// by identity. A document fills it while rendering and reads it once the
// last page is rendered.
type UsedChars struct {
	chars map[Font]map[int]struct{}
	order []Font
}

// NewUsedChars creates an empty usage map.
func NewUsedChars() *UsedChars {
	return &UsedChars{chars: make(map[Font]map[int]struct{})}
}

// Add records that c was drawn with f.
func (u *UsedChars) Add(f Font, c int) {
	u.Touch(f)[c] = struct{}{}
}

// Touch registers f with an empty set if it is not yet known and returns
// its set.
func (u *UsedChars) Touch(f Font) map[int]struct{} {
	set, ok := u.chars[f]
	if !ok {
		set = make(map[int]struct{})
		u.chars[f] = set
		u.order = append(u.order, f)
	}
	return set
}

// Has reports whether f occurs in the map, even with an empty set.
func (u *UsedChars) Has(f Font) bool {
	_, ok := u.chars[f]
	return ok
}

// Chars returns the codes used with f in ascending order.
func (u *UsedChars) Chars(f Font) []int {
	set := u.chars[f]
	out := make([]int, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Fonts returns the fonts in order of first use.
func (u *UsedChars) Fonts() []Font {
	out := make([]Font, len(u.order))
	copy(out, u.order)
	return out
}

// Len returns the number of fonts.
func (u *UsedChars) Len() int { return len(u.order) }

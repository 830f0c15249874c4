// Package pagerange parses page selections such as "2-3,5", "-4" or "7-".
package pagerange

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidFormat indicates a selection string that cannot be parsed.
var ErrInvalidFormat = errors.New("invalid page range format")

// Range is an inclusive interval of 1-based page numbers.
type Range struct {
	First int
	Last  int
}

// Len returns the number of pages in the range.
func (r Range) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// Parse reads a comma-separated list of pages and ranges. An open start
// means page 1 and an open end means page max. Ranges are clamped to
// [1, max], sorted and merged; ranges entirely beyond max are dropped.
func Parse(spec string, max int) ([]Range, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty selection", ErrInvalidFormat)
	}
	var ranges []Range
	for _, part := range strings.Split(spec, ",") {
		r, err := parsePart(strings.TrimSpace(part), max)
		if err != nil {
			return nil, err
		}
		if r.First > r.Last {
			r.First, r.Last = r.Last, r.First
		}
		if r.First < 1 {
			r.First = 1
		}
		if r.Last > max {
			r.Last = max
		}
		if r.First <= r.Last {
			ranges = append(ranges, r)
		}
	}
	return merge(ranges), nil
}

func parsePart(part string, max int) (Range, error) {
	if part == "" {
		return Range{}, fmt.Errorf("%w: empty item", ErrInvalidFormat)
	}
	first, last, isRange := strings.Cut(part, "-")
	if !isRange {
		n, err := parsePage(first)
		if err != nil {
			return Range{}, err
		}
		return Range{First: n, Last: n}, nil
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" && last == "" {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidFormat, part)
	}
	r := Range{First: 1, Last: max}
	var err error
	if first != "" {
		if r.First, err = parsePage(first); err != nil {
			return Range{}, err
		}
	}
	if last != "" {
		if r.Last, err = parsePage(last); err != nil {
			return Range{}, err
		}
	}
	return r, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a page number", ErrInvalidFormat, s)
	}
	return n, nil
}

func merge(ranges []Range) []Range {
	if len(ranges) < 2 {
		return ranges
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].First < ranges[j].First })
	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.First <= last.Last+1 {
			if r.Last > last.Last {
				last.Last = r.Last
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Pages expands ranges into the page numbers they select, in order.
func Pages(ranges []Range) []int {
	var pages []int
	for _, r := range ranges {
		for p := r.First; p <= r.Last; p++ {
			pages = append(pages, p)
		}
	}
	return pages
}

// Package feature holds the per-query data model: regions, the two kinds of
// upstream features and the fused feature emitted downstream.
package feature

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRegion is returned for regions with an empty reference name or
// inverted coordinates.
var ErrInvalidRegion = errors.New("invalid region")

// Region is a half-open [Start, End) range on a named reference.
//
// OriginalRefName, when set, names the reference the sequence lives on; the
// displayed RefName may be an alias of it.
type Region struct {
	RefName         string
	OriginalRefName string
	Start           int
	End             int
}

// Len returns End-Start.
func (r Region) Len() int { return r.End - r.Start }

// Validate checks the Start <= End invariant.
func (r Region) Validate() error {
	if r.RefName == "" {
		return fmt.Errorf("%w: empty reference name", ErrInvalidRegion)
	}
	if r.Start < 0 || r.End < r.Start {
		return fmt.Errorf("%w: %s", ErrInvalidRegion, r)
	}
	return nil
}

// SequenceRegion returns the region in the sequence coordinate space:
// same coordinates, with OriginalRefName in place of RefName when present.
func (r Region) SequenceRegion() Region {
	if r.OriginalRefName == "" {
		return r
	}
	return Region{RefName: r.OriginalRefName, Start: r.Start, End: r.End}
}

// Clip intersects [start, end) with the region. ok is false when the
// intersection is empty.
func (r Region) Clip(start, end int) (int, int, bool) {
	if start < r.Start {
		start = r.Start
	}
	if end > r.End {
		end = r.End
	}
	return start, end, start < end
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.RefName, r.Start, r.End)
}

// ParseRegion parses "ref:start-end" (0-based, half-open). Thousands
// separators in the coordinates are accepted.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	colon := strings.LastIndex(s, ":")
	if colon <= 0 || colon == len(s)-1 {
		return Region{}, fmt.Errorf("%w: %q (want ref:start-end)", ErrInvalidRegion, s)
	}
	coords := strings.ReplaceAll(s[colon+1:], ",", "")
	dash := strings.IndexByte(coords, '-')
	if dash == -1 {
		return Region{}, fmt.Errorf("%w: %q (want ref:start-end)", ErrInvalidRegion, s)
	}
	start, err := strconv.Atoi(coords[:dash])
	if err != nil {
		return Region{}, fmt.Errorf("%w: bad start in %q", ErrInvalidRegion, s)
	}
	end, err := strconv.Atoi(coords[dash+1:])
	if err != nil {
		return Region{}, fmt.Errorf("%w: bad end in %q", ErrInvalidRegion, s)
	}
	r := Region{RefName: s[:colon], Start: start, End: end}
	return r, r.Validate()
}

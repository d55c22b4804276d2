// Package region groups freehand strokes into numbered logical regions.
//
// A Set is treated as an immutable value: every operation returns a new Set
// and never writes through the slices of its input, so a Set stored in the
// undo history stays valid after later edits.
package region

import (
	"github.com/umair4234/Thumbgenai/internal/geom"
)

// Region is one numbered highlighted area made of one or more strokes.
type Region struct {
	ID    int
	Paths []geom.Path
	BBox  geom.BoundingBox
}

// Clone deep-copies r.
func (r Region) Clone() Region {
	out := Region{ID: r.ID, BBox: r.BBox}
	if r.Paths != nil {
		out.Paths = make([]geom.Path, len(r.Paths))
		for i, p := range r.Paths {
			out.Paths[i] = p.Clone()
		}
	}
	return out
}

// Set is the ordered list of regions at one point in time.
type Set []Region

// Len returns the number of regions.
func (s Set) Len() int { return len(s) }

// Clone deep-copies s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for i, r := range s {
		out[i] = r.Clone()
	}
	return out
}

// IDs returns the region ids in stored order. Merge only ever appends
// regions with a fresh, larger id, so this order is ascending.
func (s Set) IDs() []int {
	ids := make([]int, 0, len(s))
	for _, r := range s {
		ids = append(ids, r.ID)
	}
	return ids
}

// MaxID returns the largest id in s, or 0 for an empty set.
func (s Set) MaxID() int {
	max := 0
	for _, r := range s {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}

// Find returns the region with the given id.
func (s Set) Find(id int) (Region, bool) {
	for _, r := range s {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// PathCount returns the number of strokes across all regions.
func (s Set) PathCount() int {
	n := 0
	for _, r := range s {
		n += len(r.Paths)
	}
	return n
}

// Equal reports whether s and o hold the same regions with the same strokes
// in the same order.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		a, b := s[i], o[i]
		if a.ID != b.ID || a.BBox != b.BBox || len(a.Paths) != len(b.Paths) {
			return false
		}
		for j := range a.Paths {
			if len(a.Paths[j]) != len(b.Paths[j]) {
				return false
			}
			for k := range a.Paths[j] {
				if a.Paths[j][k] != b.Paths[j][k] {
					return false
				}
			}
		}
	}
	return true
}

// Merge adds path to s and returns the resulting set.
//
// The path joins the first region, in stored order, whose bounding box is
// within geom.MergeThreshold(brushSize) of the path's box. Otherwise it
// starts a new region whose id is one more than the larger of s.MaxID() and
// floor. Paths with fewer than two distinct points leave s unchanged.
func Merge(s Set, path geom.Path, brushSize float64, floor int) Set {
	if len(path) < 2 {
		return s
	}
	box, _ := geom.BoundingBoxOf(path)
	if box.Width() == 0 && box.Height() == 0 {
		return s
	}
	threshold := geom.MergeThreshold(brushSize)
	captured := path.Clone()

	out := make(Set, len(s), len(s)+1)
	copy(out, s)
	for i, r := range out {
		if !geom.AreClose(r.BBox, box, threshold) {
			continue
		}
		paths := make([]geom.Path, len(r.Paths), len(r.Paths)+1)
		copy(paths, r.Paths)
		out[i] = Region{
			ID:    r.ID,
			Paths: append(paths, captured),
			BBox:  geom.MergeBoxes(r.BBox, box),
		}
		return out
	}

	next := s.MaxID()
	if floor > next {
		next = floor
	}
	return append(out, Region{ID: next + 1, Paths: []geom.Path{captured}, BBox: box})
}

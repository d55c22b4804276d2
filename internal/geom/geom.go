// Package geom holds the canvas-space primitives shared by the masking
// packages: points, freehand paths and axis-aligned bounding boxes.
package geom

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// MergeFactor scales the brush size into the distance at which two strokes
// are considered part of the same region.
const MergeFactor = 2.5

// Point is a position in canvas pixel space. The origin is the top-left
// corner of the source image and y grows downwards.
type Point = vec.Vec2

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Path is the ordered list of points sampled during one drag.
type Path []Point

// Clone returns a copy of p that does not share its backing array.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// BoundingBox is an axis-aligned rectangle in canvas space.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX-MinX.
func (b BoundingBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY-MinY.
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box. Region labels are drawn here.
func (b BoundingBox) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Expand grows the box by d on all four sides.
func (b BoundingBox) Expand(d float64) BoundingBox {
	return BoundingBox{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Contains reports whether p lies inside or on the edge of b.
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Encloses reports whether o lies entirely within b.
func (b BoundingBox) Encloses(o BoundingBox) bool {
	return o.MinX >= b.MinX && o.MinY >= b.MinY && o.MaxX <= b.MaxX && o.MaxY <= b.MaxY
}

// Intersects reports whether b and o overlap. Boxes that only touch along an
// edge or at a corner count as intersecting.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

// BoundingBoxOf returns the tightest box enclosing every point of p. The
// second result is false when p is empty.
func BoundingBoxOf(p Path) (BoundingBox, bool) {
	if len(p) == 0 {
		return BoundingBox{}, false
	}
	b := BoundingBox{MinX: p[0].X, MinY: p[0].Y, MaxX: p[0].X, MaxY: p[0].Y}
	for _, pt := range p[1:] {
		b.MinX = math.Min(b.MinX, pt.X)
		b.MinY = math.Min(b.MinY, pt.Y)
		b.MaxX = math.Max(b.MaxX, pt.X)
		b.MaxY = math.Max(b.MaxY, pt.Y)
	}
	return b, true
}

// BoundingBoxOfPaths unions the boxes of every non-empty path.
func BoundingBoxOfPaths(paths []Path) (BoundingBox, bool) {
	var (
		out BoundingBox
		ok  bool
	)
	for _, p := range paths {
		b, has := BoundingBoxOf(p)
		if !has {
			continue
		}
		if !ok {
			out, ok = b, true
			continue
		}
		out = MergeBoxes(out, b)
	}
	return out, ok
}

// MergeBoxes returns the smallest box enclosing both a and b.
func MergeBoxes(a, b BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

// AreClose reports whether a, grown by threshold on every side, intersects b.
// The relation is symmetric.
func AreClose(a, b BoundingBox, threshold float64) bool {
	return a.Expand(threshold).Intersects(b)
}

// MergeThreshold converts a brush size into the AreClose threshold.
func MergeThreshold(brushSize float64) float64 {
	return brushSize * MergeFactor
}

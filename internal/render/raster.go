package render

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"

	"github.com/umair4234/Thumbgenai/internal/geom"
)

const degenerateSegment = 1e-9

// coverage accumulates anti-aliased brush coverage for a set of paths.
// Every shape handed to the rasterizer is wound the same way, so overlapping
// segments and caps add up instead of cancelling.
type coverage struct {
	bounds image.Rectangle
	alpha  *image.Alpha
	z      *vector.Rasterizer
}

func newCoverage(bounds image.Rectangle) *coverage {
	return &coverage{bounds: bounds, alpha: image.NewAlpha(bounds)}
}

// clip returns the pixel rectangle touched by box grown by pad.
func (c *coverage) clip(box geom.BoundingBox, pad float64) image.Rectangle {
	r := image.Rect(
		int(math.Floor(box.MinX-pad)), int(math.Floor(box.MinY-pad)),
		int(math.Ceil(box.MaxX+pad)), int(math.Ceil(box.MaxY+pad)),
	)
	return r.Intersect(c.bounds)
}

func (c *coverage) begin(r image.Rectangle) *vector.Rasterizer {
	if c.z == nil {
		c.z = vector.NewRasterizer(r.Dx(), r.Dy())
	} else {
		c.z.Reset(r.Dx(), r.Dy())
	}
	c.z.DrawOp = draw.Over
	return c.z
}

func (c *coverage) flush(r image.Rectangle) {
	c.z.Draw(c.alpha, r, image.Opaque, image.Point{})
}

// stroke adds path drawn with round caps and joins at the given width.
func (c *coverage) stroke(p geom.Path, width float64) {
	if len(p) == 0 {
		return
	}
	half := width / 2
	if half < 0.5 {
		half = 0.5
	}
	box, _ := geom.BoundingBoxOf(p)
	r := c.clip(box, half+1)
	if r.Empty() {
		return
	}
	z := c.begin(r)
	origin := vec.Vec2{X: float64(r.Min.X), Y: float64(r.Min.Y)}

	for i := 1; i < len(p); i++ {
		a, b := p[i-1].Sub(origin), p[i].Sub(origin)
		d := b.Sub(a)
		l := d.Length()
		if l < degenerateSegment {
			continue
		}
		t := d.Mul(1 / l)
		n := vec.Vec2{X: -t.Y, Y: t.X}.Mul(half)
		quad(z, a.Add(n), b.Add(n), b.Sub(n), a.Sub(n))
	}
	for _, pt := range p {
		disc(z, pt.Sub(origin), half)
	}
	c.flush(r)
}

// fill adds the interior of p treated as a closed polygon.
func (c *coverage) fill(p geom.Path) {
	if len(p) < 3 {
		return
	}
	box, _ := geom.BoundingBoxOf(p)
	r := c.clip(box, 1)
	if r.Empty() {
		return
	}
	z := c.begin(r)
	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	z.MoveTo(float32(p[0].X)-ox, float32(p[0].Y)-oy)
	for _, pt := range p[1:] {
		z.LineTo(float32(pt.X)-ox, float32(pt.Y)-oy)
	}
	z.ClosePath()
	c.flush(r)
}

func quad(z *vector.Rasterizer, a, b, cc, d vec.Vec2) {
	z.MoveTo(float32(a.X), float32(a.Y))
	z.LineTo(float32(b.X), float32(b.Y))
	z.LineTo(float32(cc.X), float32(cc.Y))
	z.LineTo(float32(d.X), float32(d.Y))
	z.ClosePath()
}

// disc traces a circle in the same rotational sense as quad.
func disc(z *vector.Rasterizer, center vec.Vec2, radius float64) {
	steps := int(math.Ceil(2 * math.Pi * radius / 2))
	if steps < 12 {
		steps = 12
	}
	if steps > 96 {
		steps = 96
	}
	for i := 0; i < steps; i++ {
		s := 2 * math.Pi * float64(i) / float64(steps)
		x := float32(center.X + radius*math.Cos(s))
		y := float32(center.Y - radius*math.Sin(s))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

// strokeCoverage renders every path as a brush stroke of the given width.
func strokeCoverage(bounds image.Rectangle, paths []geom.Path, width float64) *image.Alpha {
	c := newCoverage(bounds)
	for _, p := range paths {
		c.stroke(p, width)
	}
	return c.alpha
}

// solidCoverage renders each path as its filled interior united with its
// stroke.
func solidCoverage(bounds image.Rectangle, paths []geom.Path, width float64) *image.Alpha {
	c := newCoverage(bounds)
	for _, p := range paths {
		c.fill(p)
		c.stroke(p, width)
	}
	return c.alpha
}

package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/umair4234/Thumbgenai/internal/geom"
	"github.com/umair4234/Thumbgenai/internal/region"
)

func squareSet() region.Set {
	sq := geom.Path{geom.Pt(20, 20), geom.Pt(80, 20), geom.Pt(80, 80), geom.Pt(20, 80), geom.Pt(20, 20)}
	return region.Merge(nil, sq, 4, 0)
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestMaskBlackOutsidePaintedArea(t *testing.T) {
	set := squareSet()
	m, err := Mask(image.Pt(120, 120), set, 4, DefaultStyle())
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	paint := set[0].BBox.Expand(4)
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			if paint.Contains(geom.Pt(float64(x), float64(y))) {
				continue
			}
			if c := m.RGBAAt(x, y); c != (color.RGBA{0, 0, 0, 255}) {
				t.Fatalf("pixel (%d,%d) = %+v outside painted area", x, y, c)
			}
		}
	}
}

func TestMaskFillsInterior(t *testing.T) {
	m, err := Mask(image.Pt(120, 120), squareSet(), 4, DefaultStyle())
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	for _, p := range []image.Point{{30, 30}, {70, 70}, {20, 50}, {80, 25}} {
		if c := m.RGBAAt(p.X, p.Y); c.R < 250 || c.A != 255 {
			t.Fatalf("pixel %v = %+v, want white", p, c)
		}
	}
	for i := 3; i < len(m.Pix); i += 4 {
		if m.Pix[i] != 255 {
			t.Fatal("mask must be fully opaque")
		}
	}
}

func TestMaskStrokeOnlyPathIsSolid(t *testing.T) {
	// A back-and-forth scribble must not cancel itself out.
	p := geom.Path{geom.Pt(10, 50), geom.Pt(90, 50), geom.Pt(10, 50)}
	set := region.Merge(nil, p, 10, 0)
	m, err := Mask(image.Pt(100, 100), set, 10, Style{LabelSize: 1})
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	for _, x := range []int{15, 30, 70, 85} {
		if c := m.RGBAAt(x, 50); c.R < 250 {
			t.Fatalf("pixel (%d,50) = %+v, want white", x, c)
		}
	}
	if c := m.RGBAAt(50, 70); c.R != 0 {
		t.Fatalf("pixel below stroke = %+v, want black", c)
	}
}

func TestOverlayOpacityAndUnion(t *testing.T) {
	st := DefaultStyle()
	a := geom.Path{geom.Pt(10, 50), geom.Pt(90, 50)}
	b := geom.Path{geom.Pt(50, 10), geom.Pt(50, 90)}
	set := region.Merge(region.Merge(nil, a, 6, 0), b, 6, 0)
	o, err := Overlay(image.Pt(100, 100), set, nil, true, 6, st)
	if err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	single := o.RGBAAt(20, 50).A
	cross := o.RGBAAt(50, 50).A
	if single < 120 || single > 135 {
		t.Fatalf("stroke alpha = %d, want about half", single)
	}
	if cross != single {
		t.Fatalf("crossing strokes alpha = %d, want %d", cross, single)
	}
	if o.RGBAAt(5, 5).A != 0 {
		t.Fatal("overlay must be transparent away from strokes")
	}
}

func TestOverlayLabelsOnlyWhenIdle(t *testing.T) {
	set := squareSet()
	size := image.Pt(120, 120)
	idle, err := Overlay(size, set, nil, false, 4, DefaultStyle())
	if err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	busy, err := Overlay(size, set, geom.Path{geom.Pt(100, 100), geom.Pt(110, 110)}, true, 4, DefaultStyle())
	if err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	center := image.Rect(40, 40, 60, 60)
	if !hasAlpha(idle, center) {
		t.Fatal("expected a label near the region centre when idle")
	}
	if hasAlpha(busy, center) {
		t.Fatal("labels must be hidden while drawing")
	}
	if busy.RGBAAt(105, 105).A == 0 {
		t.Fatal("in-progress stroke missing from overlay")
	}
}

func TestCompositeKeepsSourceAwayFromStrokes(t *testing.T) {
	src := solid(120, 120, color.RGBA{10, 200, 30, 255})
	st := DefaultStyle()
	c, err := Composite(src, squareSet(), 4, st)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if !c.Bounds().Eq(src.Bounds()) {
		t.Fatalf("bounds %v, want %v", c.Bounds(), src.Bounds())
	}
	if got := c.RGBAAt(5, 5); got != src.RGBAAt(5, 5) {
		t.Fatalf("untouched pixel changed: %+v", got)
	}
	if got := c.RGBAAt(50, 20); got == src.RGBAAt(50, 20) {
		t.Fatal("stroke not visible in composite")
	}
}

func TestCompositeIsLighterThanOverlay(t *testing.T) {
	st := DefaultStyle()
	if st.CompositeOpacity >= st.OverlayOpacity {
		t.Fatalf("composite opacity %v must be below overlay %v", st.CompositeOpacity, st.OverlayOpacity)
	}
}

func TestEmptySetRendersNothing(t *testing.T) {
	m, err := Mask(image.Pt(10, 10), nil, 4, DefaultStyle())
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	for i := 0; i < len(m.Pix); i += 4 {
		if m.Pix[i] != 0 {
			t.Fatal("empty mask should be black")
		}
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(solid(3, 2, color.RGBA{1, 2, 3, 255}))
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds %v", img.Bounds())
	}
}

func TestHaloSpreadsCoverage(t *testing.T) {
	a := image.NewAlpha(image.Rect(0, 0, 9, 9))
	a.SetAlpha(4, 4, color.Alpha{255})
	h := halo(a, 2)
	if h.AlphaAt(5, 4).A == 0 || h.AlphaAt(4, 6).A == 0 {
		t.Fatal("halo did not spread")
	}
	if h.AlphaAt(0, 0).A != 0 {
		t.Fatal("halo spread too far")
	}
}

func hasAlpha(img *image.RGBA, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				return true
			}
		}
	}
	return false
}

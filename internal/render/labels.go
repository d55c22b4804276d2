package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/umair4234/Thumbgenai/internal/region"
)

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
	labelFontErr  error
	labelFaces    sync.Map // map[float64]font.Face
)

func labelFace(size float64) (font.Face, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(gobold.TTF)
	})
	if labelFontErr != nil {
		return nil, fmt.Errorf("parse label font: %w", labelFontErr)
	}
	size = math.Round(size)
	if face, ok := labelFaces.Load(size); ok {
		return face.(font.Face), nil
	}
	face, err := opentype.NewFace(labelFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	labelFaces.Store(size, face)
	return face, nil
}

// labelSize picks the label point size for a canvas.
func labelSize(st Style, bounds image.Rectangle) float64 {
	if st.LabelSize > 0 {
		return st.LabelSize
	}
	short := bounds.Dx()
	if bounds.Dy() < short {
		short = bounds.Dy()
	}
	s := float64(short) / 20
	return math.Max(14, math.Min(72, s))
}

// drawLabels writes each region id centred on its bounding box. When
// outline is not fully transparent a halo of radius pixels is painted
// underneath the glyphs.
func drawLabels(dst draw.Image, set region.Set, size float64, fill, outline color.Color, radius int) error {
	if len(set) == 0 {
		return nil
	}
	face, err := labelFace(size)
	if err != nil {
		return err
	}
	_, _, _, oa := outline.RGBA()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	for _, r := range set {
		text := strconv.Itoa(r.ID)
		width := font.MeasureString(face, text).Ceil()
		c := r.BBox.Center()
		x := int(math.Round(c.X)) - width/2
		baseline := int(math.Round(c.Y)) + (ascent-descent)/2

		box := image.Rect(x, baseline-ascent, x+width, baseline+descent).Inset(-radius - 1)
		glyphs := image.NewAlpha(box)
		d := &font.Drawer{Dst: glyphs, Src: image.Opaque, Face: face, Dot: fixed.P(x, baseline)}
		d.DrawString(text)

		if oa > 0 && radius > 0 {
			h := halo(glyphs, radius)
			draw.DrawMask(dst, box, image.NewUniform(outline), image.Point{}, h, box.Min, draw.Over)
		}
		draw.DrawMask(dst, box, image.NewUniform(fill), image.Point{}, glyphs, box.Min, draw.Over)
	}
	return nil
}

// halo spreads the glyph coverage outwards by roughly radius pixels.
func halo(src *image.Alpha, radius int) *image.Alpha {
	out := boxBlur(src, radius)
	for i, v := range out.Pix {
		a := int(v) * 4
		if a > 255 {
			a = 255
		}
		out.Pix[i] = uint8(a)
	}
	return out
}

func boxBlur(src *image.Alpha, radius int) *image.Alpha {
	bounds := src.Bounds()
	dst := image.NewAlpha(bounds)
	if radius <= 0 {
		copy(dst.Pix, src.Pix)
		return dst
	}
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewAlpha(bounds)

	prefix := make([]int, w+1)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(row[x])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}

	prefix = make([]int, h+1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}

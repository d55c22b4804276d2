// Package render derives the three masking surfaces from a region set: the
// live overlay shown while editing, the composite preview and the black and
// white mask handed to the image editing backend.
//
// All functions are pure; the same inputs always produce the same pixels.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/umair4234/Thumbgenai/internal/geom"
	"github.com/umair4234/Thumbgenai/internal/region"
	"github.com/umair4234/Thumbgenai/internal/theme"
)

// Style controls colours and label appearance.
type Style struct {
	// Highlight is the stroke colour. Its alpha is ignored in favour of
	// the per-surface opacity.
	Highlight        color.RGBA
	OverlayOpacity   float64
	CompositeOpacity float64
	LabelFill        color.RGBA
	LabelOutline     color.RGBA
	// LabelSize is the label point size. Zero scales with the canvas.
	LabelSize  float64
	HaloRadius int
}

// DefaultStyle returns the standard highlight look.
func DefaultStyle() Style {
	return StyleFromTheme(theme.Default())
}

// StyleFromTheme reads the mask colours out of t.
func StyleFromTheme(t *theme.Theme) Style {
	return Style{
		Highlight:        t.MaskHighlight,
		OverlayOpacity:   0.5,
		CompositeOpacity: 0.4,
		LabelFill:        t.LabelFill,
		LabelOutline:     t.LabelOutline,
		HaloRadius:       2,
	}
}

func (st Style) tint(opacity float64) color.NRGBA {
	opacity = math.Max(0, math.Min(1, opacity))
	return color.NRGBA{
		R: st.Highlight.R, G: st.Highlight.G, B: st.Highlight.B,
		A: uint8(math.Round(opacity * 255)),
	}
}

// Paths flattens every stroke of set in stored order.
func Paths(set region.Set) []geom.Path {
	out := make([]geom.Path, 0, set.PathCount())
	for _, r := range set {
		out = append(out, r.Paths...)
	}
	return out
}

// Overlay renders the live editing layer for a canvas of the given size.
// The in-progress path is drawn like a committed stroke. Labels are only
// drawn while no drag is in progress.
func Overlay(size image.Point, set region.Set, active geom.Path, drawing bool, brush float64, st Style) (*image.RGBA, error) {
	bounds := image.Rectangle{Max: size}
	dst := image.NewRGBA(bounds)
	paths := Paths(set)
	if drawing && len(active) > 0 {
		paths = append(paths, active)
	}
	cov := strokeCoverage(bounds, paths, brush)
	draw.DrawMask(dst, bounds, image.NewUniform(st.tint(st.OverlayOpacity)), image.Point{}, cov, bounds.Min, draw.Over)
	if !drawing {
		if err := drawLabels(dst, set, labelSize(st, bounds), st.LabelFill, st.LabelOutline, st.HaloRadius); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

// Composite renders src at its native resolution with the region strokes
// and labels on top.
func Composite(src image.Image, set region.Set, brush float64, st Style) (*image.RGBA, error) {
	sb := src.Bounds()
	bounds := image.Rectangle{Max: sb.Size()}
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, sb.Min, draw.Src)
	cov := strokeCoverage(bounds, Paths(set), brush)
	draw.DrawMask(dst, bounds, image.NewUniform(st.tint(st.CompositeOpacity)), image.Point{}, cov, bounds.Min, draw.Over)
	if err := drawLabels(dst, set, labelSize(st, bounds), st.LabelFill, st.LabelOutline, st.HaloRadius); err != nil {
		return dst, err
	}
	return dst, nil
}

// Mask renders the backend mask: opaque black, each stroke filled and
// stroked in white, region labels in white.
func Mask(size image.Point, set region.Set, brush float64, st Style) (*image.RGBA, error) {
	bounds := image.Rectangle{Max: size}
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.Black), image.Point{}, draw.Src)
	cov := solidCoverage(bounds, Paths(set), brush)
	draw.DrawMask(dst, bounds, image.NewUniform(color.White), image.Point{}, cov, bounds.Min, draw.Over)
	if err := drawLabels(dst, set, labelSize(st, bounds), color.White, color.Transparent, 0); err != nil {
		return dst, err
	}
	return dst, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

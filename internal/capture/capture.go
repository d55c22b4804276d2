// Package capture grabs a screenshot through the desktop portal so it can
// be used as the source image of a masking session.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"
)

// ErrUnsupported is returned on platforms without a screenshot portal.
var ErrUnsupported = errors.New("screen capture is not supported on this platform")

// Options controls a grab.
type Options struct {
	// Interactive lets the user pick the area in the portal dialog.
	Interactive bool
	// Cursor embeds the pointer in the shot.
	Cursor bool
	// Region crops the shot when not empty. It is in screen pixels.
	Region image.Rectangle
}

// Grab takes a screenshot and crops it to opts.Region when one is set.
func Grab(ctx context.Context, opts Options) (*image.RGBA, error) {
	shot, err := portalScreenshot(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.Region.Empty() {
		return shot, nil
	}
	return Crop(shot, opts.Region)
}

// Crop copies rect out of src into a new image anchored at the origin.
func Crop(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}

// ParseRect reads "X,Y,W,H".
func ParseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q, want X,Y,W,H", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q has no area", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

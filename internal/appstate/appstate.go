package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/umair4234/Thumbgenai/internal/history"
	"github.com/umair4234/Thumbgenai/internal/masker"
	"github.com/umair4234/Thumbgenai/internal/stroke"
	"github.com/umair4234/Thumbgenai/internal/theme"
)

const (
	headerHeight = 24
	statusHeight = 24
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// canvasArea is the part of a width x height window that shows the image.
func canvasArea(width, height int) image.Rectangle {
	return image.Rect(0, headerHeight, width, max(headerHeight, height-statusHeight))
}

// viewportFor fits an image of size img into area.
func viewportFor(img image.Point, area image.Rectangle) stroke.Viewport {
	v := stroke.Fit(img.X, img.Y, area.Dx(), area.Dy())
	v.Origin.X += float64(area.Min.X)
	v.Origin.Y += float64(area.Min.Y)
	return v
}

// displayRect is the window rectangle the canvas is drawn into.
func displayRect(v stroke.Viewport) image.Rectangle {
	x, y := int(v.Origin.X), int(v.Origin.Y)
	return image.Rect(x, y, x+int(v.DisplayWidth+0.5), y+int(v.DisplayHeight+0.5))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// statusText summarises the masking state for the status bar.
func statusText(snap masker.Snapshot) string {
	mode := "mask off"
	if snap.Enabled {
		mode = "mask on"
	}
	ids := make([]string, len(snap.RegionIDs))
	for i, id := range snap.RegionIDs {
		ids[i] = fmt.Sprint(id)
	}
	regions := "none"
	if len(ids) > 0 {
		regions = strings.Join(ids, ",")
	}
	return fmt.Sprintf("%s  brush %.0f  regions %s  %s", mode, snap.BrushSize, regions, historyText(snap.State))
}

func historyText(st history.State) string {
	return fmt.Sprintf("undo:%s redo:%s", yesNo(st.CanUndo), yesNo(st.CanRedo))
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// Shortcut is a clickable hint in the status bar.
type Shortcut struct {
	label  string
	action func()
	rect   image.Rectangle
	th     *theme.Theme
}

var _ Button = (*Shortcut)(nil)

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	bg := s.th.StatusBar
	switch state {
	case StateHover:
		bg = s.th.Disabled
	case StatePressed:
		bg = s.th.MaskHighlight
	}
	draw.Draw(dst, s.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRect(dst, s.rect, s.th.Disabled, 1)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(s.th.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+2, s.rect.Min.Y+14)}
	d.DrawString(s.label)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) { s.rect = r }

func (s *Shortcut) Activate() {
	if s.action != nil {
		s.action()
	}
}

// layoutShortcuts right-aligns the shortcut hints inside the status bar.
func layoutShortcuts(shortcuts []Shortcut, width, height int) {
	meas := &font.Drawer{Face: basicfont.Face7x13}
	x := width - 4
	y := height - statusHeight + 16
	for i := len(shortcuts) - 1; i >= 0; i-- {
		w := meas.MeasureString(shortcuts[i].label).Ceil()
		shortcuts[i].SetRect(image.Rect(x-w-2, y-14, x+2, y+4))
		x -= w + 12
	}
}

func hitShortcut(shortcuts []Shortcut, p image.Point) int {
	for i := range shortcuts {
		if p.In(shortcuts[i].rect) {
			return i
		}
	}
	return -1
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

type backdrop struct {
	img         *image.RGBA
	light, dark color.RGBA
}

// backdropCache holds the last checkerboard so resizes are the only
// trigger for a redraw of the pattern.
var backdropCache backdrop

func drawBackdrop(dst *image.RGBA, r image.Rectangle, th *theme.Theme) {
	c := backdropCache
	if c.img == nil || c.img.Bounds() != r || c.light != th.CheckerLight || c.dark != th.CheckerDark {
		c = backdrop{img: image.NewRGBA(r), light: th.CheckerLight, dark: th.CheckerDark}
		drawCheckerboard(c.img, r, 8, c.light, c.dark)
		backdropCache = c
	}
	draw.Draw(dst, r, c.img, r.Min, draw.Src)
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * err; e2 >= dy {
			err += dy
			x0 += sx
		} else {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	for i := 0; i < thick; i++ {
		r := rect.Inset(i)
		drawLine(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Min.Y, col)
		drawLine(img, r.Max.X-1, r.Min.Y, r.Max.X-1, r.Max.Y-1, col)
		drawLine(img, r.Max.X-1, r.Max.Y-1, r.Min.X, r.Max.Y-1, col)
		drawLine(img, r.Min.X, r.Max.Y-1, r.Min.X, r.Min.Y, col)
	}
}

func drawText(dst *image.RGBA, x, y int, col color.Color, text string) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(text)
}

type paintState struct {
	width, height int
	theme         *theme.Theme
	title         string
	source        *image.RGBA
	overlay       *image.RGBA
	viewport      stroke.Viewport
	snap          masker.Snapshot
	shortcuts     []Shortcut
	hover         int
	loading       string
	message       string
	messageUntil  time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()
	th := st.theme

	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)
	area := canvasArea(st.width, st.height)

	if st.source != nil {
		r := displayRect(st.viewport)
		drawBackdrop(dst, r, th)
		if ctx.Err() != nil {
			return
		}
		xdraw.ApproxBiLinear.Scale(dst, r, st.source, st.source.Bounds(), draw.Over, nil)
		if ctx.Err() != nil {
			return
		}
		if st.overlay != nil {
			xdraw.ApproxBiLinear.Scale(dst, r, st.overlay, st.overlay.Bounds(), draw.Over, nil)
		}
	} else {
		msg := "no image loaded"
		if st.loading != "" {
			msg = "loading " + st.loading + "..."
		}
		drawText(dst, area.Min.X+8, area.Min.Y+20, th.Foreground, msg)
	}
	if ctx.Err() != nil {
		return
	}

	// header
	header := image.Rect(0, 0, st.width, headerHeight)
	draw.Draw(dst, header, &image.Uniform{th.StatusBar}, image.Point{}, draw.Src)
	drawText(dst, 4, 16, th.Foreground, st.title)

	// status bar
	status := image.Rect(0, st.height-statusHeight, st.width, st.height)
	draw.Draw(dst, status, &image.Uniform{th.StatusBar}, image.Point{}, draw.Src)
	accent := th.Disabled
	if st.snap.Enabled {
		accent = th.MaskHighlight
	}
	draw.Draw(dst, image.Rect(0, status.Min.Y, 4, status.Max.Y), &image.Uniform{accent}, image.Point{}, draw.Src)
	drawText(dst, 10, status.Min.Y+16, th.Foreground, statusText(st.snap))
	for i := range st.shortcuts {
		state := StateDefault
		if i == st.hover {
			state = StateHover
		}
		st.shortcuts[i].Draw(dst, state)
	}
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: messageFace}
		wmsg := d.MeasureString(st.message).Ceil()
		ascent := messageFace.Metrics().Ascent.Ceil()
		descent := messageFace.Metrics().Descent.Ceil()
		px := (st.width - wmsg) / 2
		py := (st.height-ascent-descent)/2 + ascent
		rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
		bg := color.NRGBA{th.StatusBar.R, th.StatusBar.G, th.StatusBar.B, 230}
		draw.Draw(dst, rect, &image.Uniform{bg}, image.Point{}, draw.Over)
		drawRect(dst, rect, th.MaskHighlight, 2)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}

	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// Package stroke turns pointer input into freehand paths.
package stroke

import (
	"github.com/umair4234/Thumbgenai/internal/geom"
)

// Phase is the state of a Capturer.
type Phase int

const (
	Idle Phase = iota
	Drawing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	}
	return "unknown"
}

// Viewport maps client coordinates onto the canvas. The canvas has the
// backing size and is displayed at the display size with its top-left
// corner at Origin.
type Viewport struct {
	BackingWidth, BackingHeight float64
	DisplayWidth, DisplayHeight float64
	Origin                      geom.Point
}

// Identity returns a viewport that shows a w x h canvas at its native size.
func Identity(w, h int) Viewport {
	return Viewport{
		BackingWidth: float64(w), BackingHeight: float64(h),
		DisplayWidth: float64(w), DisplayHeight: float64(h),
	}
}

// Fit returns a viewport that scales a w x h canvas to fit inside a
// dw x dh area, centred, never upscaling beyond 1:1.
func Fit(w, h, dw, dh int) Viewport {
	if w <= 0 || h <= 0 || dw <= 0 || dh <= 0 {
		return Identity(w, h)
	}
	zoom := float64(dw) / float64(w)
	if z := float64(dh) / float64(h); z < zoom {
		zoom = z
	}
	if zoom > 1 {
		zoom = 1
	}
	sw := float64(w) * zoom
	sh := float64(h) * zoom
	return Viewport{
		BackingWidth: float64(w), BackingHeight: float64(h),
		DisplayWidth: sw, DisplayHeight: sh,
		Origin: geom.Pt((float64(dw)-sw)/2, (float64(dh)-sh)/2),
	}
}

// ToCanvas converts a client position to canvas space.
func (v Viewport) ToCanvas(x, y float64) geom.Point {
	sx, sy := 1.0, 1.0
	if v.DisplayWidth > 0 {
		sx = v.BackingWidth / v.DisplayWidth
	}
	if v.DisplayHeight > 0 {
		sy = v.BackingHeight / v.DisplayHeight
	}
	return geom.Pt((x-v.Origin.X)*sx, (y-v.Origin.Y)*sy)
}

// ToClient is the inverse of ToCanvas.
func (v Viewport) ToClient(p geom.Point) geom.Point {
	sx, sy := 1.0, 1.0
	if v.BackingWidth > 0 {
		sx = v.DisplayWidth / v.BackingWidth
	}
	if v.BackingHeight > 0 {
		sy = v.DisplayHeight / v.BackingHeight
	}
	return geom.Pt(p.X*sx+v.Origin.X, p.Y*sy+v.Origin.Y)
}

// Capturer is the Idle/Drawing state machine for a single pointer.
type Capturer struct {
	enabled  bool
	phase    Phase
	current  geom.Path
	viewport Viewport

	// OnStroke receives every completed non-empty path.
	OnStroke func(geom.Path)
	// OnRedraw is called whenever the in-progress path changes.
	OnRedraw func()
}

// NewCapturer returns an idle capturer.
func NewCapturer(enabled bool) *Capturer {
	return &Capturer{enabled: enabled}
}

// Phase returns the current state.
func (c *Capturer) Phase() Phase { return c.phase }

// Drawing reports whether a drag is in progress.
func (c *Capturer) Drawing() bool { return c.phase == Drawing }

// Enabled reports whether pointer input is accepted.
func (c *Capturer) Enabled() bool { return c.enabled }

// SetEnabled toggles capture. Disabling during a drag abandons the drag
// without emitting a stroke.
func (c *Capturer) SetEnabled(on bool) {
	if c.enabled == on {
		return
	}
	c.enabled = on
	if !on && c.phase == Drawing {
		c.phase = Idle
		c.current = nil
		c.redraw()
	}
}

// SetViewport replaces the client-to-canvas mapping.
func (c *Capturer) SetViewport(v Viewport) { c.viewport = v }

// Viewport returns the client-to-canvas mapping.
func (c *Capturer) Viewport() Viewport { return c.viewport }

// Active returns a copy of the in-progress path.
func (c *Capturer) Active() geom.Path { return c.current.Clone() }

// Down starts a drag at the client position (x, y).
func (c *Capturer) Down(x, y float64) {
	if !c.enabled || c.phase == Drawing {
		return
	}
	c.phase = Drawing
	c.current = geom.Path{c.viewport.ToCanvas(x, y)}
	c.redraw()
}

// Move extends the drag. A point equal to the last captured one is
// dropped, so a press and release at the same spot stays a single point.
func (c *Capturer) Move(x, y float64) {
	if c.phase != Drawing {
		return
	}
	p := c.viewport.ToCanvas(x, y)
	if n := len(c.current); n > 0 && c.current[n-1] == p {
		return
	}
	c.current = append(c.current, p)
	c.redraw()
}

// Up ends the drag and emits the captured path.
func (c *Capturer) Up() { c.finish() }

// Leave is called when the pointer leaves the canvas. It ends the drag the
// same way Up does.
func (c *Capturer) Leave() { c.finish() }

func (c *Capturer) finish() {
	if c.phase != Drawing {
		return
	}
	c.phase = Idle
	p := c.current
	c.current = nil
	if len(p) > 0 && c.OnStroke != nil {
		c.OnStroke(p.Clone())
	}
	c.redraw()
}

func (c *Capturer) redraw() {
	if c.OnRedraw != nil {
		c.OnRedraw()
	}
}

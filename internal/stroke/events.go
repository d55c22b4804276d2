package stroke

import (
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"
)

// HandleMouse feeds a mouse event into the capturer. Only the left button
// draws; motion events with no button extend an active drag. It reports
// whether the event was consumed.
func (c *Capturer) HandleMouse(e mouse.Event) bool {
	x, y := float64(e.X), float64(e.Y)
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		c.Down(x, y)
		return c.phase == Drawing
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft || c.phase != Drawing {
			return false
		}
		c.Move(x, y)
		c.Up()
		return true
	case mouse.DirNone:
		if c.phase != Drawing {
			return false
		}
		c.Move(x, y)
		return true
	}
	return false
}

// TouchHandler tracks the first finger of a touch sequence so that extra
// contacts cannot start or steer a stroke.
type TouchHandler struct {
	c      *Capturer
	active bool
	seq    touch.Sequence
}

// NewTouchHandler wraps c.
func NewTouchHandler(c *Capturer) *TouchHandler {
	return &TouchHandler{c: c}
}

// Handle feeds a touch event into the capturer.
func (h *TouchHandler) Handle(e touch.Event) bool {
	x, y := float64(e.X), float64(e.Y)
	switch e.Type {
	case touch.TypeBegin:
		if h.active {
			return false
		}
		h.c.Down(x, y)
		if h.c.Drawing() {
			h.active = true
			h.seq = e.Sequence
			return true
		}
	case touch.TypeMove:
		if h.active && e.Sequence == h.seq {
			h.c.Move(x, y)
			return true
		}
	case touch.TypeEnd:
		if h.active && e.Sequence == h.seq {
			h.active = false
			h.c.Up()
			return true
		}
	}
	return false
}

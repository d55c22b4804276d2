package masker

import (
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"
)

// HandleMouse routes a window mouse event to stroke capture and reports
// whether it was consumed.
func (m *Masker) HandleMouse(e mouse.Event) bool { return m.capture.HandleMouse(e) }

// HandleTouch routes a touch event to stroke capture. Only the first
// finger of a gesture draws.
func (m *Masker) HandleTouch(e touch.Event) bool { return m.touch.Handle(e) }

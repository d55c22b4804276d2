// Package masker ties stroke capture, region merging, history, rendering
// and prompt binding into the freehand masking subsystem.
//
// A Masker owns the region history and is driven one event at a time. It is
// not safe for concurrent use; UI code must call it from its event loop.
package masker

import (
	"context"
	"image"

	"pkt.systems/pslog"

	"github.com/umair4234/Thumbgenai/internal/geom"
	"github.com/umair4234/Thumbgenai/internal/history"
	"github.com/umair4234/Thumbgenai/internal/prompts"
	"github.com/umair4234/Thumbgenai/internal/region"
	"github.com/umair4234/Thumbgenai/internal/render"
	"github.com/umair4234/Thumbgenai/internal/stroke"
)

// DefaultBrushSize is the brush width in canvas pixels used when no option
// overrides it.
const DefaultBrushSize = 24

// Snapshot is a read-only view of the masking state after a change.
type Snapshot struct {
	Regions     region.Set
	RegionIDs   []int
	State       history.State
	Prompts     []prompts.RegionPrompt
	BrushSize   float64
	Enabled     bool
	ImageLoaded bool
	// Composite and Mask hold PNG payloads, nil when absent.
	Composite []byte
	Mask      []byte
}

// Masker is the masking subsystem for one source image.
type Masker struct {
	log       pslog.Logger
	hist      *history.History[region.Set]
	capture   *stroke.Capturer
	touch     *stroke.TouchHandler
	brush     float64
	style     render.Style
	img       image.Image
	prompts   []prompts.RegionPrompt
	maxIssued int // highest id handed out since the last Clear

	composite []byte
	mask      []byte

	onChange func(Snapshot)
	onRedraw func()
}

// Option configures a Masker.
type Option func(*Masker)

// WithBrushSize sets the initial brush size.
func WithBrushSize(b float64) Option {
	return func(m *Masker) {
		if b > 0 {
			m.brush = b
		}
	}
}

// WithEnabled sets whether masking mode starts on.
func WithEnabled(on bool) Option { return func(m *Masker) { m.capture.SetEnabled(on) } }

// WithStyle sets the highlight and label style.
func WithStyle(st render.Style) Option { return func(m *Masker) { m.style = st } }

// WithLogger sets the logger.
func WithLogger(l pslog.Logger) Option { return func(m *Masker) { m.log = l } }

// WithImage sets the source image.
func WithImage(img image.Image) Option { return func(m *Masker) { m.img = img } }

// WithOnChange registers a listener called after every state change.
func WithOnChange(fn func(Snapshot)) Option { return func(m *Masker) { m.onChange = fn } }

// WithOnRedraw registers a listener called whenever the live overlay needs
// repainting, including every pointer move during a drag.
func WithOnRedraw(fn func()) Option { return func(m *Masker) { m.onRedraw = fn } }

// New creates a Masker with an empty history.
func New(opts ...Option) *Masker {
	m := &Masker{
		log:     pslog.Ctx(context.Background()),
		hist:    history.New[region.Set](nil),
		capture: stroke.NewCapturer(false),
		brush:   DefaultBrushSize,
		style:   render.DefaultStyle(),
	}
	m.touch = stroke.NewTouchHandler(m.capture)
	m.capture.OnStroke = m.commit
	m.capture.OnRedraw = m.redraw
	for _, o := range opts {
		o(m)
	}
	if m.img != nil {
		b := m.img.Bounds()
		m.capture.SetViewport(stroke.Identity(b.Dx(), b.Dy()))
	}
	m.refresh()
	return m
}

// SetImage replaces the source image. A nil image returns the masker to the
// not-loaded state in which exports are absent. Regions are kept.
func (m *Masker) SetImage(img image.Image) {
	m.img = img
	if img != nil {
		b := img.Bounds()
		m.capture.SetViewport(stroke.Identity(b.Dx(), b.Dy()))
		m.log.Debug("image loaded", "width", b.Dx(), "height", b.Dy())
	}
	m.refresh()
	m.changed()
}

// Image returns the source image, or nil when none is loaded.
func (m *Masker) Image() image.Image { return m.img }

// SetViewport sets how client pointer coordinates map onto the canvas.
func (m *Masker) SetViewport(v stroke.Viewport) { m.capture.SetViewport(v) }

// SetBrushSize changes the brush width. Every stroke, including ones
// already committed, is rendered with the current width. Non-positive
// sizes are ignored.
func (m *Masker) SetBrushSize(b float64) {
	if b <= 0 || b == m.brush {
		return
	}
	m.brush = b
	m.refresh()
	m.changed()
}

// BrushSize returns the current brush width.
func (m *Masker) BrushSize() float64 { return m.brush }

// SetEnabled toggles masking mode. History is never touched.
func (m *Masker) SetEnabled(on bool) {
	if m.capture.Enabled() == on {
		return
	}
	m.capture.SetEnabled(on)
	m.changed()
}

// Enabled reports whether masking mode is on.
func (m *Masker) Enabled() bool { return m.capture.Enabled() }

// Drawing reports whether a stroke is in progress.
func (m *Masker) Drawing() bool { return m.capture.Drawing() }

// PointerDown starts a stroke at a client position.
func (m *Masker) PointerDown(x, y float64) { m.capture.Down(x, y) }

// PointerMove extends the current stroke.
func (m *Masker) PointerMove(x, y float64) { m.capture.Move(x, y) }

// PointerUp ends the current stroke and commits it.
func (m *Masker) PointerUp() { m.capture.Up() }

// PointerLeave ends the current stroke and commits it.
func (m *Masker) PointerLeave() { m.capture.Leave() }

// Stroke commits a complete path given in canvas coordinates, bypassing
// pointer capture. It is used for scripted input and, like the pointer,
// does nothing while masking mode is off.
func (m *Masker) Stroke(p geom.Path) {
	if !m.capture.Enabled() {
		m.log.Debug("stroke ignored, masking off", "points", len(p))
		return
	}
	m.commit(p.Clone())
}

// Undo steps back one commit. Each call undoes once.
func (m *Masker) Undo() {
	if !m.hist.Undo() {
		return
	}
	m.log.Debug("undo", "index", m.hist.Index(), "regions", m.hist.Current().Len())
	m.afterRegionsChanged()
}

// Redo steps forward one commit. Each call redoes once.
func (m *Masker) Redo() {
	if !m.hist.Redo() {
		return
	}
	m.log.Debug("redo", "index", m.hist.Index(), "regions", m.hist.Current().Len())
	m.afterRegionsChanged()
}

// Clear drops all regions and history. Region numbering restarts at 1.
func (m *Masker) Clear() {
	m.hist.Clear()
	m.maxIssued = 0
	m.log.Debug("clear")
	m.afterRegionsChanged()
}

// State returns the undo/redo availability.
func (m *Masker) State() history.State { return m.hist.State() }

// Regions returns a copy of the current region set.
func (m *Masker) Regions() region.Set { return m.hist.Current().Clone() }

// RegionIDs returns the current region ids in order.
func (m *Masker) RegionIDs() []int { return m.hist.Current().IDs() }

// Prompts returns a copy of the per-region prompt list.
func (m *Masker) Prompts() []prompts.RegionPrompt {
	return append([]prompts.RegionPrompt(nil), m.prompts...)
}

// SetPrompt sets the prompt text for an existing region. It reports false
// when id is not a current region.
func (m *Masker) SetPrompt(id int, text string) bool {
	out, ok := prompts.SetText(m.prompts, id, text)
	if !ok {
		return false
	}
	m.prompts = out
	m.changed()
	return true
}

// Composite returns the PNG composite preview, or false when there is no
// image or no region.
func (m *Masker) Composite() ([]byte, bool) { return m.composite, m.composite != nil }

// Mask returns the PNG mask, or false when there is no image or no region.
func (m *Masker) Mask() ([]byte, bool) { return m.mask, m.mask != nil }

// Overlay renders the live overlay at the canvas size. It returns nil when
// no image is loaded.
func (m *Masker) Overlay() *image.RGBA {
	if m.img == nil {
		return nil
	}
	img, err := render.Overlay(m.img.Bounds().Size(), m.hist.Current(), m.capture.Active(), m.capture.Drawing(), m.brush, m.style)
	if err != nil {
		m.log.Warn("render overlay", "err", err)
	}
	return img
}

// Snapshot returns the current state.
func (m *Masker) Snapshot() Snapshot {
	cur := m.hist.Current()
	return Snapshot{
		Regions:     cur.Clone(),
		RegionIDs:   cur.IDs(),
		State:       m.hist.State(),
		Prompts:     m.Prompts(),
		BrushSize:   m.brush,
		Enabled:     m.capture.Enabled(),
		ImageLoaded: m.img != nil,
		Composite:   m.composite,
		Mask:        m.mask,
	}
}

func (m *Masker) commit(p geom.Path) {
	cur := m.hist.Current()
	next := region.Merge(cur, p, m.brush, m.maxIssued)
	if len(next) == len(cur) && next.PathCount() == cur.PathCount() {
		m.log.Debug("stroke ignored", "points", len(p))
		return
	}
	m.hist.Commit(next)
	if id := next.MaxID(); id > m.maxIssued {
		m.maxIssued = id
	}
	m.log.Debug("stroke committed", "points", len(p), "regions", next.Len(), "history", m.hist.Len())
	m.afterRegionsChanged()
}

func (m *Masker) afterRegionsChanged() {
	m.prompts = prompts.Reconcile(m.hist.Current().IDs(), m.prompts)
	m.refresh()
	m.changed()
	m.redraw()
}

// refresh re-derives the composite and mask payloads.
func (m *Masker) refresh() {
	m.composite, m.mask = nil, nil
	set := m.hist.Current()
	if m.img == nil || set.Len() == 0 {
		return
	}
	comp, err := render.Composite(m.img, set, m.brush, m.style)
	if err == nil {
		m.composite, err = render.EncodePNG(comp)
	}
	if err != nil {
		m.log.Warn("render composite", "err", err)
		m.composite = nil
	}
	mask, err := render.Mask(m.img.Bounds().Size(), set, m.brush, m.style)
	if err == nil {
		m.mask, err = render.EncodePNG(mask)
	}
	if err != nil {
		m.log.Warn("render mask", "err", err)
		m.mask = nil
	}
}

func (m *Masker) changed() {
	if m.onChange != nil {
		m.onChange(m.Snapshot())
	}
}

func (m *Masker) redraw() {
	if m.onRedraw != nil {
		m.onRedraw()
	}
}

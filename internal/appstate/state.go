// Package appstate runs the interactive mask editor window.
package appstate

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pkt.systems/pslog"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/umair4234/Thumbgenai/internal/clipboard"
	"github.com/umair4234/Thumbgenai/internal/export"
	"github.com/umair4234/Thumbgenai/internal/imageio"
	"github.com/umair4234/Thumbgenai/internal/masker"
	"github.com/umair4234/Thumbgenai/internal/notify"
	"github.com/umair4234/Thumbgenai/internal/prompts"
	"github.com/umair4234/Thumbgenai/internal/theme"
)

const (
	brushStep = 4
	minBrush  = 2
	maxBrush  = 256

	defaultWidth  = 960
	defaultHeight = 640
)

// AppState holds the editor configuration and the masker it drives.
type AppState struct {
	Masker    *masker.Masker
	Source    string
	Title     string
	OutputDir string
	Theme     *theme.Theme
	Notifier  *notify.Notifier

	log       pslog.Logger
	updateCh  chan struct{}
	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithMasker sets the masker edited by the window.
func WithMasker(m *masker.Masker) Option { return func(a *AppState) { a.Masker = m } }

// WithSource sets a file path or URL that is loaded once the window opens.
func WithSource(ref string) Option { return func(a *AppState) { a.Source = ref } }

// WithTitle sets the header text.
func WithTitle(t string) Option { return func(a *AppState) { a.Title = t } }

// WithOutputDir sets where Ctrl+S writes the mask and composite.
func WithOutputDir(dir string) Option { return func(a *AppState) { a.OutputDir = dir } }

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithLogger sets the logger.
func WithLogger(l pslog.Logger) Option { return func(a *AppState) { a.log = l } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Title:     "thumbmask",
		OutputDir: ".",
		Theme:     theme.Default(),
		log:       pslog.Ctx(context.Background()),
		updateCh:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if a.Masker == nil {
		a.Masker = masker.New(masker.WithLogger(a.log))
	}
	return a
}

// imageLoaded is delivered to the event loop when an async load finishes.
type imageLoaded struct {
	ref string
	img *image.RGBA
	err error
}

// NotifyChanged requests a repaint after the masker was changed from
// outside the window.
func (a *AppState) NotifyChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// initialSize picks a window size that shows img at up to 1:1.
func initialSize(img image.Image) (int, int) {
	if img == nil {
		return defaultWidth, defaultHeight
	}
	b := img.Bounds()
	return min(max(b.Dx(), 320), 1600), min(max(b.Dy(), 240), 1000) + headerHeight + statusHeight
}

func promptSummary(list []prompts.RegionPrompt) string {
	var sb strings.Builder
	for _, p := range prompts.NonEmpty(list) {
		fmt.Fprintf(&sb, "%d: %s\n", p.RegionID, p.Text)
	}
	return sb.String()
}

func (a *AppState) Main(s screen.Screen) {
	m := a.Masker
	th := a.Theme
	width, height := initialSize(m.Image())
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		a.log.Error("new window", "err", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	loading := ""
	if a.Source != "" {
		loading = a.Source
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		go func(ref string) {
			img, err := imageio.Load(ctx, ref)
			w.Send(imageLoaded{ref: ref, img: img, err: err})
		}(a.Source)
	}

	var message string
	var messageUntil time.Time
	say := func(format string, args ...any) {
		message = fmt.Sprintf(format, args...)
		messageUntil = time.Now().Add(2 * time.Second)
		a.log.Info(message)
	}

	fitViewport := func() {
		if img := m.Image(); img != nil {
			m.SetViewport(viewportFor(img.Bounds().Size(), canvasArea(width, height)))
		}
	}
	fitViewport()

	actions := map[string]func(){
		actionToggleMask: func() {
			m.SetEnabled(!m.Enabled())
			say("masking %s", map[bool]string{true: "on", false: "off"}[m.Enabled()])
		},
		actionBrushDown: func() { m.SetBrushSize(max(minBrush, m.BrushSize()-brushStep)) },
		actionBrushUp:   func() { m.SetBrushSize(min(maxBrush, m.BrushSize()+brushStep)) },
		actionUndo:      m.Undo,
		actionRedo:      m.Redo,
		actionClear: func() {
			m.Clear()
			say("mask cleared")
		},
		actionExport: func() {
			snap := m.Snapshot()
			if _, err := export.Save(a.OutputDir, snap); err != nil {
				say("export: %v", err)
				return
			}
			var preview image.Image
			if img, _, err := imageio.Decode(snap.Composite); err == nil {
				preview = img
			}
			a.Notifier.Export(a.OutputDir, preview)
			say("exported to %s", filepath.Clean(a.OutputDir))
		},
		actionCopy: func() {
			snap := m.Snapshot()
			if snap.Mask == nil {
				say("nothing to copy")
				return
			}
			if err := clipboard.Write(clipboard.Payload{PNG: snap.Mask, Text: promptSummary(snap.Prompts)}); err != nil {
				say("copy: %v", err)
				return
			}
			a.Notifier.Copy("mask")
			say("mask copied to clipboard")
		},
		actionQuit: func() { w.Send(lifecycle.Event{To: lifecycle.StageDead}) },
	}
	keys := newKeymap()
	trigger := func(name string) {
		if fn, ok := actions[name]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}
	shortcuts := []Shortcut{
		{label: "M:mask", action: func() { trigger(actionToggleMask) }, th: th},
		{label: "[ ]:brush", action: func() { trigger(actionBrushUp) }, th: th},
		{label: "^Z:undo", action: func() { trigger(actionUndo) }, th: th},
		{label: "^Y:redo", action: func() { trigger(actionRedo) }, th: th},
		{label: "^S:export", action: func() { trigger(actionExport) }, th: th},
		{label: "^C:copy", action: func() { trigger(actionCopy) }, th: th},
	}
	hover := -1

	frames := startPainter(func(ctx context.Context, st paintState) { drawFrame(ctx, s, w, st) })
	defer frames.stop()

	for {
		switch e := w.NextEvent().(type) {
		case imageLoaded:
			loading = ""
			if e.err != nil {
				a.log.Error("load image", "ref", e.ref, "err", e.err)
				say("could not load %s", filepath.Base(e.ref))
			} else {
				m.SetImage(e.img)
				fitViewport()
			}
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				m.PointerLeave()
			}
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			fitViewport()
			layoutShortcuts(shortcuts, width, height)
			w.Send(paint.Event{})
		case paint.Event:
			var src *image.RGBA
			if img := m.Image(); img != nil {
				src, _ = img.(*image.RGBA)
			}
			st := paintState{
				width:        width,
				height:       height,
				theme:        th,
				title:        a.Title,
				source:       src,
				overlay:      m.Overlay(),
				viewport:     viewportFor(sizeOf(m.Image()), canvasArea(width, height)),
				snap:         m.Snapshot(),
				shortcuts:    append([]Shortcut(nil), shortcuts...),
				hover:        hover,
				loading:      loading,
				message:      message,
				messageUntil: messageUntil,
			}
			frames.submit(st)
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			if !m.Drawing() {
				if i := hitShortcut(shortcuts, p); i >= 0 || hover >= 0 {
					if i != hover {
						hover = i
						w.Send(paint.Event{})
					}
					if i >= 0 {
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							shortcuts[i].Activate()
						}
						continue
					}
				}
			}
			if routeMouse(m, e, canvasRect(m, width, height)) {
				w.Send(paint.Event{})
			}
		case touch.Event:
			if routeTouch(m, e, canvasRect(m, width, height)) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if action, ok := keys.lookup(e); ok {
				trigger(action)
			}
		case error:
			a.log.Error("window event", "err", e)
		}
	}
}

func sizeOf(img image.Image) image.Point {
	if img == nil {
		return image.Point{}
	}
	return img.Bounds().Size()
}

// canvasRect is the window rectangle that accepts strokes: the displayed
// image, or nothing while no image is loaded.
func canvasRect(m *masker.Masker, width, height int) image.Rectangle {
	img := m.Image()
	if img == nil {
		return image.Rectangle{}
	}
	return displayRect(viewportFor(sizeOf(img), canvasArea(width, height)))
}

// routeMouse feeds e to the masker with canvas as the capture surface.
// Presses outside it are ignored and a drag that leaves it ends there.
func routeMouse(m *masker.Masker, e mouse.Event, canvas image.Rectangle) bool {
	inside := image.Pt(int(e.X), int(e.Y)).In(canvas)
	switch e.Direction {
	case mouse.DirPress:
		if !inside {
			return false
		}
	case mouse.DirNone, mouse.DirRelease:
		if !inside && m.Drawing() {
			m.PointerLeave()
			return true
		}
	}
	return m.HandleMouse(e)
}

// routeTouch applies the same surface rules to touch input.
func routeTouch(m *masker.Masker, e touch.Event, canvas image.Rectangle) bool {
	inside := image.Pt(int(e.X), int(e.Y)).In(canvas)
	switch e.Type {
	case touch.TypeBegin:
		if !inside {
			return false
		}
	case touch.TypeMove:
		if !inside && m.Drawing() {
			m.PointerLeave()
			return true
		}
	}
	return m.HandleTouch(e)
}

// painter draws frames on its own goroutine. A new frame cancels the one
// in flight unless frameDropThreshold frames in a row were already dropped.
type painter struct {
	draw func(context.Context, paintState)
	ch   chan paintState
	done chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	drops  int
}

func startPainter(draw func(context.Context, paintState)) *painter {
	p := &painter{draw: draw, ch: make(chan paintState, 1), done: make(chan struct{})}
	go p.run()
	return p
}

func (p *painter) run() {
	defer close(p.done)
	for st := range p.ch {
		ctx, cancel := context.WithCancel(context.Background())
		p.mu.Lock()
		p.cancel = cancel
		p.mu.Unlock()
		p.draw(ctx, st)
		p.mu.Lock()
		p.cancel = nil
		if ctx.Err() == nil {
			p.drops = 0
		}
		p.mu.Unlock()
		cancel()
	}
}

// submit queues st, replacing any frame that has not started yet.
func (p *painter) submit(st paintState) {
	p.mu.Lock()
	if p.cancel != nil && p.drops < frameDropThreshold {
		p.cancel()
		p.drops++
	}
	p.mu.Unlock()
	select {
	case p.ch <- st:
	default:
		select {
		case <-p.ch:
		default:
		}
		p.ch <- st
	}
}

// stop cancels the frame in flight and waits for the painter to exit, so
// no frame touches the window after it is released.
func (p *painter) stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	close(p.ch)
	<-p.done
}

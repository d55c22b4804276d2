// Package notify raises desktop notifications for masking actions.
package notify

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"

	"github.com/umair4234/Thumbgenai/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires when the mask and composite are written to disk.
	EventExport Event = "export"
	// EventSubmit fires when an edit request is handed to the backend.
	EventSubmit Event = "submit"
	// EventCopy fires when the mask or prompts are copied to the clipboard.
	EventCopy Event = "copy"
)

// Events lists every event in display order.
var Events = []Event{EventExport, EventSubmit, EventCopy}

// Preferences holds the title and per event body templates. Each template
// receives a single %s detail.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built in templates.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Thumbnail mask",
		Templates: map[Event]string{
			EventExport: "Exported mask to %s",
			EventSubmit: "Submitted edit %s",
			EventCopy:   "Copied %s to clipboard",
		},
	}
}

// LoadPreferences applies THUMBMASK_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("THUMBMASK_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, ev := range Events {
		key := "THUMBMASK_NOTIFY_" + strings.ToUpper(string(ev)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Templates[ev] = v
		}
	}
	return prefs
}

// SendFunc delivers one notification.
type SendFunc func(title, body string, opts platform.Options) error

// Notifier sends notifications for the events that are switched on. A nil
// Notifier is valid and silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    SendFunc
	log     pslog.Logger
}

// New creates a Notifier with every event switched off.
func New(prefs Preferences) *Notifier {
	tmpl := make(map[Event]string, len(prefs.Templates))
	for k, v := range prefs.Templates {
		tmpl[k] = v
	}
	return &Notifier{
		prefs:   Preferences{Title: prefs.Title, Templates: tmpl},
		enabled: make(map[Event]bool),
		send:    platform.Notify,
		log:     pslog.Ctx(context.Background()),
	}
}

// SetSender replaces the delivery function.
func (n *Notifier) SetSender(fn SendFunc) { n.send = fn }

// SetLogger sets where delivery failures are logged.
func (n *Notifier) SetLogger(l pslog.Logger) { n.log = l }

// Enable switches an event on or off.
func (n *Notifier) Enable(event Event, on bool) {
	if n == nil {
		return
	}
	n.enabled[event] = on
}

// Enabled reports whether event is switched on.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Export announces a written mask. When preview is not nil it is shown as
// the notification icon.
func (n *Notifier) Export(dir string, preview image.Image) {
	if !n.Enabled(EventExport) {
		return
	}
	detail := dir
	if abs, err := filepath.Abs(dir); err == nil {
		detail = abs
	}
	opts := platform.Options{}
	if preview != nil {
		path, cleanup, err := writePreview(preview)
		if err != nil {
			n.log.Warn("notification preview", "err", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Submit announces a request handed to the backend.
func (n *Notifier) Submit(id string, regions int) {
	if !n.Enabled(EventSubmit) {
		return
	}
	detail := id
	if regions > 0 {
		detail = fmt.Sprintf("%s (%d regions)", id, regions)
	}
	n.dispatch(EventSubmit, detail, platform.Options{})
}

// Copy announces a clipboard write.
func (n *Notifier) Copy(what string) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(what) == "" {
		what = "mask"
	}
	n.dispatch(EventCopy, what, platform.Options{})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" || n.send == nil {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		n.log.Warn("notification failed", "event", string(event), "err", err)
	}
}

func writePreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "thumbmask-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

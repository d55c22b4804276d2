//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// requestTimeout bounds how long a read waits for the selection owner.
const requestTimeout = 2 * time.Second

var (
	initOnce sync.Once
	initErr  error
	owner    *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		owner, initErr = newSelectionOwner()
	})
	return initErr
}

func write(p Payload) error { return owner.publish(p) }

func readPNG() ([]byte, error) { return owner.request(owner.atoms.png) }

func readText() ([]byte, error) {
	data, err := owner.request(owner.atoms.utf8)
	if err != nil {
		return owner.request(xproto.AtomString)
	}
	return data, nil
}

// selectionOwner holds the CLIPBOARD selection on a hidden window and
// answers conversion requests from other clients. Unlike the cgo backend it
// can offer the mask image and the prompt text at the same time.
type selectionOwner struct {
	conn    *xgb.Conn
	window  xproto.Window
	atoms   atoms
	maxData int

	mu    sync.RWMutex
	offer map[xproto.Atom][]byte
}

type atoms struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	utf8      xproto.Atom
	textPlain xproto.Atom
	png       xproto.Atom
	transfer  xproto.Atom
	incr      xproto.Atom
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	mask := []uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify}
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, mask).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	a, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &selectionOwner{
		conn:    conn,
		window:  window,
		atoms:   a,
		maxData: maxPropertyBytes(xproto.Setup(conn).MaximumRequestLength),
	}
	go o.serve()
	return o, nil
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	names := []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "text/plain;charset=utf-8", "image/png", "THUMBMASK_TRANSFER", "INCR"}
	out := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atoms{}, fmt.Errorf("intern %s: %w", name, err)
		}
		out[i] = reply.Atom
	}
	return atoms{clipboard: out[0], targets: out[1], utf8: out[2], textPlain: out[3], png: out[4], transfer: out[5], incr: out[6]}, nil
}

func (o *selectionOwner) publish(p Payload) error {
	if len(p.PNG) > o.maxData || len(p.Text) > o.maxData {
		return fmt.Errorf("%w: %d bytes allowed", errTooLarge, o.maxData)
	}
	offer := map[xproto.Atom][]byte{}
	if len(p.PNG) > 0 {
		offer[o.atoms.png] = append([]byte(nil), p.PNG...)
	}
	if p.Text != "" {
		text := []byte(p.Text)
		offer[o.atoms.utf8] = text
		offer[o.atoms.textPlain] = text
		offer[xproto.AtomString] = text
	}
	o.mu.Lock()
	o.offer = offer
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.offer = nil
			o.mu.Unlock()
		}
	}
}

func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	o.mu.RLock()
	offer := o.offer
	o.mu.RUnlock()

	if e.Target == o.atoms.targets {
		targets := []xproto.Atom{o.atoms.targets}
		for atom := range offer {
			targets = append(targets, atom)
		}
		buf := make([]byte, len(targets)*4)
		for i, atom := range targets {
			xgb.Put32(buf[i*4:], uint32(atom))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	} else if data, ok := offer[e.Target]; ok {
		typ := e.Target
		if typ != o.atoms.png {
			typ = o.atoms.utf8
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, typ, 8, uint32(len(data)), data)
	} else {
		property = xproto.AtomNone
	}

	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// request converts the current selection to target on a throwaway
// connection so it does not compete with serve for events.
func (o *selectionOwner) request(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, o.atoms.clipboard, target, o.atoms.transfer, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	deadline := time.AfterFunc(requestTimeout, conn.Close)
	defer deadline.Stop()
	if _, err := awaitNotify(conn.WaitForEvent, o.atoms.transfer); err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(conn, true, window, o.atoms.transfer, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
	if err != nil {
		return nil, err
	}
	if reply.Type == o.atoms.incr {
		return nil, errIncrUnsupported
	}
	return append([]byte(nil), reply.Value...), nil
}

// awaitNotify reads events until the SelectionNotify for transfer arrives.
// next returns (nil, nil) once the connection is closed.
func awaitNotify(next func() (xgb.Event, xgb.Error), transfer xproto.Atom) (xproto.SelectionNotifyEvent, error) {
	for {
		ev, err := next()
		if err != nil {
			return xproto.SelectionNotifyEvent{}, err
		}
		if ev == nil {
			return xproto.SelectionNotifyEvent{}, errRequestTimeout
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok || (e.Property != xproto.AtomNone && e.Property != transfer) {
			continue
		}
		if e.Property == xproto.AtomNone {
			return e, errTargetUnavailable
		}
		return e, nil
	}
}

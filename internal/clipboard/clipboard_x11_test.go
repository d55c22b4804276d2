//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const transferAtom xproto.Atom = 300

func events(evs ...xgb.Event) func() (xgb.Event, xgb.Error) {
	return func() (xgb.Event, xgb.Error) {
		if len(evs) == 0 {
			return nil, nil
		}
		ev := evs[0]
		evs = evs[1:]
		return ev, nil
	}
}

func TestAwaitNotifySkipsUnrelatedEvents(t *testing.T) {
	next := events(
		xproto.PropertyNotifyEvent{Atom: transferAtom},
		xproto.SelectionNotifyEvent{Property: 999},
		xproto.SelectionNotifyEvent{Property: transferAtom, Target: 42},
	)
	e, err := awaitNotify(next, transferAtom)
	if err != nil {
		t.Fatalf("awaitNotify: %v", err)
	}
	if e.Target != 42 {
		t.Fatalf("target = %d, want 42", e.Target)
	}
}

func TestAwaitNotifyTargetUnavailable(t *testing.T) {
	next := events(xproto.SelectionNotifyEvent{Property: xproto.AtomNone})
	if _, err := awaitNotify(next, transferAtom); !errors.Is(err, errTargetUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestAwaitNotifyClosedConnectionTimesOut(t *testing.T) {
	next := events(xproto.PropertyNotifyEvent{Atom: transferAtom})
	if _, err := awaitNotify(next, transferAtom); !errors.Is(err, errRequestTimeout) {
		t.Fatalf("err = %v", err)
	}
}

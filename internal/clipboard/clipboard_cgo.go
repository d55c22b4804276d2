//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"os"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

func write(p Payload) error {
	if len(p.PNG) > 0 {
		clipboard.Write(clipboard.FmtImage, p.PNG)
		return nil
	}
	clipboard.Write(clipboard.FmtText, []byte(p.Text))
	return nil
}

func readPNG() ([]byte, error) { return clipboard.Read(clipboard.FmtImage), nil }

func readText() ([]byte, error) { return clipboard.Read(clipboard.FmtText), nil }

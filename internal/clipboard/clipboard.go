// Package clipboard publishes masks and prompt text to the system
// clipboard and reads source images back from it.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	"github.com/umair4234/Thumbgenai/internal/imageio"
)

var (
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errNoImage   = errors.New("clipboard does not contain image data")
	errNoText    = errors.New("clipboard does not contain text data")

	errTooLarge          = errors.New("clipboard payload exceeds the X server request size")
	errIncrUnsupported   = errors.New("clipboard owner sent an incremental transfer, which is not supported")
	errRequestTimeout    = errors.New("clipboard owner did not answer in time")
	errTargetUnavailable = errors.New("clipboard target unavailable")
)

// changePropertyHeader is the fixed part of an X ChangeProperty request.
const changePropertyHeader = 24

// maxPropertyBytes is the largest payload one ChangeProperty request can
// carry when the server's maximum request length is units 4-byte words.
func maxPropertyBytes(units uint16) int {
	return max(0, int(units)*4-changePropertyHeader)
}

// Payload is one clipboard publication. Either part may be empty. Backends
// that can only hold one format keep the image.
type Payload struct {
	PNG  []byte
	Text string
}

// Write publishes p.
func Write(p Payload) error {
	if len(p.PNG) == 0 && p.Text == "" {
		return errors.New("nothing to copy")
	}
	if err := ensureInit(); err != nil {
		return err
	}
	return write(p)
}

// WritePNG publishes already encoded PNG data.
func WritePNG(data []byte) error { return Write(Payload{PNG: data}) }

// WriteImage encodes img as PNG and publishes it.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return WritePNG(buf.Bytes())
}

// WriteText publishes text.
func WriteText(text string) error { return Write(Payload{Text: text}) }

// ReadImage decodes the image held on the clipboard.
func ReadImage() (*image.RGBA, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := readPNG()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoImage
	}
	img, _, err := imageio.Decode(data)
	return img, err
}

// ReadText returns the UTF-8 text held on the clipboard.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	data, err := readText()
	if err != nil {
		return "", err
	}
	if n := len(data); n > 0 && data[n-1] == 0 {
		data = data[:n-1]
	}
	if len(data) == 0 {
		return "", errNoText
	}
	return string(data), nil
}

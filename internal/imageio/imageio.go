// Package imageio loads source images from files, URLs or raw bytes.
package imageio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxSize caps how many bytes Load will read.
const MaxSize = 64 << 20

// ErrNotImage is returned for payloads that are not a supported raster
// format.
var ErrNotImage = errors.New("not a supported image")

var supported = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// Sniff reports the MIME type and extension of data.
func Sniff(data []byte) (mime, ext string, err error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", "", fmt.Errorf("sniff: %w", err)
	}
	if kind == filetype.Unknown || !supported[kind.MIME.Value] {
		return "", "", ErrNotImage
	}
	return kind.MIME.Value, kind.Extension, nil
}

// Decode decodes data into an RGBA image with a zero origin.
func Decode(data []byte) (*image.RGBA, string, error) {
	mime, _, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, mime, fmt.Errorf("decode %s: %w", mime, err)
	}
	rgba := clone.AsRGBA(img)
	if rgba.Rect.Min != (image.Point{}) {
		rgba.Rect = rgba.Rect.Sub(rgba.Rect.Min)
	}
	return rgba, mime, nil
}

// Read decodes an image from r.
func Read(r io.Reader) (*image.RGBA, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxSize)
	}
	img, _, err := Decode(data)
	return img, err
}

// Load reads an image from a local path or an http(s) URL.
func Load(ctx context.Context, ref string) (*image.RGBA, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetch(ctx, ref)
	}
	f, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return img, nil
}

func fetch(ctx context.Context, url string) (*image.RGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	img, err := Read(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return img, nil
}

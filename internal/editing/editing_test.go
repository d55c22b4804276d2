package editing

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/umair4234/Thumbgenai/internal/credentials"
	"github.com/umair4234/Thumbgenai/internal/geom"
	"github.com/umair4234/Thumbgenai/internal/masker"
	"github.com/umair4234/Thumbgenai/internal/prompts"
	"github.com/umair4234/Thumbgenai/internal/region"
	"github.com/umair4234/Thumbgenai/internal/render"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 120))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 120, 200, 255
	}
	return img
}

func maskedSnapshot(t *testing.T, texts ...string) (masker.Snapshot, image.Image) {
	t.Helper()
	img := testImage()
	m := masker.New(masker.WithImage(img), masker.WithEnabled(true), masker.WithBrushSize(6))
	m.Stroke(geom.Path{geom.Pt(10, 10), geom.Pt(40, 30)})
	m.Stroke(geom.Path{geom.Pt(150, 80), geom.Pt(180, 100)})
	for i, text := range texts {
		if !m.SetPrompt(i+1, text) {
			t.Fatalf("SetPrompt(%d) failed", i+1)
		}
	}
	return m.Snapshot(), img
}

func TestNewEditRequestMasked(t *testing.T) {
	snap, img := maskedSnapshot(t, "add a hat", "")
	req, err := NewEditRequest(snap, img, "")
	if err != nil {
		t.Fatalf("NewEditRequest: %v", err)
	}
	if req.Mode != ModeEdit || !req.Masked() {
		t.Fatalf("mode %q masked %v", req.Mode, req.Masked())
	}
	if len(req.Regions) != 1 || req.Regions[0].ID != 1 || req.Regions[0].Prompt != "add a hat" {
		t.Fatalf("regions = %+v", req.Regions)
	}
	// Stroke box (10,10)-(40,30) grown by the 3px brush radius.
	if got := req.Regions[0].Box; got != image.Rect(7, 7, 43, 33) {
		t.Fatalf("box = %v", got)
	}
	if len(req.Composite) == 0 || len(req.Source) == 0 {
		t.Fatal("payloads missing")
	}
}

func TestPixelBoxRoundsOutwardAndClips(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)
	cases := []struct {
		name string
		box  geom.BoundingBox
		want image.Rectangle
	}{
		{"fractional", geom.BoundingBox{MinX: 10.6, MinY: 20.2, MaxX: 30.1, MaxY: 40.7}, image.Rect(8, 17, 33, 44)},
		{"negative edge", geom.BoundingBox{MinX: 1.5, MinY: 1.5, MaxX: 20, MaxY: 20}, image.Rect(0, 0, 23, 23)},
		{"past the far edge", geom.BoundingBox{MinX: 90, MinY: 70, MaxX: 99.5, MaxY: 79.5}, image.Rect(87, 67, 100, 80)},
	}
	for _, tc := range cases {
		got := pixelBox(region.Region{ID: 1, BBox: tc.box}, 5, bounds)
		if got != tc.want {
			t.Errorf("%s: box = %v, want %v", tc.name, got, tc.want)
		}
	}
	// Without clipping a negative min must round down, not toward zero.
	if got := pixelBox(region.Region{BBox: geom.BoundingBox{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}}, 5, image.Rect(-10, -10, 10, 10)); got.Min != image.Pt(-2, -2) {
		t.Fatalf("min = %v, want (-2,-2)", got.Min)
	}
}

func TestNewEditRequestValidation(t *testing.T) {
	snap, img := maskedSnapshot(t)
	if _, err := NewEditRequest(snap, img, "ignored"); !errors.Is(err, prompts.ErrNoPrompts) {
		t.Fatalf("no prompts: err = %v", err)
	}
	if _, err := NewEditRequest(snap, nil, "x"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("no image: err = %v", err)
	}

	empty := masker.New(masker.WithImage(img), masker.WithEnabled(true)).Snapshot()
	if _, err := NewEditRequest(empty, img, ""); !errors.Is(err, prompts.ErrNoRegions) {
		t.Fatalf("no regions: err = %v", err)
	}

	off := masker.New(masker.WithImage(img)).Snapshot()
	if _, err := NewEditRequest(off, img, "  "); !errors.Is(err, prompts.ErrNoPrompts) {
		t.Fatalf("blank global: err = %v", err)
	}
	req, err := NewEditRequest(off, img, " make it night ")
	if err != nil {
		t.Fatalf("global edit: %v", err)
	}
	if req.Masked() || req.Prompt != "make it night" {
		t.Fatalf("global edit request %+v", req)
	}
}

func TestNewTextRequest(t *testing.T) {
	if _, err := NewTextRequest(" ", "16:9"); !errors.Is(err, prompts.ErrNoPrompts) {
		t.Fatalf("err = %v", err)
	}
	req, err := NewTextRequest("a red fox", "16:9")
	if err != nil {
		t.Fatalf("NewTextRequest: %v", err)
	}
	if req.Mode != ModeGenerate || req.ID == "" || req.AspectRatio != "16:9" {
		t.Fatalf("request %+v", req)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	snap, img := maskedSnapshot(t, "sky", "sea")
	req, err := NewEditRequest(snap, img, "")
	if err != nil {
		t.Fatalf("NewEditRequest: %v", err)
	}
	seed := int64(42)
	req.Seed = &seed
	var buf bytes.Buffer
	if err := WriteManifest(&buf, req.Manifest()); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if !strings.Contains(buf.String(), "box: [") {
		t.Fatalf("boxes should be flow style:\n%s", buf.String())
	}
	m, err := ReadManifest(&buf)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.ID != req.ID || m.Mode != ModeEdit || m.Seed == nil || *m.Seed != 42 {
		t.Fatalf("manifest %+v", m)
	}
	if m.Files.Mask != MaskFile || m.Files.Source != SourceFile {
		t.Fatalf("files %+v", m.Files)
	}
	if len(m.Regions) != 2 || m.Regions[1].Prompt != "sea" {
		t.Fatalf("regions %+v", m.Regions)
	}
}

func writeResult(t *testing.T, dir string) {
	t.Helper()
	data, err := render.EncodePNG(testImage())
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "result.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirBackendSubmitWritesJob(t *testing.T) {
	snap, img := maskedSnapshot(t, "sky")
	req, err := NewEditRequest(snap, img, "")
	if err != nil {
		t.Fatalf("NewEditRequest: %v", err)
	}
	b := NewDirBackend(t.TempDir(), nil)
	b.Key = "sk-abcdefgh1234"
	dir, err := b.Submit(req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, name := range []string{ManifestFile, SourceFile, MaskFile, CompositeFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s missing: %v", name, err)
		}
	}
	f, err := os.Open(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := ReadManifest(f)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Key != credentials.Hint(b.Key) || strings.Contains(m.Key, "abcdefgh") {
		t.Fatalf("manifest key = %q", m.Key)
	}
}

func TestDirBackendAwaitResult(t *testing.T) {
	req, err := NewTextRequest("a lighthouse", "1:1")
	if err != nil {
		t.Fatal(err)
	}
	b := NewDirBackend(t.TempDir(), nil)
	b.Poll = 5 * time.Millisecond
	dir, err := b.Submit(req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	writeResult(t, dir)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := b.Await(ctx, dir, req)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if res.MimeType != "image/png" || len(res.Data) == 0 {
		t.Fatalf("result %s, %d bytes", res.MimeType, len(res.Data))
	}
}

func TestDirBackendAwaitErrorAndTimeout(t *testing.T) {
	req, _ := NewTextRequest("a lighthouse", "")
	b := NewDirBackend(t.TempDir(), nil)
	b.Poll = 5 * time.Millisecond
	dir, err := b.Submit(req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.Await(ctx, dir, req); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("timeout err = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ErrorFile), []byte("quota: daily limit\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Await(context.Background(), dir, req); !errors.Is(err, ErrQuota) {
		t.Fatalf("worker err = %v", err)
	}
}

func TestEditWithoutSourceFails(t *testing.T) {
	b := NewDirBackend(t.TempDir(), nil)
	if _, err := b.Edit(context.Background(), &Request{ID: "x", Mode: ModeEdit}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v", err)
	}
}

type fakeBackend struct {
	key   string
	err   error
	calls *[]string
}

func (f fakeBackend) Generate(ctx context.Context, req *Request) (*Result, error) {
	*f.calls = append(*f.calls, f.key)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Data: []byte(f.key), MimeType: "image/png"}, nil
}

func (f fakeBackend) Edit(ctx context.Context, req *Request) (*Result, error) {
	return f.Generate(ctx, req)
}

func TestRotatingMovesToNextKey(t *testing.T) {
	ring, err := credentials.NewRing(credentials.StaticStore{"k1", "k2", "k3"})
	if err != nil {
		t.Fatal(err)
	}
	var calls []string
	r := &Rotating{Ring: ring, New: func(key string) Backend {
		b := fakeBackend{key: key, calls: &calls}
		if key == "k1" {
			b.err = ErrQuota
		}
		return b
	}}
	res, err := Run(context.Background(), r, &Request{Mode: ModeGenerate})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(res.Data) != "k2" || len(calls) != 2 {
		t.Fatalf("used %q after calls %v", res.Data, calls)
	}
	if ring.Current() != "k2" {
		t.Fatalf("ring should stay on the working key, at %q", ring.Current())
	}
}

func TestRotatingStopsOnOtherErrors(t *testing.T) {
	ring, _ := credentials.NewRing(credentials.StaticStore{"k1", "k2"})
	var calls []string
	boom := errors.New("boom")
	r := &Rotating{Ring: ring, New: func(key string) Backend {
		return fakeBackend{key: key, err: boom, calls: &calls}
	}}
	if _, err := r.Edit(context.Background(), &Request{}); !errors.Is(err, boom) || len(calls) != 1 {
		t.Fatalf("err = %v calls = %v", err, calls)
	}

	calls = nil
	r.New = func(key string) Backend {
		return fakeBackend{key: key, err: ErrUnauthorized, calls: &calls}
	}
	if _, err := r.Generate(context.Background(), &Request{}); !errors.Is(err, ErrUnauthorized) || len(calls) != 2 {
		t.Fatalf("err = %v calls = %v", err, calls)
	}
}

func TestRunUnknownMode(t *testing.T) {
	if _, err := Run(context.Background(), NewDirBackend(t.TempDir(), nil), &Request{Mode: "paint"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

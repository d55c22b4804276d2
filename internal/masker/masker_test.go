package masker

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/mobile/event/mouse"
	"pkt.systems/pslog"

	"github.com/umair4234/Thumbgenai/internal/geom"
)

func canvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 120, 200, 255
	}
	return img
}

func drag(m *Masker, pts ...geom.Point) {
	m.PointerDown(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		m.PointerMove(p.X, p.Y)
	}
	m.PointerUp()
}

func idsEqual(got []int, want ...int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestScenario(t *testing.T) {
	m := New(WithImage(canvas(1000, 1000)), WithBrushSize(40), WithEnabled(true))

	drag(m, geom.Pt(500, 500), geom.Pt(560, 520), geom.Pt(600, 500))
	if ids := m.RegionIDs(); !idsEqual(ids, 1) {
		t.Fatalf("after A ids = %v", ids)
	}

	drag(m, geom.Pt(650, 520), geom.Pt(700, 540))
	regs := m.Regions()
	if !idsEqual(regs.IDs(), 1) || len(regs[0].Paths) != 2 {
		t.Fatalf("after B regions = %+v", regs)
	}

	drag(m, geom.Pt(50, 50), geom.Pt(90, 60))
	if ids := m.RegionIDs(); !idsEqual(ids, 1, 2) {
		t.Fatalf("after C ids = %v", ids)
	}

	m.Undo()
	regs = m.Regions()
	if !idsEqual(regs.IDs(), 1) || len(regs[0].Paths) != 2 {
		t.Fatalf("after undo regions = %+v", regs)
	}
	if !m.State().CanRedo {
		t.Fatal("expected redo to be available")
	}

	m.Redo()
	if ids := m.RegionIDs(); !idsEqual(ids, 1, 2) {
		t.Fatalf("after redo ids = %v", ids)
	}

	m.Clear()
	if len(m.RegionIDs()) != 0 || m.State().CanUndo || m.State().CanRedo {
		t.Fatalf("after clear ids=%v state=%+v", m.RegionIDs(), m.State())
	}
}

func TestUndoRedoRestoresExactly(t *testing.T) {
	m := New(WithEnabled(true), WithBrushSize(10))
	strokes := []geom.Path{
		{geom.Pt(0, 0), geom.Pt(20, 0)},
		{geom.Pt(30, 0), geom.Pt(40, 5)},
		{geom.Pt(400, 400), geom.Pt(410, 420)},
		{geom.Pt(800, 10), geom.Pt(790, 30), geom.Pt(770, 35)},
	}
	for _, s := range strokes {
		m.Stroke(s)
	}
	final := m.Regions()
	for range strokes {
		m.Undo()
	}
	if m.Regions().Len() != 0 {
		t.Fatalf("undo %d times left %v", len(strokes), m.RegionIDs())
	}
	for range strokes {
		m.Redo()
	}
	if !m.Regions().Equal(final) {
		t.Fatal("redo did not restore the final region set")
	}
}

func TestTriggersAreEdgeTriggered(t *testing.T) {
	m := New(WithEnabled(true), WithBrushSize(10))
	m.Stroke(geom.Path{geom.Pt(0, 0), geom.Pt(10, 0)})
	m.Stroke(geom.Path{geom.Pt(500, 0), geom.Pt(510, 0)})
	m.Undo()
	m.Undo()
	if m.Regions().Len() != 0 {
		t.Fatal("two undo calls must undo twice")
	}
	m.Undo()
	if m.State().CanUndo {
		t.Fatal("undo at the start must stay a no-op")
	}
	m.Redo()
	m.Redo()
	if m.Regions().Len() != 2 {
		t.Fatal("two redo calls must redo twice")
	}
}

func TestIDsNotReusedAfterUndo(t *testing.T) {
	m := New(WithEnabled(true), WithBrushSize(10))
	m.Stroke(geom.Path{geom.Pt(0, 0), geom.Pt(10, 0)})
	m.Stroke(geom.Path{geom.Pt(500, 0), geom.Pt(510, 0)})
	m.Undo()
	m.Stroke(geom.Path{geom.Pt(0, 500), geom.Pt(10, 500)})
	if ids := m.RegionIDs(); !idsEqual(ids, 1, 3) {
		t.Fatalf("ids = %v, want [1 3]", ids)
	}
}

func TestClearRestartsNumbering(t *testing.T) {
	m := New(WithEnabled(true), WithBrushSize(10))
	m.Stroke(geom.Path{geom.Pt(0, 0), geom.Pt(10, 0)})
	m.Stroke(geom.Path{geom.Pt(500, 0), geom.Pt(510, 0)})
	m.Clear()
	m.Stroke(geom.Path{geom.Pt(0, 500), geom.Pt(10, 500)})
	if ids := m.RegionIDs(); !idsEqual(ids, 1) {
		t.Fatalf("ids after clear = %v, want [1]", ids)
	}
}

func TestDisabledIgnoresPointer(t *testing.T) {
	m := New(WithBrushSize(10))
	drag(m, geom.Pt(0, 0), geom.Pt(50, 50))
	if len(m.RegionIDs()) != 0 {
		t.Fatal("masking off must not record strokes")
	}
	m.SetEnabled(true)
	drag(m, geom.Pt(0, 0), geom.Pt(50, 50))
	m.SetEnabled(false)
	if len(m.RegionIDs()) != 1 || !m.State().CanUndo {
		t.Fatal("toggling masking must not touch history")
	}
}

func TestSinglePointClickIgnored(t *testing.T) {
	m := New(WithEnabled(true))
	drag(m, geom.Pt(10, 10))
	if len(m.RegionIDs()) != 0 || m.State().CanUndo {
		t.Fatal("a click without movement must not commit")
	}
}

func TestMouseClickIgnored(t *testing.T) {
	m := New(WithImage(canvas(200, 200)), WithEnabled(true))
	m.HandleMouse(mouse.Event{X: 50, Y: 50, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	m.HandleMouse(mouse.Event{X: 50, Y: 50, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	if len(m.RegionIDs()) != 0 || m.State().CanUndo {
		t.Fatalf("click committed: ids=%v state=%+v", m.RegionIDs(), m.State())
	}
}

func TestStrokeRequiresMaskingMode(t *testing.T) {
	m := New(WithBrushSize(10))
	m.Stroke(geom.Path{geom.Pt(0, 0), geom.Pt(10, 0)})
	if len(m.RegionIDs()) != 0 || m.State().CanUndo {
		t.Fatal("scripted stroke committed while masking is off")
	}
	m.SetEnabled(true)
	m.Stroke(geom.Path{geom.Pt(0, 0), geom.Pt(10, 0)})
	if !idsEqual(m.RegionIDs(), 1) {
		t.Fatalf("ids = %v after enabling", m.RegionIDs())
	}
}

func TestExportsAbsentUntilImageLoaded(t *testing.T) {
	var snaps []Snapshot
	m := New(WithEnabled(true), WithBrushSize(8), WithOnChange(func(s Snapshot) { snaps = append(snaps, s) }))
	if _, ok := m.Mask(); ok {
		t.Fatal("mask must be absent with no regions")
	}
	m.Stroke(geom.Path{geom.Pt(10, 10), geom.Pt(40, 40)})
	if _, ok := m.Composite(); ok {
		t.Fatal("composite must be absent before the image loads")
	}
	if _, ok := m.Mask(); ok {
		t.Fatal("mask must be absent before the image loads")
	}
	m.SetImage(canvas(64, 48))
	data, ok := m.Mask()
	if !ok {
		t.Fatal("mask missing after image load")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode mask: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Fatalf("mask bounds %v", img.Bounds())
	}
	if _, ok := m.Composite(); !ok {
		t.Fatal("composite missing after image load")
	}
	last := snaps[len(snaps)-1]
	if !last.ImageLoaded || last.Mask == nil {
		t.Fatalf("last snapshot %+v", last)
	}
	m.Clear()
	if _, ok := m.Mask(); ok {
		t.Fatal("mask must be absent after clear")
	}
}

func TestBrushSizeAppliesRetroactively(t *testing.T) {
	m := New(WithImage(canvas(100, 100)), WithEnabled(true), WithBrushSize(4))
	m.Stroke(geom.Path{geom.Pt(10, 50), geom.Pt(40, 50)})
	before, _ := m.Mask()
	m.SetBrushSize(20)
	after, _ := m.Mask()
	if bytes.Equal(before, after) {
		t.Fatal("changing the brush must re-render existing strokes")
	}
	img, err := png.Decode(bytes.NewReader(after))
	if err != nil {
		t.Fatal(err)
	}
	// 8px below the stroke is only covered by the wider brush.
	if r, _, _, _ := img.At(25, 58).RGBA(); r>>8 < 250 {
		t.Fatalf("pixel (25,58) not painted after brush change: %v", img.At(25, 58))
	}
}

func TestPromptsFollowRegions(t *testing.T) {
	m := New(WithEnabled(true), WithBrushSize(10))
	m.Stroke(geom.Path{geom.Pt(0, 0), geom.Pt(10, 0)})
	if !m.SetPrompt(1, "replace with a cat") {
		t.Fatal("SetPrompt(1) failed")
	}
	if m.SetPrompt(9, "nope") {
		t.Fatal("SetPrompt on unknown region succeeded")
	}
	m.Stroke(geom.Path{geom.Pt(500, 0), geom.Pt(510, 0)})
	ps := m.Prompts()
	if len(ps) != 2 || ps[0].Text != "replace with a cat" || ps[1].RegionID != 2 || ps[1].Text != "" {
		t.Fatalf("prompts = %+v", ps)
	}
	m.Undo()
	if ps := m.Prompts(); len(ps) != 1 || ps[0].RegionID != 1 {
		t.Fatalf("prompts after undo = %+v", ps)
	}
}

func TestHandleMouseCommits(t *testing.T) {
	m := New(WithImage(canvas(200, 200)), WithEnabled(true))
	redraws := 0
	m.onRedraw = func() { redraws++ }
	m.HandleMouse(mouse.Event{X: 10, Y: 10, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	m.HandleMouse(mouse.Event{X: 30, Y: 10, Direction: mouse.DirNone})
	if !m.Drawing() {
		t.Fatal("expected a drag in progress")
	}
	if ov := m.Overlay(); ov == nil || ov.RGBAAt(20, 10).A == 0 {
		t.Fatal("in-progress stroke missing from overlay")
	}
	m.HandleMouse(mouse.Event{X: 50, Y: 10, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	if len(m.RegionIDs()) != 1 {
		t.Fatal("mouse drag did not commit")
	}
	if redraws == 0 {
		t.Fatal("no redraw requested")
	}
}

func TestOverlayNilWithoutImage(t *testing.T) {
	if New().Overlay() != nil {
		t.Fatal("overlay must be nil before the image loads")
	}
}

func TestLogsCommits(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.DebugLevel,
		VerboseFields: true,
	})
	m := New(WithLogger(logger), WithEnabled(true))
	m.Stroke(geom.Path{geom.Pt(0, 0), geom.Pt(10, 0)})
	found := false
	for _, e := range capture.entries(t) {
		if e["msg"] == "stroke committed" || e["message"] == "stroke committed" {
			found = true
			if e["regions"] != float64(1) {
				t.Fatalf("regions field = %v", e["regions"])
			}
		}
	}
	if !found {
		t.Fatalf("no commit log entry in %q", capture.buf.String())
	}
}

func TestCompositeUsesSourcePixels(t *testing.T) {
	src := canvas(80, 80)
	m := New(WithImage(src), WithEnabled(true), WithBrushSize(6))
	m.Stroke(geom.Path{geom.Pt(10, 10), geom.Pt(30, 10)})
	data, ok := m.Composite()
	if !ok {
		t.Fatal("composite absent")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got := color.RGBAModel.Convert(img.At(70, 70)); got != src.RGBAAt(70, 70) {
		t.Fatalf("pixel far from strokes = %v", got)
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) entries(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(c.buf.Bytes(), []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("parse log entry: %v", err)
		}
		out = append(out, entry)
	}
	return out
}

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"github.com/umair4234/Thumbgenai/internal/capture"
	"github.com/umair4234/Thumbgenai/internal/clipboard"
	"github.com/umair4234/Thumbgenai/internal/credentials"
	"github.com/umair4234/Thumbgenai/internal/editing"
	"github.com/umair4234/Thumbgenai/internal/export"
	"github.com/umair4234/Thumbgenai/internal/geom"
	"github.com/umair4234/Thumbgenai/internal/imageio"
	"github.com/umair4234/Thumbgenai/internal/masker"
	"github.com/umair4234/Thumbgenai/internal/notify"
	"github.com/umair4234/Thumbgenai/internal/prompts"
	"github.com/umair4234/Thumbgenai/internal/versions"
)

// session is the state behind one interactive run.
type session struct {
	ctx      context.Context
	log      pslog.Logger
	out      io.Writer
	m        *masker.Masker
	tree     *versions.Tree
	notifier *notify.Notifier
	keys     credentials.Store

	global     string
	aspect     string
	backendDir string
	wait       time.Duration
}

func newSession(ctx context.Context, log pslog.Logger, out io.Writer, m *masker.Masker) *session {
	return &session{
		ctx:        ctx,
		log:        log,
		out:        out,
		m:          m,
		tree:       versions.New(),
		keys:       credentials.EnvStore{},
		backendDir: "spool",
	}
}

var errUnknownCommand = errors.New("unknown command")

// executeLine runs one command. done is true when the session should end.
func (s *session) executeLine(line string) (done bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(name) {
	case "exit", "quit":
		return true, nil
	case "load":
		err = s.load(rest)
	case "paste":
		err = s.paste()
	case "grab":
		err = s.grab(rest)
	case "mask":
		err = s.mask(rest)
	case "brush":
		err = s.brush(rest)
	case "stroke":
		err = s.stroke(rest)
	case "undo":
		s.m.Undo()
		s.printState()
	case "redo":
		s.m.Redo()
		s.printState()
	case "clear":
		s.m.Clear()
		s.printState()
	case "regions":
		s.printRegions()
	case "prompt":
		err = s.prompt(rest)
	case "global":
		s.global = rest
	case "export":
		err = s.export(rest)
	case "brief":
		err = s.brief(rest)
	case "copy":
		err = s.copy()
	case "submit":
		err = s.submit()
	case "generate":
		err = s.generate(rest)
	case "versions":
		err = s.showVersions(rest)
	case "checkout":
		err = s.checkout(rest)
	case "state":
		s.printState()
	default:
		err = fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	return false, err
}

func (s *session) useImage(img *image.RGBA) {
	s.m.Clear()
	s.m.SetImage(img)
}

func (s *session) load(ref string) error {
	if ref == "" {
		return errors.New("usage: load PATH|URL")
	}
	img, err := imageio.Load(s.ctx, ref)
	if err != nil {
		return err
	}
	if _, err := s.tree.Add(uuid.Nil, img, ""); err != nil {
		return err
	}
	s.useImage(img)
	fmt.Fprintf(s.out, "loaded %s (%dx%d)\n", filepath.Base(ref), img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func (s *session) paste() error {
	img, err := clipboard.ReadImage()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	if _, err := s.tree.Add(uuid.Nil, img, ""); err != nil {
		return err
	}
	s.useImage(img)
	fmt.Fprintf(s.out, "pasted %dx%d image\n", img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// grab loads a screenshot. "select" opens the portal picker and an
// X,Y,W,H argument crops the shot.
func (s *session) grab(arg string) error {
	var opts capture.Options
	for _, f := range strings.Fields(arg) {
		if f == "select" {
			opts.Interactive = true
			continue
		}
		r, err := capture.ParseRect(f)
		if err != nil {
			return err
		}
		opts.Region = r
	}
	img, err := capture.Grab(pslog.ContextWithLogger(s.ctx, s.log), opts)
	if err != nil {
		return fmt.Errorf("grab: %w", err)
	}
	if _, err := s.tree.Add(uuid.Nil, img, ""); err != nil {
		return err
	}
	s.useImage(img)
	fmt.Fprintf(s.out, "grabbed %dx%d screenshot\n", img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func (s *session) mask(arg string) error {
	switch strings.ToLower(arg) {
	case "on":
		s.m.SetEnabled(true)
	case "off":
		s.m.SetEnabled(false)
	default:
		return errors.New("usage: mask on|off")
	}
	s.printState()
	return nil
}

func (s *session) brush(arg string) error {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid brush size %q", arg)
	}
	s.m.SetBrushSize(v)
	return nil
}

// parsePath reads "x,y x,y ..." into a path.
func parsePath(arg string) (geom.Path, error) {
	var p geom.Path
	for _, f := range strings.Fields(arg) {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q, want x,y", f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", f, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", f, err)
		}
		p = append(p, geom.Pt(x, y))
	}
	return p, nil
}

func (s *session) stroke(arg string) error {
	if !s.m.Enabled() {
		return errors.New("masking is off, run 'mask on' first")
	}
	p, err := parsePath(arg)
	if err != nil {
		return err
	}
	if len(p) < 2 {
		return errors.New("a stroke needs at least two points")
	}
	s.m.Stroke(p)
	s.printState()
	return nil
}

func (s *session) prompt(arg string) error {
	ids, text, _ := strings.Cut(arg, " ")
	id, err := strconv.Atoi(ids)
	if err != nil {
		return errors.New("usage: prompt ID TEXT")
	}
	if !s.m.SetPrompt(id, strings.TrimSpace(text)) {
		return fmt.Errorf("no region %d", id)
	}
	return nil
}

func (s *session) export(dir string) error {
	if dir == "" {
		return errors.New("usage: export DIR")
	}
	snap := s.m.Snapshot()
	paths, err := export.Save(dir, snap)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(s.out, "wrote", p)
	}
	var preview image.Image
	if img, _, err := imageio.Decode(snap.Composite); err == nil {
		preview = img
	}
	s.notifier.Export(dir, preview)
	return nil
}

func (s *session) brief(path string) error {
	if path == "" {
		return errors.New("usage: brief FILE")
	}
	snap := s.m.Snapshot()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Brief(f, "Edit brief", snap.Composite, snap.Prompts); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "wrote", path)
	return nil
}

func (s *session) copy() error {
	snap := s.m.Snapshot()
	if snap.Mask == nil {
		return export.ErrNothingToExport
	}
	var text strings.Builder
	for _, p := range prompts.NonEmpty(snap.Prompts) {
		fmt.Fprintf(&text, "%d: %s\n", p.RegionID, p.Text)
	}
	if err := clipboard.Write(clipboard.Payload{PNG: snap.Mask, Text: text.String()}); err != nil {
		return err
	}
	s.notifier.Copy("mask")
	fmt.Fprintln(s.out, "copied mask to clipboard")
	return nil
}

func (s *session) submit() error {
	req, err := editing.NewEditRequest(s.m.Snapshot(), s.m.Image(), s.global)
	if err != nil {
		return err
	}
	return s.dispatch(req)
}

func (s *session) generate(text string) error {
	req, err := editing.NewTextRequest(text, s.aspect)
	if err != nil {
		return err
	}
	return s.dispatch(req)
}

// backend returns a key rotating backend when API keys are configured and
// a plain spool backend otherwise.
func (s *session) backend() editing.Backend {
	ring, err := credentials.NewRing(s.keys)
	if err != nil {
		return editing.NewDirBackend(s.backendDir, s.log)
	}
	return &editing.Rotating{Ring: ring, Log: s.log, New: func(key string) editing.Backend {
		b := editing.NewDirBackend(s.backendDir, s.log)
		b.Key = key
		return b
	}}
}

// dispatch queues req. With a wait configured it also blocks for the
// result and records it as a new version.
func (s *session) dispatch(req *editing.Request) error {
	if s.wait <= 0 {
		b := editing.NewDirBackend(s.backendDir, s.log)
		if ring, err := credentials.NewRing(s.keys); err == nil {
			b.Key = ring.Current()
		}
		dir, err := b.Submit(req)
		if err != nil {
			return err
		}
		s.notifier.Submit(req.ID, len(req.Regions))
		fmt.Fprintf(s.out, "queued %s in %s\n", req.ID, dir)
		return nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.wait)
	defer cancel()
	s.notifier.Submit(req.ID, len(req.Regions))
	res, err := editing.Run(ctx, s.backend(), req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.ID, err)
	}
	img, _, err := imageio.Decode(res.Data)
	if err != nil {
		return fmt.Errorf("request %s result: %w", req.ID, err)
	}
	parent := uuid.Nil
	if head := s.tree.Head(); head != nil && req.Mode == editing.ModeEdit {
		parent = head.ID
	}
	v, err := s.tree.Add(parent, img, describe(req))
	if err != nil {
		return err
	}
	s.useImage(img)
	fmt.Fprintf(s.out, "version %s (%dx%d)\n", v.ID, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func describe(req *editing.Request) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	parts := make([]string, 0, len(req.Regions))
	for _, r := range req.Regions {
		parts = append(parts, fmt.Sprintf("%d: %s", r.ID, r.Prompt))
	}
	return strings.Join(parts, "; ")
}

func (s *session) checkout(prefix string) error {
	if prefix == "" {
		return errors.New("usage: checkout ID")
	}
	var match *versions.Version
	for _, v := range s.tree.All() {
		if strings.HasPrefix(v.ID.String(), prefix) {
			if match != nil {
				return fmt.Errorf("version prefix %q is ambiguous", prefix)
			}
			match = v
		}
	}
	if match == nil {
		return versions.ErrUnknownVersion
	}
	if err := s.tree.SetHead(match.ID); err != nil {
		return err
	}
	s.useImage(match.Image)
	fmt.Fprintf(s.out, "checked out %s\n", match.ID)
	line, err := s.tree.Lineage(match.ID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(line))
	for _, v := range line {
		ids = append(ids, v.ID.String()[:8])
	}
	fmt.Fprintf(s.out, "lineage %s\n", strings.Join(ids, " > "))
	return nil
}

// showVersions prints the version tree with the head marked, and writes
// every thumbnail into dir when one is given.
func (s *session) showVersions(dir string) error {
	if s.tree.Len() == 0 {
		fmt.Fprintln(s.out, "no versions")
		return nil
	}
	var head uuid.UUID
	if h := s.tree.Head(); h != nil {
		head = h.ID
	}
	var walk func(vs []*versions.Version, depth int)
	walk = func(vs []*versions.Version, depth int) {
		for _, v := range vs {
			mark := " "
			if v.ID == head {
				mark = "*"
			}
			fmt.Fprintf(s.out, "%s %s%s  %s\n", mark, strings.Repeat("  ", depth), v.ID.String()[:8], v.Prompt)
			walk(s.tree.Children(v.ID), depth+1)
		}
	}
	walk(s.tree.Roots(), 0)
	if dir == "" {
		return nil
	}
	paths, err := export.SaveThumbnails(dir, s.tree.All())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "wrote %d thumbnails to %s\n", len(paths), dir)
	return nil
}

func (s *session) printRegions() {
	snap := s.m.Snapshot()
	if snap.Regions.Len() == 0 {
		fmt.Fprintln(s.out, "no regions")
		return
	}
	for _, r := range snap.Regions {
		text, _ := prompts.Get(snap.Prompts, r.ID)
		fmt.Fprintf(s.out, "%d\t%.0f,%.0f %.0f,%.0f\t%d strokes\t%s\n",
			r.ID, r.BBox.MinX, r.BBox.MinY, r.BBox.MaxX, r.BBox.MaxY, len(r.Paths), text)
	}
}

func (s *session) printState() {
	snap := s.m.Snapshot()
	mode := "off"
	if snap.Enabled {
		mode = "on"
	}
	ids := make([]string, len(snap.RegionIDs))
	for i, id := range snap.RegionIDs {
		ids[i] = strconv.Itoa(id)
	}
	fmt.Fprintf(s.out, "mask %s, brush %g, regions [%s], undo %t, redo %t\n",
		mode, snap.BrushSize, strings.Join(ids, " "), snap.State.CanUndo, snap.State.CanRedo)
}

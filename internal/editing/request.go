// Package editing packages masked edits and text-to-image requests for an
// image generation backend.
package editing

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/umair4234/Thumbgenai/internal/masker"
	"github.com/umair4234/Thumbgenai/internal/prompts"
	"github.com/umair4234/Thumbgenai/internal/region"
	"github.com/umair4234/Thumbgenai/internal/render"
)

// Mode distinguishes fresh generation from editing an existing image.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
)

var (
	// ErrNoImage is returned when an edit is requested before the source
	// image is loaded.
	ErrNoImage = errors.New("no source image loaded")
	// ErrEmptyMask is returned when masking is on but no mask could be
	// rendered.
	ErrEmptyMask = errors.New("mask is empty")
)

// RegionInstruction is one numbered region and what to do with it.
type RegionInstruction struct {
	ID     int
	Prompt string
	Box    image.Rectangle
}

// Request is a single generation or edit job.
type Request struct {
	ID             string
	Mode           Mode
	Created        time.Time
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	Seed           *int64

	// PNG payloads. Mask and Composite are set only for masked edits.
	Source    []byte
	Mask      []byte
	Composite []byte
	Regions   []RegionInstruction
}

// Masked reports whether the request carries a mask.
func (r *Request) Masked() bool { return len(r.Mask) > 0 }

// Result is what a backend returns.
type Result struct {
	Data     []byte
	MimeType string
	UsedSeed int64
}

// Backend runs requests. Implementations own their transport.
type Backend interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
	Edit(ctx context.Context, req *Request) (*Result, error)
}

// Run dispatches req to the backend method matching its mode.
func Run(ctx context.Context, b Backend, req *Request) (*Result, error) {
	switch req.Mode {
	case ModeGenerate:
		return b.Generate(ctx, req)
	case ModeEdit:
		return b.Edit(ctx, req)
	}
	return nil, fmt.Errorf("unknown request mode %q", req.Mode)
}

// NewTextRequest builds a text-to-image request.
func NewTextRequest(prompt, aspect string) (*Request, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, prompts.ErrNoPrompts
	}
	return &Request{
		ID:          uuid.NewString(),
		Mode:        ModeGenerate,
		Created:     time.Now().UTC(),
		Prompt:      prompt,
		AspectRatio: aspect,
	}, nil
}

// NewEditRequest builds an edit of source from the masking state. With
// masking on, every region that has prompt text becomes an instruction
// and the mask and composite are attached; regions without text are left
// out. With masking off, global is the whole-image instruction.
func NewEditRequest(snap masker.Snapshot, source image.Image, global string) (*Request, error) {
	if source == nil {
		return nil, ErrNoImage
	}
	src, err := render.EncodePNG(source)
	if err != nil {
		return nil, err
	}
	req := &Request{
		ID:      uuid.NewString(),
		Mode:    ModeEdit,
		Created: time.Now().UTC(),
		Prompt:  strings.TrimSpace(global),
		Source:  src,
	}
	if !snap.Enabled {
		if req.Prompt == "" {
			return nil, prompts.ErrNoPrompts
		}
		return req, nil
	}

	if err := prompts.Validate(true, snap.Regions.Len(), snap.Prompts); err != nil {
		return nil, err
	}
	if snap.Mask == nil {
		return nil, ErrEmptyMask
	}
	req.Mask = snap.Mask
	req.Composite = snap.Composite
	for _, p := range prompts.NonEmpty(snap.Prompts) {
		r, ok := snap.Regions.Find(p.RegionID)
		if !ok {
			continue
		}
		req.Regions = append(req.Regions, RegionInstruction{ID: r.ID, Prompt: p.Text, Box: pixelBox(r, snap.BrushSize, source.Bounds())})
	}
	return req, nil
}

// pixelBox is the painted area of r: its stroke box grown by the brush
// radius, rounded outwards and clipped to the image.
func pixelBox(r region.Region, brush float64, bounds image.Rectangle) image.Rectangle {
	b := r.BBox.Expand(brush / 2)
	box := image.Rect(
		int(math.Floor(b.MinX)), int(math.Floor(b.MinY)),
		int(math.Ceil(b.MaxX)), int(math.Ceil(b.MaxY)),
	)
	return box.Intersect(bounds)
}

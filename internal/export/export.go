// Package export writes the masking result to disk: mask and composite
// images, the prompt list, and a printable PDF brief.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/umair4234/Thumbgenai/internal/masker"
	"github.com/umair4234/Thumbgenai/internal/prompts"
	"github.com/umair4234/Thumbgenai/internal/versions"
)

// ErrNothingToExport is returned when the masker has no mask yet.
var ErrNothingToExport = errors.New("nothing to export: load an image and draw a region first")

// File names written by Save.
const (
	MaskFile      = "mask.png"
	CompositeFile = "composite.png"
	PromptsFile   = "prompts.yaml"
)

type promptsDoc struct {
	BrushSize float64                 `yaml:"brush_size"`
	Regions   []prompts.RegionPrompt `yaml:"regions"`
}

// Save writes the mask, composite and prompts of snap into dir and returns
// the written paths.
func Save(dir string, snap masker.Snapshot) ([]string, error) {
	if snap.Mask == nil || snap.Composite == nil {
		return nil, ErrNothingToExport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	doc, err := yaml.Marshal(promptsDoc{BrushSize: snap.BrushSize, Regions: snap.Prompts})
	if err != nil {
		return nil, fmt.Errorf("encode prompts: %w", err)
	}
	var written []string
	for _, f := range []struct {
		name string
		data []byte
	}{
		{MaskFile, snap.Mask},
		{CompositeFile, snap.Composite},
		{PromptsFile, doc},
	} {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// SaveThumbnails writes the thumbnail of each version into dir as
// <id>.png and returns the written paths.
func SaveThumbnails(dir string, vs []*versions.Version) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	var written []string
	for _, v := range vs {
		var buf bytes.Buffer
		if err := png.Encode(&buf, v.Thumb); err != nil {
			return written, fmt.Errorf("encode thumbnail %s: %w", v.ID, err)
		}
		path := filepath.Join(dir, v.ID.String()+".png")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

const (
	pageWidth  = 210.0
	margin     = 15.0
	maxImageMM = 150.0
)

// Brief writes a one page A4 PDF showing the composite preview above the
// numbered region prompts. Regions without text are listed as unassigned.
func Brief(w io.Writer, title string, composite []byte, list []prompts.RegionPrompt) error {
	if len(composite) == 0 {
		return ErrNothingToExport
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(composite))
	if err != nil {
		return fmt.Errorf("composite: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("composite", opt, bytes.NewReader(composite))
	iw := pageWidth - 2*margin
	ih := iw * float64(cfg.Height) / float64(cfg.Width)
	if ih > maxImageMM {
		iw = iw * maxImageMM / ih
		ih = maxImageMM
	}
	y := pdf.GetY()
	pdf.ImageOptions("composite", margin, y, iw, ih, false, opt, 0, "")
	pdf.SetY(y + ih + 6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Regions", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if len(list) == 0 {
		pdf.CellFormat(0, 6, "No regions drawn.", "", 1, "L", false, 0, "")
	}
	for _, p := range list {
		text := p.Text
		if text == "" {
			text = "(no instruction)"
		}
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", p.RegionID, text)), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write brief: %w", err)
	}
	return nil
}

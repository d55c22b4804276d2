package editing

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// File names used inside a job directory.
const (
	ManifestFile  = "request.yaml"
	SourceFile    = "source.png"
	MaskFile      = "mask.png"
	CompositeFile = "composite.png"
	ErrorFile     = "error.txt"
	ResultPrefix  = "result."
)

// Manifest is the YAML description of a request written next to its image
// files.
type Manifest struct {
	ID             string           `yaml:"id"`
	Mode           Mode             `yaml:"mode"`
	Created        time.Time        `yaml:"created"`
	Prompt         string           `yaml:"prompt,omitempty"`
	NegativePrompt string           `yaml:"negative_prompt,omitempty"`
	AspectRatio    string           `yaml:"aspect_ratio,omitempty"`
	Seed           *int64           `yaml:"seed,omitempty"`
	Key            string           `yaml:"key,omitempty"`
	Files          ManifestFiles    `yaml:"files"`
	Regions        []ManifestRegion `yaml:"regions,omitempty"`
}

// ManifestFiles names the payload files relative to the manifest.
type ManifestFiles struct {
	Source    string `yaml:"source,omitempty"`
	Mask      string `yaml:"mask,omitempty"`
	Composite string `yaml:"composite,omitempty"`
}

// ManifestRegion is one labelled mask region. Box is min x, min y, max x,
// max y in source pixels.
type ManifestRegion struct {
	ID     int    `yaml:"id"`
	Prompt string `yaml:"prompt"`
	Box    [4]int `yaml:"box,flow"`
}

// Manifest describes req. Payload file names are filled in for the
// payloads req carries.
func (r *Request) Manifest() Manifest {
	m := Manifest{
		ID:             r.ID,
		Mode:           r.Mode,
		Created:        r.Created,
		Prompt:         r.Prompt,
		NegativePrompt: r.NegativePrompt,
		AspectRatio:    r.AspectRatio,
		Seed:           r.Seed,
	}
	if len(r.Source) > 0 {
		m.Files.Source = SourceFile
	}
	if len(r.Mask) > 0 {
		m.Files.Mask = MaskFile
	}
	if len(r.Composite) > 0 {
		m.Files.Composite = CompositeFile
	}
	for _, reg := range r.Regions {
		m.Regions = append(m.Regions, ManifestRegion{
			ID:     reg.ID,
			Prompt: reg.Prompt,
			Box:    [4]int{reg.Box.Min.X, reg.Box.Min.Y, reg.Box.Max.X, reg.Box.Max.Y},
		})
	}
	return m
}

// WriteManifest encodes m as YAML.
func WriteManifest(w io.Writer, m Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return enc.Close()
}

// ReadManifest decodes a manifest.
func ReadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

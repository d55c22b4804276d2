package theme

import (
	"embed"
	"image/color"
	"strings"
)

// EmbeddedThemes holds the themes shipped with the binary.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

// Theme defines the colour palette for the editor window and the mask
// surfaces.
type Theme struct {
	Name string

	// Window
	Background color.RGBA // behind the canvas
	Foreground color.RGBA // status text
	StatusBar  color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Masking
	MaskHighlight color.RGBA // stroke colour, alpha is applied per surface
	LabelFill     color.RGBA
	LabelOutline  color.RGBA
	Disabled      color.RGBA // status bar accent while masking is off
}

// Default returns the hardcoded default theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:          "Default",
		Background:    color.RGBA{40, 40, 40, 255},
		Foreground:    color.RGBA{235, 235, 235, 255},
		StatusBar:     color.RGBA{25, 25, 25, 255},
		CheckerLight:  color.RGBA{220, 220, 220, 255},
		CheckerDark:   color.RGBA{192, 192, 192, 255},
		MaskHighlight: color.RGBA{255, 40, 120, 255},
		LabelFill:     color.RGBA{255, 255, 255, 255},
		LabelOutline:  color.RGBA{0, 0, 0, 255},
		Disabled:      color.RGBA{120, 120, 120, 255},
	}
}

// Names lists the embedded theme names without extension.
func Names() []string {
	entries, err := EmbeddedThemes.ReadDir("defaults")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".theme"); ok {
			out = append(out, name)
		}
	}
	return out
}

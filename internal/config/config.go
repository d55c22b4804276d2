package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/umair4234/Thumbgenai/internal/theme"
)

// DefaultBrushSize is used when the rc file does not set brush_size.
const DefaultBrushSize = 24

// Notify holds notification settings.
type Notify struct {
	Export bool
	Submit bool
	Copy   bool
}

// Config holds the application configuration.
type Config struct {
	Theme      string
	OutputDir  string
	BackendDir string
	BrushSize  float64
	Notify     Notify
	Themes     map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		BrushSize: DefaultBrushSize,
		Themes:    make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.OutputDir != "" {
		fmt.Fprintf(&sb, "output_dir = %s\n", c.OutputDir)
	}
	if c.BackendDir != "" {
		fmt.Fprintf(&sb, "backend_dir = %s\n", c.BackendDir)
	}
	fmt.Fprintf(&sb, "brush_size = %s\n", strconv.FormatFloat(c.BrushSize, 'g', -1, 64))
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "submit = %v\n", c.Notify.Submit)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, kv := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", kv[0], kv[1])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Package prompts keeps one editable text prompt per region.
package prompts

import (
	"errors"
	"strings"
)

var (
	// ErrNoRegions is returned when masking is on but nothing is painted.
	ErrNoRegions = errors.New("masking is enabled but no regions are marked")
	// ErrNoPrompts is returned when every prompt is blank.
	ErrNoPrompts = errors.New("at least one region needs a prompt")
)

// RegionPrompt is the instruction attached to one region.
type RegionPrompt struct {
	RegionID int    `yaml:"region" json:"region"`
	Text     string `yaml:"prompt" json:"prompt"`
}

// Reconcile returns exactly one entry per id, in the order of ids. Text
// from prev is kept for ids that still exist, new ids start blank and ids
// missing from ids are dropped.
func Reconcile(ids []int, prev []RegionPrompt) []RegionPrompt {
	text := make(map[int]string, len(prev))
	for _, p := range prev {
		text[p.RegionID] = p.Text
	}
	seen := make(map[int]bool, len(ids))
	out := make([]RegionPrompt, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, RegionPrompt{RegionID: id, Text: text[id]})
	}
	return out
}

// SetText returns a copy of list with the text for id replaced. It reports
// false and returns list unchanged when id has no entry.
func SetText(list []RegionPrompt, id int, text string) ([]RegionPrompt, bool) {
	for i, p := range list {
		if p.RegionID != id {
			continue
		}
		out := append([]RegionPrompt(nil), list...)
		out[i].Text = text
		return out, true
	}
	return list, false
}

// Get returns the text for id.
func Get(list []RegionPrompt, id int) (string, bool) {
	for _, p := range list {
		if p.RegionID == id {
			return p.Text, true
		}
	}
	return "", false
}

// NonEmpty returns the entries whose text is not blank, trimmed.
func NonEmpty(list []RegionPrompt) []RegionPrompt {
	var out []RegionPrompt
	for _, p := range list {
		if t := strings.TrimSpace(p.Text); t != "" {
			out = append(out, RegionPrompt{RegionID: p.RegionID, Text: t})
		}
	}
	return out
}

// Validate checks whether a masked edit can be submitted.
func Validate(maskingEnabled bool, regionCount int, list []RegionPrompt) error {
	if maskingEnabled && regionCount == 0 {
		return ErrNoRegions
	}
	if len(NonEmpty(list)) == 0 {
		return ErrNoPrompts
	}
	return nil
}

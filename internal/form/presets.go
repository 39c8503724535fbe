package form

import "strings"

// Preset is a selectable mood with the accent the page adopts for it.
type Preset struct {
	Label  string
	Accent string
}

const DefaultAccent = "accent"

var Presets = []Preset{
	{Label: "Cozy", Accent: "accent-amber"},
	{Label: "Adventurous", Accent: "accent-teal"},
	{Label: "Nostalgic", Accent: "accent-sepia"},
	{Label: "Uplifting", Accent: "accent-sun"},
	{Label: "Calm", Accent: "accent-sky"},
	{Label: "Thoughtful", Accent: "accent-mauve"},
	{Label: "Melancholic", Accent: "accent-slate"},
	{Label: "Romantic", Accent: "accent-rose"},
}

// ResultCounts are the selectable result counts.
var ResultCounts = []int{3, 6, 9, 12}

const DefaultResultCount = 6

// LookupPreset matches case-insensitively.
func LookupPreset(label string) (Preset, bool) {
	label = strings.TrimSpace(label)
	for _, p := range Presets {
		if strings.EqualFold(p.Label, label) {
			return p, true
		}
	}
	return Preset{}, false
}

// AccentFor derives the display accent for a mood string.
func AccentFor(mood string) string {
	if p, ok := LookupPreset(mood); ok {
		return p.Accent
	}
	return DefaultAccent
}

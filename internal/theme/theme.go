// Package theme persists the light/dark preference and maps it to styles.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/taigrr/jotter/internal/render"
	"github.com/taigrr/jotter/internal/storage"
)

// StorageKey is the storage key holding the preference.
const StorageKey = "theme"

// Mode is a theme preference.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode parses "light" or "dark".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q: want light or dark", s)
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Preference reads and writes the stored mode.
type Preference struct {
	area *storage.Area
}

// NewPreference creates a Preference over area.
func NewPreference(area *storage.Area) *Preference {
	return &Preference{area: area}
}

// Load returns the stored mode. Anything other than "dark" is light.
func (p *Preference) Load() Mode {
	data, ok, err := p.area.Get(StorageKey)
	if err != nil || !ok || Mode(strings.TrimSpace(string(data))) != Dark {
		return Light
	}
	return Dark
}

// Set stores m.
func (p *Preference) Set(m Mode) error {
	return p.area.Set(StorageKey, []byte(m))
}

// Toggle flips the stored mode and returns the new one.
func (p *Preference) Toggle() (Mode, error) {
	next := p.Load().Other()
	if err := p.Set(next); err != nil {
		return p.Load(), err
	}
	return next, nil
}

var palettes = map[Mode]render.Palette{
	Light: {
		Text:     lipgloss.Color("#1F2937"),
		Muted:    lipgloss.Color("#6B7280"),
		Accent:   lipgloss.Color("#4F46E5"),
		Border:   lipgloss.Color("#D1D5DB"),
		Selected: lipgloss.Color("#4F46E5"),
		Danger:   lipgloss.Color("#DC2626"),
		TagColors: map[string]lipgloss.Color{
			"tag-work":      lipgloss.Color("#2563EB"),
			"tag-personal":  lipgloss.Color("#059669"),
			"tag-ideas":     lipgloss.Color("#D97706"),
			"tag-reminders": lipgloss.Color("#DB2777"),
		},
	},
	Dark: {
		Text:     lipgloss.Color("#F9FAFB"),
		Muted:    lipgloss.Color("#9CA3AF"),
		Accent:   lipgloss.Color("#818CF8"),
		Border:   lipgloss.Color("#374151"),
		Selected: lipgloss.Color("#7C3AED"),
		Danger:   lipgloss.Color("#F87171"),
		TagColors: map[string]lipgloss.Color{
			"tag-work":      lipgloss.Color("#60A5FA"),
			"tag-personal":  lipgloss.Color("#34D399"),
			"tag-ideas":     lipgloss.Color("#FBBF24"),
			"tag-reminders": lipgloss.Color("#F472B6"),
		},
	},
}

// Palette returns the colors for m.
func Palette(m Mode) render.Palette {
	if p, ok := palettes[m]; ok {
		return p
	}
	return palettes[Light]
}

// Styles returns render styles for m.
func Styles(m Mode) render.Styles {
	return render.NewStyles(Palette(m))
}

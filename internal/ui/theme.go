package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/dirdiff/internal/config"
	"github.com/bamsammich/dirdiff/internal/tree"
)

// Catppuccin Mocha palette.
const (
	colorGreen  = "#a6e3a1"
	colorBlue   = "#89b4fa"
	colorYellow = "#f9e2af"
	colorRed    = "#f38ba8"
	colorMaroon = "#eba0ac"
	colorMuted  = "#5a6278"
)

// Theme holds the styles used by the tree renderer and the progress
// presenters. The zero value renders without color.
type Theme struct {
	color bool

	added    lipgloss.Style
	removed  lipgloss.Style
	modified lipgloss.Style
	failure  lipgloss.Style
	dir      lipgloss.Style
	muted    lipgloss.Style
}

// NewTheme builds a theme from the default palette with tc's overrides
// applied. With color false every style renders plain text.
func NewTheme(tc config.ThemeConfig, color bool) *Theme {
	pick := func(override *string, def string) lipgloss.Color {
		if override != nil && *override != "" {
			return lipgloss.Color(*override)
		}
		return lipgloss.Color(def)
	}
	return &Theme{
		color:    color,
		added:    lipgloss.NewStyle().Foreground(pick(tc.Added, colorGreen)),
		removed:  lipgloss.NewStyle().Foreground(pick(tc.Removed, colorMaroon)),
		modified: lipgloss.NewStyle().Foreground(pick(tc.Modified, colorYellow)),
		failure:  lipgloss.NewStyle().Foreground(pick(tc.Failure, colorRed)).Bold(true),
		dir:      lipgloss.NewStyle().Foreground(pick(tc.Dir, colorBlue)).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(pick(tc.Muted, colorMuted)),
	}
}

func (t *Theme) render(s lipgloss.Style, text string) string {
	if t == nil || !t.color {
		return text
	}
	return s.Render(text)
}

// Status renders text in the color for status s.
func (t *Theme) Status(s tree.Status, text string) string {
	if t == nil {
		return text
	}
	switch s {
	case tree.Added:
		return t.render(t.added, text)
	case tree.Removed:
		return t.render(t.removed, text)
	case tree.Modified:
		return t.render(t.modified, text)
	case tree.Failure:
		return t.render(t.failure, text)
	default:
		return text
	}
}

// Dir renders a directory name.
func (t *Theme) Dir(text string) string {
	if t == nil {
		return text
	}
	return t.render(t.dir, text)
}

// Muted renders secondary text such as sizes and tree connectors.
func (t *Theme) Muted(text string) string {
	if t == nil {
		return text
	}
	return t.render(t.muted, text)
}

// OK renders a success marker.
func (t *Theme) OK(text string) string {
	if t == nil {
		return text
	}
	return t.render(t.added, text)
}

// Fail renders an error marker.
func (t *Theme) Fail(text string) string {
	if t == nil {
		return text
	}
	return t.render(t.failure, text)
}

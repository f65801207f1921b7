// Package tui renders check results for the terminal.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// ColorblindFriendlyTheme defines a colorblind-friendly color scheme
// Using a palette that works well for all forms of color blindness
type ColorblindFriendlyTheme struct {
	// Primary colors
	Blue      lipgloss.Color
	DarkBlue  lipgloss.Color
	LightBlue lipgloss.Color
	Orange    lipgloss.Color

	// Semantic colors (derived from primary)
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Default lipgloss.Color

	// Base styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Bold     lipgloss.Style
	Faint    lipgloss.Style

	// Verdict styles
	Pass   lipgloss.Style
	Fail   lipgloss.Style
	Header lipgloss.Style
	Panel  lipgloss.Style
}

// NewTheme creates a new colorblind-friendly theme
func NewTheme() *ColorblindFriendlyTheme {
	t := &ColorblindFriendlyTheme{
		Blue:      "#0072B2", // Dark blue - distinctive in all color vision deficiencies
		DarkBlue:  "#004C99",
		LightBlue: "#56B4E9", // Light blue - visible in all types
		Orange:    "#D55E00", // Reddish/orange - visible in most types

		Success: "#009E73", // Bluish green - better than pure green for colorblindness
		Warning: "#E69F00",
		Error:   "#D55E00",
		Default: "#999999",
	}

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Blue).
		MarginBottom(1)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(t.DarkBlue)

	t.Bold = lipgloss.NewStyle().
		Bold(true)

	t.Faint = lipgloss.NewStyle().
		Faint(true).
		Foreground(t.Default)

	t.Pass = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Success)

	t.Fail = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Error)

	t.Header = lipgloss.NewStyle().
		Foreground(t.Warning)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.LightBlue).
		Padding(0, 1)

	return t
}

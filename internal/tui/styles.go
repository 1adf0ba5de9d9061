package tui

import "github.com/charmbracelet/lipgloss"

// Styles is the widget palette.
type Styles struct {
	Label   lipgloss.Style
	Row     lipgloss.Style
	AltRow  lipgloss.Style
	Cursor  lipgloss.Style
	Match   lipgloss.Style
	Muted   lipgloss.Style
	Empty   lipgloss.Style
	Footer  lipgloss.Style
	Chosen  lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the default palette: alternating row backgrounds and an accent
// for matched segments.
func DefaultStyles() Styles {
	return Styles{
		Label:   lipgloss.NewStyle().Bold(true),
		Row:     lipgloss.NewStyle().Background(lipgloss.Color("235")),
		AltRow:  lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:  lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")),
		Match:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Empty:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Chosen:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

// PlainStyles renders without any styling.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Label: s, Row: s, AltRow: s, Cursor: s, Match: s, Muted: s, Empty: s, Footer: s, Chosen: s, Warning: s}
}

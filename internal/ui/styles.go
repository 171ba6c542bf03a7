package ui

import "github.com/charmbracelet/lipgloss"

// Dark theme matching the rest of the ALEX surfaces: deep navy panels with
// a mint accent.
type theme struct {
	title   lipgloss.Style
	online  lipgloss.Style
	offline lipgloss.Style
	user    lipgloss.Style
	alex    lipgloss.Style
	system  lipgloss.Style
	banner  lipgloss.Style
	input   lipgloss.Style
	help    lipgloss.Style
}

func newTheme() theme {
	mint := lipgloss.Color("#00ff88")
	red := lipgloss.Color("#ff4444")
	text := lipgloss.Color("#e0e0e0")
	muted := lipgloss.Color("#888888")
	border := lipgloss.Color("#2a2a4a")

	return theme{
		title:   lipgloss.NewStyle().Foreground(mint).Bold(true),
		online:  lipgloss.NewStyle().Foreground(mint).Bold(true),
		offline: lipgloss.NewStyle().Foreground(red).Bold(true),
		user:    lipgloss.NewStyle().Foreground(text).Bold(true),
		alex:    lipgloss.NewStyle().Foreground(mint),
		system:  lipgloss.NewStyle().Foreground(muted).Italic(true),
		banner:  lipgloss.NewStyle().Foreground(mint),
		input: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(border).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(muted),
	}
}

package cmd

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	keptColor    = lipgloss.Color("#10B981") // Green
	removedColor = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor).Width(10)
	keptStyle    = lipgloss.NewStyle().Foreground(keptColor)
	removedStyle = lipgloss.NewStyle().Foreground(removedColor).Strikethrough(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

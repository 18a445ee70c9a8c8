// Package util provides string helpers for terminal output.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if truncated.
// ANSI escape codes and wide characters are handled, so styled output can
// be passed in.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= len(ellipsis) {
		return ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, ellipsis)
}

// TruncateMiddle shortens an unstyled string to maxWidth columns by
// replacing its middle with "...". For classpath locators this keeps both
// the scheme and the archive name visible. A maxWidth of 0 or less disables
// truncation.
func TruncateMiddle(s string, maxWidth int) string {
	if maxWidth <= 0 || lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return ellipsis
	}

	keep := maxWidth - len(ellipsis)
	headWidth := keep / 2
	tailWidth := keep - headWidth

	head := ansi.Truncate(s, headWidth, "")
	tail := lastColumns(s, tailWidth)
	return head + ellipsis + tail
}

// lastColumns returns the longest suffix of s at most width columns wide.
func lastColumns(s string, width int) string {
	runes := []rune(s)
	start := len(runes)
	for start > 0 && lipgloss.Width(string(runes[start-1:])) <= width {
		start--
	}
	return string(runes[start:])
}

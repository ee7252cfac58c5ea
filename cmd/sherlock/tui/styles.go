// Package tui provides the interactive results browser for sherlock. It runs
// the hunt behind a progress view, then lists findings next to a preview of
// the selected file. Built on Bubble Tea, Lip Gloss and Bubbles.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette: deerstalker tweed with a magnifying-glass amber accent.
var (
	primaryColor = lipgloss.AdaptiveColor{Light: "#8A5A00", Dark: "#E0A526"}
	accentColor  = lipgloss.AdaptiveColor{Light: "#1F6F8B", Dark: "#5FC8E8"}

	successColor = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}
	warningColor = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFB74D"}
	dangerColor  = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}

	textColor      = lipgloss.AdaptiveColor{Light: "#2B2B2B", Dark: "#D7D2C8"}
	mutedColor     = lipgloss.AdaptiveColor{Light: "#7A746B", Dark: "#8C857A"}
	borderColor    = lipgloss.AdaptiveColor{Light: "#C9C1B4", Dark: "#4A443C"}
	highlightColor = lipgloss.AdaptiveColor{Light: "#F1E4C8", Dark: "#3A2F1C"}
)

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Frames.
var (
	outerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	previewBoxStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(borderColor)
	previewFocusedStyle = previewBoxStyle.BorderForeground(accentColor)

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor).
			Padding(0, 2)
)

// Text.
var (
	titleStyle       = fg(primaryColor).Bold(true)
	mutedTextStyle   = fg(mutedColor)
	errorTextStyle   = fg(dangerColor)
	successTextStyle = fg(successColor)
	warningTextStyle = fg(warningColor)
	dividerStyle     = fg(borderColor)

	statsLabelStyle = fg(mutedColor)
	statsValueStyle = fg(textColor).Bold(true)

	keyStyle     = fg(primaryColor).Bold(true)
	keyDescStyle = fg(mutedColor)
)

// Findings list.
var (
	normalItemStyle   = fg(textColor)
	selectedItemStyle = fg(textColor).Background(highlightColor).Bold(true)
	cursorStyle       = fg(primaryColor).Bold(true)
	patternStyle      = fg(accentColor)
	depthStyle        = fg(mutedColor)

	progressFillStyle  = fg(primaryColor)
	progressEmptyStyle = fg(borderColor)
)

// Log pane.
var (
	logTimeStyle      = fg(mutedColor)
	logComponentStyle = fg(accentColor)
	logDebugStyle     = fg(mutedColor)
	logInfoStyle      = fg(successColor)
	logWarnStyle      = fg(warningColor)
	logErrorStyle     = fg(dangerColor).Bold(true)
)

// renderDivider draws a horizontal rule width cells wide.
func renderDivider(width int) string {
	return dividerStyle.Render(strings.Repeat("─", max(width, 0)))
}

// truncatePath shortens path to at most maxLen runes, keeping the end,
// which names the file.
func truncatePath(path string, maxLen int) string {
	r := []rune(path)
	switch {
	case len(r) <= maxLen:
		return path
	case maxLen <= 3:
		return string(r[:max(maxLen, 0)])
	default:
		return "..." + string(r[len(r)-(maxLen-3):])
	}
}

// center pads s on both sides to width cells, the extra cell going right.
func center(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
}

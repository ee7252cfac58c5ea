package output

import "github.com/charmbracelet/lipgloss"

// Palette of the pretty report. Each color adapts to light and dark
// terminal backgrounds.
var (
	inkAccent = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	inkText   = lipgloss.AdaptiveColor{Light: "235", Dark: "255"}
	inkMuted  = lipgloss.AdaptiveColor{Light: "243", Dark: "245"}
	inkGood   = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
	inkWarn   = lipgloss.AdaptiveColor{Light: "166", Dark: "214"}
)

// theme groups the styles the pretty formatter renders with.
type theme struct {
	header lipgloss.Style
	footer lipgloss.Style

	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	path    lipgloss.Style
	pattern lipgloss.Style
	depth   lipgloss.Style
	size    lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
}

func newTheme() theme {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return theme{
		header: box.BorderForeground(inkAccent).MarginBottom(1),
		footer: box.BorderForeground(inkMuted).MarginTop(1),

		title:   fg(inkAccent).Bold(true),
		label:   fg(inkMuted),
		value:   fg(inkText),
		path:    fg(inkText),
		pattern: fg(inkMuted).Italic(true),
		depth:   fg(inkAccent).Underline(true),
		size:    fg(inkAccent).Bold(true),
		good:    fg(inkGood),
		warn:    fg(inkWarn),
	}
}

var styles = newTheme()

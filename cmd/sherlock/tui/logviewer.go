package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
)

// logCapacity bounds the entries kept for the log pane.
const logCapacity = 200

type levelBadge struct {
	char  string
	style lipgloss.Style
}

var levelBadges = map[logging.Level]levelBadge{
	logging.LevelDebug: {"D", logDebugStyle},
	logging.LevelInfo:  {"I", logInfoStyle},
	logging.LevelWarn:  {"W", logWarnStyle},
	logging.LevelError: {"E", logErrorStyle},
}

func badgeFor(level logging.Level) levelBadge {
	if b, ok := levelBadges[level]; ok {
		return b
	}
	return levelBadge{"?", logInfoStyle}
}

// logPane shows recent log entries at or above a floor level. It follows
// the newest entry until the user scrolls away from the bottom.
type logPane struct {
	open  bool
	buf   *logging.LogBuffer
	floor logging.Level
	vp    viewport.Model
	width int
}

func newLogPane() *logPane {
	return &logPane{
		buf:   logging.NewLogBuffer(logCapacity),
		floor: logging.LevelDebug,
		vp:    viewport.New(78, logPaneHeight-2),
		width: 78,
	}
}

func (p *logPane) toggle() {
	p.open = !p.open
	if p.open {
		p.refresh(true)
	}
}

func (p *logPane) setFloor(level logging.Level) {
	p.floor = level
	p.refresh(true)
}

func (p *logPane) add(e logging.LogEntry) {
	p.buf.Add(e)
	if p.open {
		p.refresh(p.vp.AtBottom())
	}
}

// scroll moves the view by n lines; negative n scrolls toward older entries.
func (p *logPane) scroll(n int) {
	if n < 0 {
		p.vp.ScrollUp(-n)
	} else {
		p.vp.ScrollDown(n)
	}
}

// resize fits the pane into width x height cells, two of which go to the
// header.
func (p *logPane) resize(width, height int) {
	p.width = width
	p.vp.Width = width
	p.vp.Height = max(height-2, 1)
	p.refresh(p.vp.AtBottom())
}

// latest returns the newest entry at or above the floor.
func (p *logPane) latest() (logging.LogEntry, bool) {
	entries := p.buf.AtLeast(p.floor)
	if len(entries) == 0 {
		return logging.LogEntry{}, false
	}
	return entries[len(entries)-1], true
}

func (p *logPane) visible() []logging.LogEntry {
	return p.buf.AtLeast(p.floor)
}

func (p *logPane) refresh(tail bool) {
	entries := p.visible()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = renderLogEntry(e, p.width)
	}
	p.vp.SetContent(strings.Join(lines, "\n"))
	if tail {
		p.vp.GotoBottom()
	}
}

func (p *logPane) view() string {
	header := titleStyle.Render(fmt.Sprintf(" Logs [%s] ", p.floor)) +
		mutedTextStyle.Render("[1-4] level  [ ] scroll  [L] close")

	if total := len(p.visible()); total > p.vp.Height {
		pos := mutedTextStyle.Render(fmt.Sprintf(" %d/%d", p.vp.YOffset+1, total))
		if gap := p.width - lipgloss.Width(header) - lipgloss.Width(pos); gap > 0 {
			header += strings.Repeat(" ", gap)
		}
		header += pos
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, renderDivider(p.width), p.vp.View())
}

// renderLogEntry renders "HH:MM:SS [L] component: message", cutting the
// message to fit width.
func renderLogEntry(e logging.LogEntry, width int) string {
	comp := e.Component
	if len(comp) > 10 {
		comp = comp[:10]
	}
	badge := badgeFor(e.Level)

	// time, badge, component and separators
	room := max(width-(8+1+3+1+len(comp)+2), 10)
	msg := e.String()
	if len(msg) > room {
		msg = msg[:room-3] + "..."
	}

	return fmt.Sprintf("%s %s %s: %s",
		logTimeStyle.Render(e.Time.Format("15:04:05")),
		badge.style.Render("["+badge.char+"]"),
		logComponentStyle.Render(comp),
		msg)
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// clockInterval drives both the elapsed counter and the pulse animation.
const clockInterval = 100 * time.Millisecond

// ProgressMsg carries a progress snapshot from the running walk.
type ProgressMsg types.HuntProgress

// HuntCompleteMsg reports the end of the walk.
type HuntCompleteMsg struct {
	Result *types.HuntResult
	Err    error
}

// HuntModel is the screen shown while the walk runs. The total number of
// directories is unknown up front, so it shows a pulse rather than a
// percentage.
type HuntModel struct {
	source   string
	maxDepth int

	spin     spinner.Model
	clock    stopwatch.Model
	progress types.HuntProgress

	done bool
	err  error

	width, height int
}

func NewHuntModel(source string, maxDepth int) HuntModel {
	return HuntModel{
		source:   source,
		maxDepth: maxDepth,
		spin:     spinner.New(spinner.WithSpinner(spinner.Points), spinner.WithStyle(fg(primaryColor))),
		clock:    stopwatch.NewWithInterval(clockInterval),
		width:    80,
		height:   24,
	}
}

func (m HuntModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.clock.Init())
}

func (m HuntModel) Update(msg tea.Msg) (HuntModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case ProgressMsg:
		m.progress = types.HuntProgress(msg)
	case HuntCompleteMsg:
		m.SetDone(msg.Err)
		cmd = m.clock.Stop()
	case spinner.TickMsg:
		m.spin, cmd = m.spin.Update(msg)
	case stopwatch.TickMsg, stopwatch.StartStopMsg, stopwatch.ResetMsg:
		m.clock, cmd = m.clock.Update(msg)
	}
	return m, cmd
}

func (m HuntModel) View() string {
	w := max(m.width-4, 40)

	var status string
	switch {
	case m.done && m.err != nil:
		status = errorTextStyle.Render(fmt.Sprintf("  Investigation failed: %v", m.err))
	case m.done:
		status = successTextStyle.Render("  Case closed.")
	default:
		status = fmt.Sprintf("  %s Investigating: %s", m.spin.View(), truncatePath(m.progress.CurrentPath, w-20))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		"",
		m.header(w),
		renderDivider(w),
		"",
		status,
		"",
		m.pulse(w),
		"",
		m.stats(w),
	)
	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(body)
}

func (m HuntModel) header(width int) string {
	title := titleStyle.Render(fmt.Sprintf("  🔍 %s  (depth %d)", m.source, m.maxDepth))
	hint := mutedTextStyle.Render("[Ctrl+C to stop]")
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(hint), 1)
	return title + strings.Repeat(" ", gap) + hint
}

// pulse draws a lit band that bounces across the bar, one cell per clock
// tick.
func (m HuntModel) pulse(width int) string {
	cells := max(width-4, 10)
	band := max(cells/5, 3)

	step := int(m.clock.Elapsed() / clockInterval)
	pos := step % (2 * cells)
	if pos > cells {
		pos = 2*cells - pos
	}

	var b strings.Builder
	b.WriteString("  ")
	for i := range cells {
		if d := i - pos; d > -band && d < band {
			b.WriteString(progressFillStyle.Render("█"))
		} else {
			b.WriteString(progressEmptyStyle.Render("░"))
		}
	}
	return b.String()
}

func (m HuntModel) stats(width int) string {
	boxW := max((width-10)/4, 10)
	boxes := []string{"  "}
	for _, s := range []struct{ label, value string }{
		{"Dirs", humanize.Comma(m.progress.DirsScanned)},
		{"Files", humanize.Comma(m.progress.FilesScanned)},
		{"Suspects", humanize.Comma(m.progress.Findings)},
		{"Time", formatDuration(m.clock.Elapsed())},
	} {
		cell := lipgloss.JoinVertical(lipgloss.Center,
			center(statsLabelStyle.Render(s.label), boxW-4),
			center(statsValueStyle.Render(s.value), boxW-4))
		boxes = append(boxes, statsBoxStyle.Width(boxW).Render(cell), " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// formatDuration renders d as M:SS.
func formatDuration(d time.Duration) string {
	s := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func (m *HuntModel) SetProgress(p types.HuntProgress) { m.progress = p }

func (m *HuntModel) SetDone(err error) {
	m.done = true
	m.err = err
}

func (m HuntModel) IsDone() bool { return m.done }

func (m HuntModel) Error() error { return m.err }

package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/sherlock/pkg/sherlock/filter"
	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
	"github.com/jamesainslie/sherlock/pkg/sherlock/scanner"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

var logger = logging.Get("tui")

// AppState represents the current state of the application.
type AppState int

const (
	StateHunting AppState = iota
	StateResults
)

// logPaneHeight is the number of rows the log pane takes when open.
const logPaneHeight = 10

// Options configures the TUI application.
type Options struct {
	// Source is the path as the user typed it, shown in headers.
	Source string

	// Scan configures the hunt. OnProgress is set by the TUI.
	Scan scanner.Options

	// Filter narrows the findings shown. Nil shows everything.
	Filter *filter.Filter
}

// Model is the main Bubble Tea model for the sherlock TUI.
type Model struct {
	state       AppState
	huntModel   HuntModel
	resultModel ResultModel
	logs        *logPane
	options     Options

	ctx          context.Context
	cancel       context.CancelFunc
	progressChan chan types.HuntProgress
	logChan      <-chan logging.LogEntry

	result *types.HuntResult
	err    error

	width  int
	height int
}

// logMsg carries a log entry from the logging subscription.
type logMsg logging.LogEntry

// NewModel creates a new TUI model. logs may be nil when no log
// subscription is wanted.
func NewModel(ctx context.Context, opts Options, logs <-chan logging.LogEntry) Model {
	ctx, cancel := context.WithCancel(ctx)

	return Model{
		state:        StateHunting,
		huntModel:    NewHuntModel(opts.Source, opts.Scan.MaxDepth),
		logs:         newLogPane(),
		options:      opts,
		ctx:          ctx,
		cancel:       cancel,
		progressChan: make(chan types.HuntProgress, 100),
		logChan:      logs,
		width:        80,
		height:       24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.huntModel.Init(),
		m.startHunt(),
		m.listenForProgress(),
		m.listenForLogs(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.huntModel.width = msg.Width
		m.huntModel.height = msg.Height
		m.resizeResults()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ProgressMsg:
		m.huntModel.SetProgress(types.HuntProgress(msg))
		return m, m.listenForProgress()

	case logMsg:
		m.logs.add(logging.LogEntry(msg))
		return m, m.listenForLogs()

	case HuntCompleteMsg:
		m.huntModel.SetDone(msg.Err)
		m.result = msg.Result
		m.err = msg.Err
		if msg.Err != nil {
			return m, tea.Quit
		}
		m.state = StateResults
		m.resultModel = NewResultModel(m.visibleFindings(), metricsOf(msg.Result))
		m.resizeResults()
		return m, nil
	}

	if m.state == StateHunting {
		var cmd tea.Cmd
		m.huntModel, cmd = m.huntModel.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) visibleFindings() []types.Finding {
	if m.result == nil {
		return nil
	}
	if m.options.Filter == nil {
		return m.result.Findings
	}
	return m.options.Filter.Apply(m.result.Findings)
}

func metricsOf(r *types.HuntResult) HuntMetrics {
	if r == nil {
		return HuntMetrics{}
	}
	return HuntMetrics{
		DirsScanned:  r.DirsScanned,
		FilesScanned: r.FilesScanned,
		CacheHits:    r.CacheHits,
		CacheMisses:  r.CacheMisses,
		Skipped:      len(r.Errors),
	}
}

// resizeResults gives the results view the space left by the log pane or
// status line.
func (m *Model) resizeResults() {
	reserved := 1
	if m.logs.open {
		reserved = logPaneHeight
	}
	m.logs.resize(m.width-2, logPaneHeight)
	m.resultModel.SetDimensions(m.width, max(m.height-reserved, 10))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.cancel()
		if m.state == StateHunting {
			m.err = context.Canceled
		}
		return m, tea.Quit
	}

	switch m.state {
	case StateHunting:
		if key == "q" || key == "esc" {
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil

	case StateResults:
		if m.resultModel.Filtering() {
			var cmd tea.Cmd
			m.resultModel, cmd = m.resultModel.Update(msg)
			return m, cmd
		}

		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			if m.logs.open {
				m.logs.toggle()
				m.resizeResults()
				return m, nil
			}
			return m, tea.Quit
		case "L":
			m.logs.toggle()
			m.resizeResults()
			return m, nil
		}

		if m.logs.open {
			switch key {
			case "1":
				m.logs.setFloor(logging.LevelDebug)
				return m, nil
			case "2":
				m.logs.setFloor(logging.LevelInfo)
				return m, nil
			case "3":
				m.logs.setFloor(logging.LevelWarn)
				return m, nil
			case "4":
				m.logs.setFloor(logging.LevelError)
				return m, nil
			case "[":
				m.logs.scroll(-1)
				return m, nil
			case "]":
				m.logs.scroll(1)
				return m, nil
			}
		}

		var cmd tea.Cmd
		m.resultModel, cmd = m.resultModel.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	if m.state == StateHunting {
		return m.huntModel.View()
	}

	results := m.resultModel.View()
	if m.logs.open {
		return lipgloss.JoinVertical(lipgloss.Left, results, m.logs.view())
	}
	return lipgloss.JoinVertical(lipgloss.Left, results, m.renderStatusLine())
}

// renderStatusLine shows the most recent log entry.
func (m Model) renderStatusLine() string {
	entry, ok := m.logs.latest()
	if !ok {
		if n := m.resultModel.metrics.Skipped; n > 0 {
			return warningTextStyle.Render(fmt.Sprintf(" %d directories skipped", n))
		}
		return ""
	}
	badge := badgeFor(entry.Level)
	line := fmt.Sprintf(" %s %s", badge.char, entry.String())
	return badge.style.Render(truncatePath(line, max(m.width-2, 10)))
}

func (m Model) startHunt() tea.Cmd {
	progressChan := m.progressChan
	opts := m.options.Scan
	ctx := m.ctx

	return func() tea.Msg {
		opts.OnProgress = func(p types.HuntProgress) {
			select {
			case progressChan <- p:
			default:
			}
		}

		result, err := scanner.New(opts).Scan(ctx)
		close(progressChan)

		if err != nil {
			logger.Error("hunt failed", "root", opts.Root, "error", err)
			return HuntCompleteMsg{Err: err}
		}
		logger.Debug("hunt complete", "root", result.Root, "findings", len(result.Findings))
		return HuntCompleteMsg{Result: result}
	}
}

func (m Model) listenForProgress() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		p, ok := <-progressChan
		if !ok {
			return nil
		}
		return ProgressMsg(p)
	}
}

func (m Model) listenForLogs() tea.Cmd {
	logChan := m.logChan
	ctx := m.ctx
	if logChan == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-logChan:
			return logMsg(e)
		case <-ctx.Done():
			return nil
		}
	}
}

// Result returns the hunt result once the hunt has completed.
func (m Model) Result() (*types.HuntResult, error) {
	return m.result, m.err
}

// Run hunts with the progress view, then lets the user browse findings.
// It returns the unfiltered hunt result once the user quits. Quitting
// before the hunt finishes returns context.Canceled.
func Run(ctx context.Context, opts Options) (*types.HuntResult, error) {
	logs := logging.Subscribe()
	defer logging.Unsubscribe(logs)

	model := NewModel(ctx, opts, logs)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		if cause := context.Cause(ctx); cause != nil {
			return nil, cause
		}
		return nil, context.Canceled
	}
	if err != nil {
		return nil, fmt.Errorf("running interface: %w", err)
	}

	fm, ok := final.(Model)
	if !ok {
		return nil, context.Canceled
	}
	return fm.Result()
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// HuntMetrics summarizes the walk behind the results view.
type HuntMetrics struct {
	DirsScanned  int64
	FilesScanned int64
	CacheHits    int64
	CacheMisses  int64
	Skipped      int
}

// ResultModel lists findings next to a preview of the selected file.
type ResultModel struct {
	findings []types.Finding
	visible  []int // indexes into findings that pass the query
	cursor   int   // position within visible
	offset   int

	query     textinput.Model
	filtering bool

	preview      viewport.Model
	previewFocus bool
	previewPath  string
	loadPreview  func(string) (string, error)

	metrics HuntMetrics
	width   int
	height  int
}

// NewResultModel creates a results view over findings.
func NewResultModel(findings []types.Finding, metrics HuntMetrics) ResultModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by path"
	ti.CharLimit = 256

	m := ResultModel{
		findings:    findings,
		query:       ti,
		preview:     viewport.New(40, 10),
		loadPreview: loadPreview,
		metrics:     metrics,
		width:       80,
		height:      24,
	}
	m.applyQuery()
	m.SetDimensions(m.width, m.height)
	return m
}

// Init initializes the result model.
func (m ResultModel) Init() tea.Cmd {
	return nil
}

// SetDimensions resizes the view.
func (m *ResultModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
	m.preview.Width = max(m.previewWidth()-2, 10)
	m.preview.Height = max(m.listRows(), 3)
	m.ensureVisible()
	m.refreshPreview()
}

// Update handles messages for the result model.
func (m ResultModel) Update(msg tea.Msg) (ResultModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetDimensions(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// Filtering reports whether the query input has focus. Global keys are
// suppressed while the user types.
func (m ResultModel) Filtering() bool {
	return m.filtering
}

func (m ResultModel) handleKey(msg tea.KeyMsg) (ResultModel, tea.Cmd) {
	key := msg.String()

	if m.filtering {
		switch key {
		case "enter":
			m.filtering = false
			m.query.Blur()
			return m, nil
		case "esc":
			m.filtering = false
			m.query.Blur()
			m.query.SetValue("")
			m.applyQuery()
			return m, nil
		}
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		m.applyQuery()
		return m, cmd
	}

	if key == "tab" {
		m.previewFocus = !m.previewFocus
		return m, nil
	}

	if m.previewFocus {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	switch key {
	case "/":
		m.filtering = true
		return m, m.query.Focus()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home", "g":
		m.moveCursor(-len(m.visible))
	case "end", "G":
		m.moveCursor(len(m.visible))
	case "pgup":
		m.moveCursor(-m.listRows())
	case "pgdown":
		m.moveCursor(m.listRows())
	}
	return m, nil
}

func (m *ResultModel) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.visible)-1))
	m.ensureVisible()
	m.refreshPreview()
}

// applyQuery recomputes the visible findings from the query text.
func (m *ResultModel) applyQuery() {
	q := strings.ToLower(strings.TrimSpace(m.query.Value()))
	m.visible = nil
	for i, f := range m.findings {
		if q == "" || strings.Contains(strings.ToLower(f.RelPath), q) ||
			strings.Contains(strings.ToLower(f.Pattern), q) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = min(m.cursor, max(len(m.visible)-1, 0))
	m.ensureVisible()
	m.refreshPreview()
}

func (m *ResultModel) refreshPreview() {
	f, ok := m.Selected()
	if !ok {
		m.previewPath = ""
		m.preview.SetContent(mutedTextStyle.Render("nothing selected"))
		return
	}
	if f.Path == m.previewPath {
		return
	}
	m.previewPath = f.Path

	text, err := m.loadPreview(f.Path)
	if err != nil {
		text = errorTextStyle.Render(fmt.Sprintf("cannot read %s: %v", f.Name, err))
	}
	m.preview.SetContent(text)
	m.preview.GotoTop()
}

// Selected returns the finding under the cursor.
func (m ResultModel) Selected() (types.Finding, bool) {
	if len(m.visible) == 0 {
		return types.Finding{}, false
	}
	return m.findings[m.visible[m.cursor]], true
}

// Visible returns the findings that pass the current query.
func (m ResultModel) Visible() []types.Finding {
	out := make([]types.Finding, 0, len(m.visible))
	for _, i := range m.visible {
		out = append(out, m.findings[i])
	}
	return out
}

// Cursor returns the cursor position within the visible findings.
func (m ResultModel) Cursor() int {
	return m.cursor
}

// TotalSize returns the combined size of all findings.
func (m ResultModel) TotalSize() int64 {
	var total int64
	for _, f := range m.findings {
		total += f.Size
	}
	return total
}

// View renders the result model.
func (m ResultModel) View() string {
	contentWidth := max(m.width-4, 60)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	if len(m.findings) == 0 {
		b.WriteString("\n")
		b.WriteString(center(mutedTextStyle.Render("Case closed: No configs found. Are you sure this is a project?"), contentWidth))
		b.WriteString("\n\n")
		b.WriteString(center(keyStyle.Render("[q]")+" "+keyDescStyle.Render("Quit"), contentWidth))
		b.WriteString("\n")
		return outerBoxStyle.Width(m.width - 2).Render(b.String())
	}

	if m.filtering || m.query.Value() != "" {
		b.WriteString("  " + m.query.View())
		b.WriteString("\n")
	}

	list := m.renderList(m.listWidth())
	box := previewBoxStyle
	if m.previewFocus {
		box = previewFocusedStyle
	}
	pane := box.Width(m.previewWidth() - 2).Render(m.preview.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", pane))
	b.WriteString("\n")

	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(contentWidth))

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

func (m ResultModel) renderHeader() string {
	title := fmt.Sprintf("  🔍 %d suspicious files (%s)", len(m.findings), types.FormatSize(m.TotalSize()))
	if len(m.visible) != len(m.findings) {
		title += fmt.Sprintf("  showing %d", len(m.visible))
	}
	return titleStyle.Render(title)
}

func (m ResultModel) renderList(width int) string {
	var b strings.Builder
	rows := m.listRows()

	if len(m.visible) == 0 {
		b.WriteString(mutedTextStyle.Render("  no findings match the filter"))
		b.WriteString("\n")
	}

	for i := m.offset; i < m.offset+rows && i < len(m.visible); i++ {
		f := m.findings[m.visible[i]]
		b.WriteString(m.renderLine(f, i == m.cursor, width))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Height(rows).Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m ResultModel) renderLine(f types.Finding, isCursor bool, width int) string {
	cursor := " "
	if isCursor {
		cursor = cursorStyle.Render(">")
	}

	depth := depthStyle.Render(fmt.Sprintf("%d", f.Depth))
	pat := patternStyle.Render(f.Pattern)
	pathWidth := max(width-8-lipgloss.Width(f.Pattern), 10)
	path := truncatePath(f.RelPath, pathWidth)

	line := fmt.Sprintf(" %s %s %s  %s", cursor, depth, path, pat)
	if isCursor && !m.previewFocus {
		return selectedItemStyle.Width(width).Render(line)
	}
	return normalItemStyle.Render(line)
}

func (m ResultModel) renderFooter(width int) string {
	left := "  "
	if f, ok := m.Selected(); ok {
		left += fmt.Sprintf("%s  %s  modified %s",
			f.Path, types.FormatSize(f.Size), f.ModTime.Format("2006-01-02"))
	}
	left = truncatePath(left, max(width/2, 20))

	hints := []struct{ key, desc string }{
		{"/", "Filter"},
		{"Tab", "Preview"},
		{"L", "Logs"},
		{"q", "Quit"},
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.key+"]")+" "+keyDescStyle.Render(h.desc))
	}
	right := strings.Join(parts, " ")

	spacing := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", spacing) + right
}

// listRows is the number of findings shown at once.
func (m ResultModel) listRows() int {
	return max(m.height-9, 3)
}

func (m ResultModel) listWidth() int {
	return max((m.width-6)*45/100, 30)
}

func (m ResultModel) previewWidth() int {
	return max(m.width-6-m.listWidth()-1, 20)
}

// ensureVisible adjusts offset to keep the cursor on screen.
func (m *ResultModel) ensureVisible() {
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(m.offset, 0)
}

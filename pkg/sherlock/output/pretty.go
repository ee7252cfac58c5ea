package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter renders the report for a terminal: a header box, the
// findings grouped under one heading per depth, and a summary box.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteByte('\n')
	w.WriteString(f.formatFindings(r))
	w.WriteString(f.formatFooter(r))
	if len(r.Warnings) > 0 {
		w.WriteByte('\n')
		w.WriteString(f.formatWarnings(r.Warnings))
	}
	return nil
}

// field renders "label value" with the label dimmed.
func field(label, value string) string {
	return styles.label.Render(label) + " " + styles.value.Render(value)
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	lines := []string{styles.title.Render("🔍 Investigating: ") + styles.value.Render(r.Source)}
	if r.Root != "" && r.Root != r.Source {
		lines = append(lines, styles.label.Render("Root:")+" "+styles.path.Render(r.Root))
	}

	info := []string{
		field("Depth:", fmt.Sprint(r.MaxDepth)),
		field("Scanned:", fmt.Sprintf("%s files in %s dirs, %s",
			humanize.Comma(r.Stats.FilesScanned), humanize.Comma(r.Stats.DirsScanned),
			formatDuration(r.Stats.Elapsed))),
	}
	if r.Stats.CacheHits+r.Stats.CacheMisses > 0 {
		info = append(info, f.formatCacheStatus(r.Stats.CacheHits, r.Stats.CacheMisses))
	}
	lines = append(lines, strings.Join(info, "  "))

	return styles.header.Render(strings.Join(lines, "\n"))
}

// formatCacheStatus describes how much of the walk the listing cache served.
func (f *PrettyFormatter) formatCacheStatus(hits, misses int64) string {
	label := styles.label.Render("cache: ")
	if hits == 0 {
		return label + styles.label.Render("cold")
	}
	pct := float64(hits) / float64(hits+misses) * 100
	return label + styles.good.Render(fmt.Sprintf("%.0f%% warm", pct))
}

func (f *PrettyFormatter) formatFindings(r *Result) string {
	if len(r.Findings) == 0 {
		msg := "  Case closed: No configs found. Are you sure this is a project?"
		if r.Total > 0 {
			msg = fmt.Sprintf("  Case closed: %d configs found, none passed the filters.", r.Total)
		}
		return styles.label.Render(msg) + "\n"
	}

	sizeWidth := 8
	for _, fd := range r.Findings {
		sizeWidth = max(sizeWidth, len(fd.HumanSize()))
	}

	var sb strings.Builder
	sb.WriteString(styles.title.Render(fmt.Sprintf("Found %d suspicious files:", len(r.Findings))))
	sb.WriteByte('\n')

	for i, fd := range r.Findings {
		if i == 0 || fd.Depth != r.Findings[i-1].Depth {
			fmt.Fprintf(&sb, "\n%s\n", styles.depth.Render(fmt.Sprintf("depth %d", fd.Depth)))
		}
		fmt.Fprintf(&sb, "  %s  %s%s  %s\n",
			styles.size.Render(padLeft(fd.HumanSize(), sizeWidth)),
			indent(fd.Depth),
			styles.path.Render("📄 "+filepath.FromSlash(fd.RelPath)),
			styles.pattern.Render(fd.Pattern))
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	count := fmt.Sprint(len(r.Findings))
	if r.Filtered() {
		count = fmt.Sprintf("%d of %d", len(r.Findings), r.Total)
	}

	parts := []string{
		field("Findings:", count),
		styles.label.Render("Total:") + " " + styles.size.Render(humanize.IBytes(uint64(r.TotalSize()))),
	}
	if r.HistoryID != "" {
		parts = append(parts, field("Case:", shortID(r.HistoryID)))
	}
	parts = append(parts, styles.label.Render("Use -o plain for unformatted output"))

	return styles.footer.Render(strings.Join(parts, "  "))
}

func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder
	sb.WriteString(styles.warn.Bold(true).Render("Skipped:"))
	sb.WriteByte('\n')
	for _, w := range warnings {
		sb.WriteString(styles.warn.Render("  " + w))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// padLeft right-aligns s in a field of the given width.
func padLeft(s string, width int) string {
	if n := width - len(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

// shortID truncates a history identifier for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration renders elapsed time at a precision that suits its size.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Round(time.Millisecond).Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		d = d.Round(time.Minute)
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)

package output

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// defaultTemplate lists relative paths indented by depth.
const defaultTemplate = "{{range .Findings}}{{indent .Depth}}{{.RelPath}}\n{{end}}"

// TemplateFormatter renders a user-supplied text/template. The template's
// dot is the Result plus a TotalSize field; each of .Findings is a
// types.Finding. Besides the builtins it can call:
//
//	bytes     64 -> "64 B"
//	ago       time -> "3 days ago"
//	date      time, layout -> formatted time
//	indent    depth -> two spaces per level
//	byPattern findings -> groups keyed by classifying pattern
//	join      strings, sep -> joined string
type TemplateFormatter struct {
	mu     sync.Mutex
	source string
	tmpl   *template.Template
}

// NewTemplateFormatter returns a formatter for the given template text.
// The text is parsed on first use.
func NewTemplateFormatter(text string) *TemplateFormatter {
	return &TemplateFormatter{source: text}
}

// SetTemplate replaces the template text.
func (f *TemplateFormatter) SetTemplate(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source, f.tmpl = text, nil
}

// patternGroup is one entry of byPattern.
type patternGroup struct {
	Pattern  string
	Findings []types.Finding
}

// groupByPattern groups findings by pattern, ordered by first appearance.
func groupByPattern(findings []types.Finding) []patternGroup {
	var groups []patternGroup
	index := make(map[string]int)
	for _, fd := range findings {
		i, ok := index[fd.Pattern]
		if !ok {
			i = len(groups)
			index[fd.Pattern] = i
			groups = append(groups, patternGroup{Pattern: fd.Pattern})
		}
		groups[i].Findings = append(groups[i].Findings, fd)
	}
	return groups
}

var templateFuncs = template.FuncMap{
	"bytes": func(n int64) string { return humanize.IBytes(uint64(n)) },
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	},
	"date": func(t time.Time, layout string) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	},
	"indent":    indent,
	"byPattern": groupByPattern,
	"join":      strings.Join,
}

func (f *TemplateFormatter) compiled() (*template.Template, error) {
	if f.tmpl == nil {
		t, err := template.New("output").Funcs(templateFuncs).Parse(f.source)
		if err != nil {
			return nil, fmt.Errorf("parsing template: %w", err)
		}
		f.tmpl = t
	}
	return f.tmpl, nil
}

// Format writes the formatted output to the buffer.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.compiled()
	if err != nil {
		return err
	}
	return t.Execute(w, struct {
		*Result
		TotalSize int64
	}{r, r.TotalSize()})
}

func init() {
	Register("template", func() Formatter { return NewTemplateFormatter(defaultTemplate) })
}

var _ Formatter = (*TemplateFormatter)(nil)

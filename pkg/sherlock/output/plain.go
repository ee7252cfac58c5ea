package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// PlainFormatter writes the classic investigation report: a header naming
// the source, the finding count, and one indented line per finding. No
// colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	fmt.Fprintf(w, "🔍 Investigating: %s\n", r.Source)
	w.WriteString("Looking for config files that are definitely not hiding...\n\n")

	if len(r.Findings) == 0 {
		if r.Total > 0 {
			fmt.Fprintf(w, "Case closed: %d configs found, none passed the filters.\n", r.Total)
			return nil
		}
		w.WriteString("Case closed: No configs found. Are you sure this is a project?\n")
		return nil
	}

	fmt.Fprintf(w, "Found %d suspicious files:\n\n", len(r.Findings))
	for _, finding := range r.Findings {
		fmt.Fprintf(w, "%s📄 %s\n", indent(finding.Depth), filepath.FromSlash(finding.RelPath))
	}
	return nil
}

// indent returns two spaces per depth level.
func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)

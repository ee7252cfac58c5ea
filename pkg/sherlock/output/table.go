package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
)

// columns is the header shared by the tabular formats.
var columns = []string{"DEPTH", "PATTERN", "SIZE", "PATH"}

// TableFormatter lays findings out as rows under columns. write decides
// the dialect.
type TableFormatter struct {
	write func(w *bytes.Buffer, header []string, rows [][]string) error
}

func (f *TableFormatter) Format(w *bytes.Buffer, r *Result) error {
	rows := make([][]string, len(r.Findings))
	for i, fd := range r.Findings {
		rows[i] = []string{strconv.Itoa(fd.Depth), fd.Pattern, fd.HumanSize(), fd.RelPath}
	}
	return f.write(w, columns, rows)
}

func writeTSV(w *bytes.Buffer, header []string, rows [][]string) error {
	for _, row := range append([][]string{header}, rows...) {
		w.WriteString(strings.Join(row, "\t"))
		w.WriteByte('\n')
	}
	return nil
}

// writeCSV quotes per RFC 4180.
func writeCSV(w *bytes.Buffer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	return cw.WriteAll(rows)
}

// writeMarkdown emits a GitHub-flavored table. Pipes inside cells are
// escaped so they do not split columns.
func writeMarkdown(w *bytes.Buffer, header []string, rows [][]string) error {
	line := func(cells []string) {
		w.WriteString("| ")
		w.WriteString(strings.Join(cells, " | "))
		w.WriteString(" |\n")
	}

	line(header)
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	line(rule)

	esc := strings.NewReplacer("|", `\|`)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = esc.Replace(c)
		}
		line(cells)
	}
	return nil
}

func init() {
	Register("tsv", func() Formatter { return &TableFormatter{write: writeTSV} })
	Register("csv", func() Formatter { return &TableFormatter{write: writeCSV} })
	Register("markdown", func() Formatter { return &TableFormatter{write: writeMarkdown} })
}

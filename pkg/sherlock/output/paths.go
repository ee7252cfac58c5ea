package output

import "bytes"

// ListFormatter writes bare absolute paths, each followed by Sep. It is the
// form to pipe into other tools; with a NUL separator, paths holding
// spaces or newlines survive xargs -0.
type ListFormatter struct {
	Sep byte
}

func (f *ListFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, fd := range r.Findings {
		w.WriteString(fd.Path)
		w.WriteByte(f.Sep)
	}
	return nil
}

func init() {
	Register("paths", func() Formatter { return &ListFormatter{Sep: '\n'} })
	Register("null", func() Formatter { return &ListFormatter{Sep: 0} })
}

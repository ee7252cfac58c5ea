package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DocumentFormatter writes the whole result as one structured document
// with findings, stats and meta sections.
type DocumentFormatter struct {
	encode func(w io.Writer, doc document) error
}

// Format writes the formatted output to the buffer.
func (f *DocumentFormatter) Format(w *bytes.Buffer, r *Result) error {
	return f.encode(w, buildDocument(r))
}

func encodeJSON(w io.Writer, doc document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func encodeYAML(w io.Writer, doc document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func encodeTOML(w io.Writer, doc document) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(doc)
}

// JSONLFormatter writes one compact JSON object per finding, for jq and
// other line-oriented tools.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	for _, fd := range r.Findings {
		if err := enc.Encode(newDocFinding(fd)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	for name, encode := range map[string]func(io.Writer, document) error{
		"json": encodeJSON,
		"yaml": encodeYAML,
		"toml": encodeTOML,
	} {
		Register(name, func() Formatter { return &DocumentFormatter{encode: encode} })
	}
	Register("jsonl", func() Formatter { return &JSONLFormatter{} })
}

var (
	_ Formatter = (*DocumentFormatter)(nil)
	_ Formatter = (*JSONLFormatter)(nil)
)

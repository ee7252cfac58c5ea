package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/jamesainslie/sherlock/pkg/sherlock/pattern"
)

var fileTemplate = template.Must(template.New("config").Parse(`# Sherlock configuration

# Directory to investigate when none is given on the command line
default_path: {{.DefaultPath}}

# How many directory levels below the root are examined (0 = root only)
max_depth: {{.MaxDepth}}

# File name patterns, checked in order. A leading * matches a suffix,
# a trailing * matches a prefix, anything else must match exactly.
patterns:
{{- range .Patterns}}
  - {{printf "%q" .}}
{{- end}}

# Globs for paths to skip, matched against the relative path and base name
exclude: []
{{- range .Exclusions}}
#  - {{.}}
{{- end}}

# Concurrent directory readers (0 = tune from system resources)
workers: 0

# Default output format: pretty, plain, json, jsonl, yaml, toml, paths,
# tsv, csv, markdown, template, null
output: {{.Output}}

# Directory listing cache for faster repeat hunts
cache:
  enabled: true
  path: {{.CachePath}}

# Record of past hunts
history:
  enabled: true
  path: {{.HistoryPath}}
  retention_days: {{.RetentionDays}}

logging:
  # debug, info, warn or error
  level: info
  # empty means $XDG_STATE_HOME/sherlock/sherlock.log
  path: ""
  # text, json or logfmt
  format: text
  rotation:
    max_size: 10MiB
    max_age: 30       # days
    max_backups: 5
    daily: true
    compress: false   # gzip rotated files
  components:
    scanner: info
    cache: warn
    history: info
    tui: info
`))

// DefaultTemplate renders the commented default config file.
func DefaultTemplate() string {
	var b strings.Builder
	_ = fileTemplate.Execute(&b, map[string]any{
		"DefaultPath":   DefaultPath,
		"MaxDepth":      DefaultMaxDepth,
		"Patterns":      pattern.DefaultPatterns,
		"Exclusions":    DefaultExclusions,
		"Output":        DefaultOutput,
		"CachePath":     DefaultCachePath(),
		"HistoryPath":   HistoryDir(),
		"RetentionDays": DefaultRetentionDays,
	})
	return b.String()
}

// WriteDefault writes the default config file unless one already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigFile()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := f.WriteString(DefaultTemplate()); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Close()
}

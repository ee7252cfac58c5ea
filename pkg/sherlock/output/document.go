package output

import (
	"time"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// document is the structured form shared by the json, yaml and toml
// formatters.
type document struct {
	Findings []docFinding `json:"findings" yaml:"findings" toml:"findings"`
	Stats    docStats     `json:"stats" yaml:"stats" toml:"stats"`
	Meta     docMeta      `json:"meta" yaml:"meta" toml:"meta"`
}

// docFinding represents a finding in structured output.
type docFinding struct {
	Depth     int       `json:"depth" yaml:"depth" toml:"depth"`
	Path      string    `json:"path" yaml:"path" toml:"path"`
	RelPath   string    `json:"rel_path" yaml:"rel_path" toml:"rel_path"`
	Name      string    `json:"name" yaml:"name" toml:"name"`
	Pattern   string    `json:"pattern" yaml:"pattern" toml:"pattern"`
	Size      int64     `json:"size" yaml:"size" toml:"size"`
	SizeHuman string    `json:"size_human" yaml:"size_human" toml:"size_human"`
	ModTime   time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty" toml:"mod_time,omitempty"`
}

// docStats represents hunt statistics in structured output.
type docStats struct {
	DirsScanned  int64  `json:"dirs_scanned" yaml:"dirs_scanned" toml:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned" yaml:"files_scanned" toml:"files_scanned"`
	CacheHits    int64  `json:"cache_hits" yaml:"cache_hits" toml:"cache_hits"`
	CacheMisses  int64  `json:"cache_misses" yaml:"cache_misses" toml:"cache_misses"`
	Elapsed      string `json:"elapsed" yaml:"elapsed" toml:"elapsed"`
}

// docMeta represents hunt metadata in structured output.
type docMeta struct {
	Source    string   `json:"source" yaml:"source" toml:"source"`
	Root      string   `json:"root" yaml:"root" toml:"root"`
	MaxDepth  int      `json:"max_depth" yaml:"max_depth" toml:"max_depth"`
	Patterns  []string `json:"patterns" yaml:"patterns" toml:"patterns"`
	Total     int      `json:"total" yaml:"total" toml:"total"`
	Shown     int      `json:"shown" yaml:"shown" toml:"shown"`
	TotalSize int64    `json:"total_size" yaml:"total_size" toml:"total_size"`
	Warnings  []string `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
	HistoryID string   `json:"history_id,omitempty" yaml:"history_id,omitempty" toml:"history_id,omitempty"`
}

func newDocFinding(f types.Finding) docFinding {
	return docFinding{
		Depth:     f.Depth,
		Path:      f.Path,
		RelPath:   f.RelPath,
		Name:      f.Name,
		Pattern:   f.Pattern,
		Size:      f.Size,
		SizeHuman: f.HumanSize(),
		ModTime:   f.ModTime,
	}
}

// buildDocument converts a Result to its structured form.
func buildDocument(r *Result) document {
	findings := make([]docFinding, len(r.Findings))
	for i, f := range r.Findings {
		findings[i] = newDocFinding(f)
	}

	patterns := r.Patterns
	if patterns == nil {
		patterns = []string{}
	}

	return document{
		Findings: findings,
		Stats: docStats{
			DirsScanned:  r.Stats.DirsScanned,
			FilesScanned: r.Stats.FilesScanned,
			CacheHits:    r.Stats.CacheHits,
			CacheMisses:  r.Stats.CacheMisses,
			Elapsed:      formatDurationString(r.Stats.Elapsed),
		},
		Meta: docMeta{
			Source:    r.Source,
			Root:      r.Root,
			MaxDepth:  r.MaxDepth,
			Patterns:  patterns,
			Total:     r.Total,
			Shown:     len(r.Findings),
			TotalSize: r.TotalSize(),
			Warnings:  r.Warnings,
			HistoryID: r.HistoryID,
		},
	}
}

// formatDurationString formats a duration for structured output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

// Package manifest keeps a history of hunts on disk. Each hunt is one
// gzipped JSON document named by its ID, so entries can be listed, shown and
// expired without a database.
package manifest

import (
	"time"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// Entry is the record of a single hunt.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Root      string    `json:"root"`
	MaxDepth  int       `json:"max_depth"`
	Patterns  []string  `json:"patterns"`
	Findings  []Record  `json:"findings"`
	Summary   Summary   `json:"summary"`
}

// ShortID returns the leading characters of the ID used in listings.
func (e *Entry) ShortID() string {
	if len(e.ID) <= shortIDLen {
		return e.ID
	}
	return e.ID[:shortIDLen]
}

const shortIDLen = 8

// Record is one finding as stored in the history.
type Record struct {
	Depth   int       `json:"depth"`
	Path    string    `json:"path"`
	Pattern string    `json:"pattern"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Summary contains hunt totals.
type Summary struct {
	Findings     int           `json:"findings"`
	DirsScanned  int64         `json:"dirs_scanned"`
	FilesScanned int64         `json:"files_scanned"`
	Errors       int           `json:"errors"`
	Elapsed      time.Duration `json:"elapsed"`
}

// NewEntry converts a hunt result into a history entry without an ID.
func NewEntry(r *types.HuntResult) *Entry {
	records := make([]Record, len(r.Findings))
	for i, f := range r.Findings {
		records[i] = Record{
			Depth:   f.Depth,
			Path:    f.Path,
			Pattern: f.Pattern,
			Size:    f.Size,
			ModTime: f.ModTime,
		}
	}

	return &Entry{
		Root:     r.Root,
		MaxDepth: r.MaxDepth,
		Patterns: r.Patterns,
		Findings: records,
		Summary: Summary{
			Findings:     len(r.Findings),
			DirsScanned:  r.DirsScanned,
			FilesScanned: r.FilesScanned,
			Errors:       len(r.Errors),
			Elapsed:      r.Elapsed,
		},
	}
}

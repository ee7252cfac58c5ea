// Package output renders hunt results for display. Formatters are kept in a
// registry so the CLI can select one by name at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// Stats contains statistics about a hunt.
type Stats struct {
	// DirsScanned is the total number of directories listed.
	DirsScanned int64 `json:"dirs_scanned" yaml:"dirs_scanned" toml:"dirs_scanned"`

	// FilesScanned is the total number of files classified.
	FilesScanned int64 `json:"files_scanned" yaml:"files_scanned" toml:"files_scanned"`

	// CacheHits is the number of directories served from the listing cache.
	CacheHits int64 `json:"cache_hits" yaml:"cache_hits" toml:"cache_hits"`

	// CacheMisses is the number of directories that had to be listed.
	CacheMisses int64 `json:"cache_misses" yaml:"cache_misses" toml:"cache_misses"`

	// Elapsed is the wall time of the walk.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed" toml:"elapsed"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Source is the root path as the user gave it.
	Source string

	// Root is the resolved absolute root.
	Root string

	// MaxDepth is the depth bound of the hunt.
	MaxDepth int

	// Patterns is the raw pattern list the hunt used.
	Patterns []string

	// Findings contains the findings to display, in display order.
	Findings []types.Finding

	// Total is the number of findings before filtering and limits.
	Total int

	// Stats contains walk statistics.
	Stats Stats

	// Warnings contains one line per subtree that could not be read.
	Warnings []string

	// HistoryID is the identifier of the recorded history entry, if any.
	HistoryID string
}

// NewResult builds a Result from a hunt. findings is the filtered view of
// hr.Findings that should be displayed.
func NewResult(source string, hr *types.HuntResult, findings []types.Finding) *Result {
	r := &Result{
		Source:   source,
		Root:     hr.Root,
		MaxDepth: hr.MaxDepth,
		Patterns: slices.Clone(hr.Patterns),
		Findings: findings,
		Total:    len(hr.Findings),
		Stats: Stats{
			DirsScanned:  hr.DirsScanned,
			FilesScanned: hr.FilesScanned,
			CacheHits:    hr.CacheHits,
			CacheMisses:  hr.CacheMisses,
			Elapsed:      hr.Elapsed,
		},
	}
	if r.Findings == nil {
		r.Findings = []types.Finding{}
	}
	for _, e := range hr.Errors {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", e.Path, e.Error))
	}
	return r
}

// TotalSize returns the sum of all finding sizes in the result.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, f := range r.Findings {
		total += f.Size
	}
	return total
}

// Filtered reports whether some findings were hidden by filters or limits.
func (r *Result) Filtered() bool {
	return len(r.Findings) < r.Total
}

// Formatter renders a Result.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

package filter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gobwas/glob"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// ErrInvalidGlob indicates that an include or exclude pattern failed to compile.
var ErrInvalidGlob = errors.New("invalid glob pattern")

// Criteria selects, orders and limits findings. The zero value keeps
// everything in hunt order.
type Criteria struct {
	// Include globs; when set, a finding must match one.
	Include []string
	// Exclude globs drop the findings they match.
	Exclude []string
	// Patterns keeps only findings classified by one of these raw patterns.
	Patterns []string

	// OlderThan drops files modified within this long.
	OlderThan time.Duration
	// NewerThan drops files last modified longer ago than this.
	NewerThan time.Duration

	SortBy         SortField
	SortDescending bool

	// Limit caps the result. Zero or less means no cap.
	Limit int
}

// Filter is a compiled Criteria.
type Filter struct {
	Criteria

	include Globs
	exclude Globs
}

// New compiles c. Globs are matched with '/' as the separator, against both
// the relative path and the base name.
func New(c Criteria) (*Filter, error) {
	c.Limit = max(c.Limit, 0)
	f := &Filter{Criteria: c}

	var err error
	if f.include, err = CompileGlobs(c.Include); err != nil {
		return nil, err
	}
	if f.exclude, err = CompileGlobs(c.Exclude); err != nil {
		return nil, err
	}
	return f, nil
}

// Match reports whether fd passes the pattern, age, exclude and include
// checks, in that order.
func (f *Filter) Match(fd types.Finding) bool {
	return f.matchAt(fd, time.Now())
}

func (f *Filter) matchAt(fd types.Finding, now time.Time) bool {
	switch {
	case len(f.Patterns) > 0 && !slices.Contains(f.Patterns, fd.Pattern):
		return false
	case f.OlderThan > 0 && fd.ModTime.After(now.Add(-f.OlderThan)):
		return false
	case f.NewerThan > 0 && fd.ModTime.Before(now.Add(-f.NewerThan)):
		return false
	case f.exclude.Match(fd.RelPath, fd.Name):
		return false
	case len(f.include) > 0 && !f.include.Match(fd.RelPath, fd.Name):
		return false
	}
	return true
}

// byField orders findings on one field, ascending. Age ascends from newest
// to oldest.
var byField = map[SortField]func(a, b types.Finding) int{
	SortDepth: func(a, b types.Finding) int { return 0 },
	SortPath:  func(a, b types.Finding) int { return cmp.Compare(a.Path, b.Path) },
	SortName:  func(a, b types.Finding) int { return cmp.Compare(a.Name, b.Name) },
	SortSize:  func(a, b types.Finding) int { return cmp.Compare(a.Size, b.Size) },
	SortAge:   func(a, b types.Finding) int { return b.ModTime.Compare(a.ModTime) },
}

// Sort returns a sorted copy of findings. Ties fall back to depth then
// path, so the order is total and repeatable.
func (f *Filter) Sort(findings []types.Finding) []types.Finding {
	primary := byField[f.SortBy]
	if primary == nil {
		primary = byField[SortDepth]
	}

	out := slices.Clone(findings)
	if out == nil {
		out = []types.Finding{}
	}
	slices.SortFunc(out, func(a, b types.Finding) int {
		c := cmp.Or(primary(a, b), types.CompareFindings(a, b))
		if f.SortDescending {
			return -c
		}
		return c
	})
	return out
}

// Apply matches, sorts and limits findings. It never returns nil.
func (f *Filter) Apply(findings []types.Finding) []types.Finding {
	now := time.Now()
	kept := make([]types.Finding, 0, len(findings))
	for _, fd := range findings {
		if f.matchAt(fd, now) {
			kept = append(kept, fd)
		}
	}

	kept = f.Sort(kept)
	if f.Limit > 0 && len(kept) > f.Limit {
		kept = kept[:f.Limit]
	}
	return kept
}

// Globs is a compiled set of slash-separated glob patterns.
type Globs []glob.Glob

// CompileGlobs compiles patterns, skipping empty ones.
func CompileGlobs(patterns []string) (Globs, error) {
	var gs Globs
	for _, p := range patterns {
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidGlob, p, err)
		}
		gs = append(gs, g)
	}
	return gs, nil
}

// Match reports whether any glob matches the relative path or the base name.
func (gs Globs) Match(relPath, name string) bool {
	return slices.ContainsFunc(gs, func(g glob.Glob) bool {
		return g.Match(relPath) || g.Match(name)
	})
}

// Package scanner hunts for configuration files. It walks a directory tree
// down to a fixed depth, classifies every file name against an ordered
// pattern set, and returns the findings sorted by depth and path.
package scanner

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/sherlock/pkg/sherlock/cache"
	"github.com/jamesainslie/sherlock/pkg/sherlock/config"
	"github.com/jamesainslie/sherlock/pkg/sherlock/filter"
	"github.com/jamesainslie/sherlock/pkg/sherlock/pattern"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// ErrNegativeDepth is returned when MaxDepth is below zero.
var ErrNegativeDepth = errors.New("max depth must not be negative")

// Options configures the scanner behavior.
type Options struct {
	// Root is the starting directory for the hunt.
	Root string

	// MaxDepth is the deepest directory, counted in path components below
	// Root, whose files are examined. Zero restricts the hunt to Root itself.
	MaxDepth int

	// Patterns classifies file names. Nil means pattern.Default().
	Patterns *pattern.Set

	// Exclude contains glob patterns for paths to skip. Patterns are matched
	// against the slash-separated path relative to Root and the base name.
	Exclude []string

	// Workers is the number of concurrent directory readers.
	Workers int

	// OnProgress is called periodically with hunt progress updates.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.HuntProgress)

	// Cache is an optional listing cache for speeding up repeat hunts.
	// If nil, caching is disabled.
	Cache *cache.Cache
}

// DefaultOptions returns options matching the classic behavior:
// current directory, depth 3, default patterns, a single reader.
func DefaultOptions() Options {
	return Options{
		Root:     config.DefaultPath,
		MaxDepth: config.DefaultMaxDepth,
		Patterns: pattern.Default(),
		Workers:  config.DefaultWorkers,
	}
}

// Validate fills defaults for unset values and rejects invalid ones.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = config.DefaultPath
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDepth, o.MaxDepth)
	}
	if o.Patterns == nil {
		o.Patterns = pattern.Default()
	}
	if o.Workers < 1 {
		o.Workers = config.DefaultWorkers
	}
	if _, err := filter.CompileGlobs(o.Exclude); err != nil {
		return err
	}
	return nil
}

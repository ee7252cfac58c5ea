// Package filter narrows, orders and limits the findings of a hunt. It runs
// after the walk, so it never changes which directories are visited.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SortField names the finding field results are ordered by.
type SortField int

const (
	// SortDepth is the hunt's natural order: depth, then path.
	SortDepth SortField = iota
	SortPath
	SortName
	SortSize
	// SortAge orders by modification time.
	SortAge
)

var sortNames = []string{"depth", "path", "name", "size", "age"}

func (s SortField) String() string {
	if s < 0 || int(s) >= len(sortNames) {
		return sortNames[SortDepth]
	}
	return sortNames[s]
}

// ErrInvalidSortField indicates that the sort field string could not be parsed.
var ErrInvalidSortField = errors.New("invalid sort field")

// ParseSortField maps a name, in any case, to its SortField. The empty
// string means SortDepth.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortDepth, nil
	}
	if i := slices.Index(sortNames, strings.ToLower(s)); i >= 0 {
		return SortField(i), nil
	}
	return SortDepth, fmt.Errorf("%w: %q", ErrInvalidSortField, s)
}

// SortFields lists the accepted sort field names.
func SortFields() []string {
	return slices.Clone(sortNames)
}

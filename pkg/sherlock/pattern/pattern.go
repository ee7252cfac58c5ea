// Package pattern classifies file names against configuration-file naming
// conventions. A pattern is one of three shapes, decided once when the raw
// string is parsed:
//
//	*suffix   the name ends with suffix
//	prefix*   the name starts with prefix
//	literal   the name equals literal
//
// A raw pattern that both starts and ends with '*' is a suffix pattern whose
// suffix keeps the trailing '*'. There is no substring matching and no case
// folding.
package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the shape of a pattern.
type Kind int

const (
	// Exact matches a literal file name.
	Exact Kind = iota
	// Prefix matches names beginning with Value.
	Prefix
	// Suffix matches names ending with Value.
	Suffix
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	default:
		return "unknown"
	}
}

// ErrEmptyPattern is returned when an empty raw pattern is parsed into a set.
var ErrEmptyPattern = errors.New("empty pattern")

// Pattern is a parsed name-matching rule.
type Pattern struct {
	Kind  Kind
	Value string

	// Raw is the pattern as written, e.g. "*.yml".
	Raw string
}

// Parse decides the shape of a raw pattern. The leading-'*' check runs
// first, so "*x*" is Suffix("x*").
func Parse(raw string) Pattern {
	switch {
	case strings.HasPrefix(raw, "*"):
		return Pattern{Kind: Suffix, Value: raw[1:], Raw: raw}
	case strings.HasSuffix(raw, "*"):
		return Pattern{Kind: Prefix, Value: raw[:len(raw)-1], Raw: raw}
	default:
		return Pattern{Kind: Exact, Value: raw, Raw: raw}
	}
}

// Match reports whether name satisfies the pattern.
func (p Pattern) Match(name string) bool {
	switch p.Kind {
	case Suffix:
		return strings.HasSuffix(name, p.Value)
	case Prefix:
		return strings.HasPrefix(name, p.Value)
	default:
		return name == p.Value
	}
}

// String returns the raw pattern.
func (p Pattern) String() string {
	return p.Raw
}

// Matches reports whether filename matches the raw pattern string.
func Matches(filename, raw string) bool {
	return Parse(raw).Match(filename)
}

// DefaultPatterns is the stock list of configuration-file conventions, in
// evaluation order.
var DefaultPatterns = []string{
	".env*",     // environment files
	"config*",   // generic configs
	"*.conf",    // unix style
	"*.cfg",     // windows style
	"*.yml",     // yaml
	"*.yaml",    // yaml, long form
	"*.json",    // json
	"*.toml",    // toml
	"*.ini",     // ini
	"settings*", // django and friends
}

// Set is an immutable, ordered list of patterns.
type Set struct {
	patterns []Pattern
}

// NewSet parses raws into a set, preserving order.
func NewSet(raws ...string) (*Set, error) {
	patterns := make([]Pattern, 0, len(raws))
	for i, raw := range raws {
		if raw == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyPattern, i)
		}
		patterns = append(patterns, Parse(raw))
	}
	return &Set{patterns: patterns}, nil
}

// MustNewSet is like NewSet but panics on error.
func MustNewSet(raws ...string) *Set {
	s, err := NewSet(raws...)
	if err != nil {
		panic(err)
	}
	return s
}

var defaultSet = MustNewSet(DefaultPatterns...)

// Default returns the set built from DefaultPatterns.
func Default() *Set {
	return defaultSet
}

// Qualifies reports whether any pattern in the set matches name.
func (s *Set) Qualifies(name string) bool {
	_, ok := s.FirstMatch(name)
	return ok
}

// FirstMatch returns the first pattern, in set order, that matches name.
func (s *Set) FirstMatch(name string) (Pattern, bool) {
	for _, p := range s.patterns {
		if p.Match(name) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Patterns returns a copy of the parsed patterns.
func (s *Set) Patterns() []Pattern {
	out := make([]Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Strings returns the raw patterns in order.
func (s *Set) Strings() []string {
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.Raw
	}
	return out
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	return len(s.patterns)
}

// Fingerprint returns a stable identifier for the ordered raw list. Two sets
// with the same patterns in the same order share a fingerprint.
func (s *Set) Fingerprint() string {
	h := sha256.New()
	for _, p := range s.patterns {
		h.Write([]byte(p.Raw))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

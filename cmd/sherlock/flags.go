package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jamesainslie/sherlock/pkg/sherlock/filter"
	"github.com/jamesainslie/sherlock/pkg/sherlock/pattern"
)

// buildFilter creates a filter.Filter from the flag-bound viper keys.
// --exclude is not part of it: excluded directories are pruned during the
// walk instead.
func buildFilter() (*filter.Filter, error) {
	c := filter.Criteria{
		Include:  parseCommaSeparated(viper.GetString("include")),
		Patterns: parseCommaSeparated(viper.GetString("only")),
		Limit:    viper.GetInt("limit"),
	}

	for key, dst := range map[string]*time.Duration{
		"older_than": &c.OlderThan,
		"newer_than": &c.NewerThan,
	} {
		s := viper.GetString(key)
		if s == "" {
			continue
		}
		d, err := filter.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ReplaceAll(key, "_", "-"), s, err)
		}
		*dst = d
	}

	var err error
	if c.SortBy, err = filter.ParseSortField(viper.GetString("sort")); err != nil {
		return nil, fmt.Errorf("%w (choose from %s)", err, strings.Join(filter.SortFields(), ", "))
	}

	// Depth, path and name read naturally ascending; size and age read
	// largest and oldest first. --reverse flips whichever applies.
	c.SortDescending = c.SortBy == filter.SortSize || c.SortBy == filter.SortAge
	if viper.GetBool("reverse") {
		c.SortDescending = !c.SortDescending
	}

	return filter.New(c)
}

// buildPatternSet returns the pattern set from --pattern or the config file.
func buildPatternSet() (*pattern.Set, error) {
	raws := viper.GetStringSlice("patterns")
	if len(raws) == 0 {
		return pattern.Default(), nil
	}
	set, err := pattern.NewSet(raws...)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern list: %w", err)
	}
	return set, nil
}

// parseCommaSeparated splits a comma-separated string and trims whitespace.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

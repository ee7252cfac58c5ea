package filter

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Calendar units accepted by ParseDuration. Months and years are fixed
// approximations; file ages do not need calendar precision.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

var (
	// ErrInvalidDuration indicates that a duration string could not be parsed.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrNegativeValue indicates that a negative duration was given.
	ErrNegativeValue = errors.New("value cannot be negative")
)

var durationUnits = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  Day,
	"w":  Week,
	"mo": Month,
	"y":  Year,
}

// durationTerm matches one "<number><unit>" term. Longer units come first
// so "mo" and "ms" are not read as "m".
var durationTerm = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)(mo|ms|us|µs|ns|[smhdwy])`)

// ParseDuration parses an age such as "30d", "2w", "6mo", "1y" or a
// combination like "1w3d" or "1h30m". Units are case-insensitive; "m" is
// minutes and "mo" is months.
func ParseDuration(s string) (time.Duration, error) {
	rest := strings.ToLower(strings.TrimSpace(s))
	switch {
	case rest == "":
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	case strings.HasPrefix(rest, "-"):
		return 0, ErrNegativeValue
	}

	var total time.Duration
	for rest != "" {
		m := durationTerm.FindStringSubmatch(rest)
		if m == nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		term := n * float64(durationUnits[m[2]])
		if term >= math.MaxInt64 || time.Duration(term) > math.MaxInt64-total {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidDuration, s)
		}
		total += time.Duration(term)
		rest = strings.TrimLeft(rest[len(m[0]):], " ")
	}
	return total, nil
}

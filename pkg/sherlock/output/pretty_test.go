package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrettyFormatter(t *testing.T) {
	r := sampleResult()
	r.HistoryID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	out := render(t, "pretty", r)

	assert.Contains(t, out, "Investigating:")
	assert.Contains(t, out, "/work/app")
	assert.Contains(t, out, "Found 4 suspicious files:")
	assert.Contains(t, out, "depth 0")
	assert.Contains(t, out, "depth 1")
	assert.Contains(t, out, "depth 2")
	assert.Contains(t, out, "📄 .env")
	assert.Contains(t, out, "values.yml")
	assert.Contains(t, out, "*.yml")
	assert.Contains(t, out, "4.0 KiB")
	assert.Contains(t, out, "0f8fad5b")
	assert.NotContains(t, out, "0f8fad5b-d9cb")

	assert.Contains(t, out, "Skipped:")
	assert.Contains(t, out, "/work/app/secret: permission denied")

	// Depth groups appear in order.
	assert.Less(t, strings.Index(out, "depth 0"), strings.Index(out, "depth 1"))
	assert.Less(t, strings.Index(out, "depth 1"), strings.Index(out, "depth 2"))
}

func TestPrettyFormatter_Empty(t *testing.T) {
	out := render(t, "pretty", emptyResult())

	assert.Contains(t, out, "Case closed: No configs found")
	assert.NotContains(t, out, "Skipped:")
}

func TestPrettyFormatter_Filtered(t *testing.T) {
	hr := sampleHunt()
	out := render(t, "pretty", NewResult(".", hr, hr.Findings[:1]))

	assert.Contains(t, out, "1 of 4")
}

func TestPrettyFormatter_CacheStatus(t *testing.T) {
	f := &PrettyFormatter{}

	assert.Contains(t, f.formatCacheStatus(0, 10), "cold")
	assert.Contains(t, f.formatCacheStatus(3, 1), "75% warm")
}

func TestPadLeft(t *testing.T) {
	assert.Equal(t, "   ab", padLeft("ab", 5))
	assert.Equal(t, "abcdef", padLeft("abcdef", 3))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{125 * time.Second, "2m 5s"},
		{3725 * time.Second, "1h 2m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}

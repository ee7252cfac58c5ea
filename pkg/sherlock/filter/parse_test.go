package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1d", Day},
		{"30d", 30 * Day},
		{"7D", 7 * Day},
		{"2w", 2 * Week},
		{"3mo", 3 * Month},
		{"6MO", 6 * Month},
		{"1y", Year},
		{"1.5d", 36 * time.Hour},
		{"90m", 90 * time.Minute},
		{"24h", 24 * time.Hour},
		{"500ms", 500 * time.Millisecond},
		{"1h30m", 90 * time.Minute},
		{"1w3d", 10 * Day},
		{"1y 6mo", Year + 6*Month},
		{"  12h  ", 12 * time.Hour},
		{"0d", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDurationErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "d", "10", "10x", "abc", "1d!", "1.2.3d"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDuration(input)
			assert.ErrorIs(t, err, ErrInvalidDuration)
		})
	}

	_, err := ParseDuration("-5d")
	assert.ErrorIs(t, err, ErrNegativeValue)
}

func TestParseDurationOutOfRange(t *testing.T) {
	for _, input := range []string{"99999999999y", "293y", "200y 200y"} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseDuration(input)
			assert.ErrorIs(t, err, ErrInvalidDuration)
			assert.Zero(t, got)
		})
	}

	got, err := ParseDuration("290y")
	require.NoError(t, err)
	assert.Equal(t, 290*Year, got)
}

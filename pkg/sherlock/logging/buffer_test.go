package logging

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func fill(b *LogBuffer, n int) {
	for i := 1; i <= n; i++ {
		b.Add(LogEntry{Message: fmt.Sprintf("m%d", i), Level: LevelInfo})
	}
}

func TestLogBuffer(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		added    int
		wantAll  []string
		last2    []string
	}{
		{name: "empty", capacity: 3, added: 0, wantAll: []string{}, last2: []string{}},
		{name: "partly filled", capacity: 3, added: 2, wantAll: []string{"m1", "m2"}, last2: []string{"m1", "m2"}},
		{name: "exactly full", capacity: 3, added: 3, wantAll: []string{"m1", "m2", "m3"}, last2: []string{"m2", "m3"}},
		{name: "wrapped", capacity: 3, added: 5, wantAll: []string{"m3", "m4", "m5"}, last2: []string{"m4", "m5"}},
		{name: "wrapped twice", capacity: 2, added: 5, wantAll: []string{"m4", "m5"}, last2: []string{"m4", "m5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLogBuffer(tt.capacity)
			fill(b, tt.added)

			assert.Equal(t, len(tt.wantAll), b.Len())
			assert.Equal(t, tt.wantAll, messages(b.Entries()))
			assert.Equal(t, tt.last2, messages(b.Last(2)))
		})
	}
}

func TestLogBufferLastBounds(t *testing.T) {
	b := NewLogBuffer(4)
	fill(b, 3)

	assert.Equal(t, []string{"m1", "m2", "m3"}, messages(b.Last(10)))
	assert.Equal(t, []string{"m1", "m2", "m3"}, messages(b.Last(-1)))
	assert.Empty(t, b.Last(0))
}

func TestLogBufferEntriesAreCopies(t *testing.T) {
	b := NewLogBuffer(2)
	fill(b, 2)

	got := b.Entries()
	got[0].Message = "changed"
	assert.Equal(t, "m1", b.Entries()[0].Message)
}

func TestLogBufferAtLeast(t *testing.T) {
	b := NewLogBuffer(10)
	for _, lvl := range []Level{LevelDebug, LevelWarn, LevelInfo, LevelError} {
		b.Add(LogEntry{Level: lvl, Message: lvl.String()})
	}

	assert.Equal(t, []string{"debug", "warn", "info", "error"}, messages(b.AtLeast(LevelDebug)))
	assert.Equal(t, []string{"warn", "info", "error"}, messages(b.AtLeast(LevelInfo)))
	assert.Equal(t, []string{"warn", "error"}, messages(b.AtLeast(LevelWarn)))
	assert.Equal(t, []string{"error"}, messages(b.AtLeast(LevelError)))
}

func TestLogBufferClear(t *testing.T) {
	b := NewLogBuffer(2)
	fill(b, 3)
	b.Clear()

	assert.Zero(t, b.Len())
	assert.Empty(t, b.Entries())

	fill(b, 1)
	assert.Equal(t, []string{"m1"}, messages(b.Entries()))
}

func TestNewLogBufferDefaultCapacity(t *testing.T) {
	for _, n := range []int{0, -5} {
		b := NewLogBuffer(n)
		fill(b, DefaultBufferSize+1)
		require.Equal(t, DefaultBufferSize, b.Len())
		assert.Equal(t, "m2", b.Entries()[0].Message)
	}
}

func TestLogBufferConcurrentAdd(t *testing.T) {
	b := NewLogBuffer(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fill(b, 100)
			_ = b.Last(5)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, b.Len())
}

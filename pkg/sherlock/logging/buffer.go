package logging

import "sync"

// DefaultBufferSize is the capacity used when NewLogBuffer is given none.
const DefaultBufferSize = 100

// LogBuffer keeps the most recent entries, overwriting the oldest once full.
// It is safe for concurrent use.
type LogBuffer struct {
	mu   sync.RWMutex
	ring []LogEntry
	next int
	full bool
}

// NewLogBuffer returns a buffer holding up to capacity entries.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &LogBuffer{ring: make([]LogEntry, capacity)}
}

// Add appends an entry.
func (b *LogBuffer) Add(e LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ring[b.next] = e
	b.next++
	if b.next == len(b.ring) {
		b.next = 0
		b.full = true
	}
}

// Len returns the number of entries held.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.len()
}

func (b *LogBuffer) len() int {
	if b.full {
		return len(b.ring)
	}
	return b.next
}

// Entries returns a copy of all entries, oldest first.
func (b *LogBuffer) Entries() []LogEntry {
	return b.Last(-1)
}

// Last returns a copy of the newest n entries, oldest first. A negative n
// or one larger than Len returns everything.
func (b *LogBuffer) Last(n int) []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := b.len()
	if n < 0 || n > size {
		n = size
	}

	out := make([]LogEntry, 0, size)
	if b.full {
		out = append(out, b.ring[b.next:]...)
	}
	out = append(out, b.ring[:b.next]...)
	return out[len(out)-n:]
}

// AtLeast returns a copy of the entries at or above floor, oldest first.
func (b *LogBuffer) AtLeast(floor Level) []LogEntry {
	all := b.Entries()
	kept := all[:0]
	for _, e := range all {
		if e.Level >= floor {
			kept = append(kept, e)
		}
	}
	return kept
}

// Clear drops every entry.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.ring)
	b.next = 0
	b.full = false
}

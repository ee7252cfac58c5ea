package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// subscriberBuffer is the channel capacity of each subscription. Entries
// that do not fit are dropped rather than blocking the logger.
const subscriberBuffer = 100

// LogEntry is one logged message as delivered to subscribers.
type LogEntry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string

	// Fields holds the alternating key/value pairs logged with the message.
	Fields []interface{}
}

// String renders the message and its fields on one line.
func (e LogEntry) String() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i := 0; i+1 < len(e.Fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Fields[i], e.Fields[i+1])
	}
	return b.String()
}

// hub fans entries out to subscribers.
type hub struct {
	mu   sync.RWMutex
	subs map[chan LogEntry]struct{}
}

func (h *hub) subscribe() chan LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[chan LogEntry]struct{})
	}
	ch := make(chan LogEntry, subscriberBuffer)
	h.subs[ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(ch <-chan LogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if sub == ch {
			delete(h.subs, sub)
			return
		}
	}
}

func (h *hub) publish(e LogEntry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		close(ch)
	}
	h.subs = nil
}

// Subscribe returns a channel receiving every entry logged from now on.
// The channel is closed by Close; release it earlier with Unsubscribe.
func Subscribe() <-chan LogEntry {
	return std.hub.subscribe()
}

// Unsubscribe stops delivery to ch. The channel is left open so a reader
// blocked on it is not handed a spurious zero entry.
func Unsubscribe(ch <-chan LogEntry) {
	std.hub.unsubscribe(ch)
}

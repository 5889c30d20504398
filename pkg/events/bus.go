package events

import (
	"sync"
	"time"
)

// EventBus provides publish/subscribe for runtime events.
type EventBus interface {
	Publish(event Event)
	Subscribe(filter ...EventType) <-chan Event
	Unsubscribe(ch <-chan Event)
	History(since time.Time) []Event
}

// DefaultHistoryLimit is the number of events a MemoryBus retains.
const DefaultHistoryLimit = 1024

type subscriber struct {
	ch     chan Event
	filter map[EventType]bool // empty means all events
}

// MemoryBus is an in-memory EventBus. It keeps the most recent events up
// to its history limit; older ones are discarded.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	history     []Event
	limit       int
}

// BusOption configures a MemoryBus.
type BusOption func(*MemoryBus)

// WithHistoryLimit sets how many events the bus retains. Zero or negative
// disables history.
func WithHistoryLimit(n int) BusOption {
	return func(b *MemoryBus) {
		b.limit = n
	}
}

// NewMemoryBus creates a new in-memory event bus.
func NewMemoryBus(opts ...BusOption) *MemoryBus {
	b := &MemoryBus{limit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *MemoryBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	if b.limit > 0 {
		if len(b.history) >= b.limit {
			n := copy(b.history, b.history[len(b.history)-b.limit+1:])
			b.history = b.history[:n]
		}
		b.history = append(b.history, event)
	}
	b.mu.Unlock()

	// Sends happen under the read lock so Unsubscribe cannot close a
	// channel mid-send. They never block.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if len(sub.filter) > 0 && !sub.filter[event.Type] {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Slow subscribers miss events.
		}
	}
}

func (b *MemoryBus) Subscribe(filter ...EventType) <-chan Event {
	ch := make(chan Event, 64)
	sub := subscriber{ch: ch}
	if len(filter) > 0 {
		sub.filter = make(map[EventType]bool, len(filter))
		for _, f := range filter {
			sub.filter[f] = true
		}
	}

	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()

	return ch
}

func (b *MemoryBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub.ch == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

func (b *MemoryBus) History(since time.Time) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, e := range b.history {
		if !e.Timestamp.Before(since) {
			result = append(result, e)
		}
	}
	return result
}

// Nop is an EventBus that drops every event.
type Nop struct{}

func (Nop) Publish(Event) {}

// Subscribe returns a closed channel; ranging over it ends at once.
func (Nop) Subscribe(...EventType) <-chan Event {
	ch := make(chan Event)
	close(ch)
	return ch
}

func (Nop) Unsubscribe(<-chan Event)  {}
func (Nop) History(time.Time) []Event { return nil }

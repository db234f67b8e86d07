// Package notify implements the subscribe-to-query contract: callers
// subscribe to a topic (one per user's trip set) and receive a notification
// whenever the underlying data changes, so live-updating lists can re-query.
// Bursts of writes are coalesced through a debouncer — subscribers care that
// something changed, not how many times.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/mkowalczyk/triplog/internal/debounce"
)

// Event tells a subscriber that the data behind its topic changed.
type Event struct {
	Topic string
	At    time.Time
}

// Hub fans change notifications out to topic subscribers.
// Channels are buffered with capacity one and sends never block: a
// subscriber that already has an undelivered event needs no second one.
type Hub struct {
	coalesce time.Duration

	mu         sync.Mutex
	subs       map[string]map[chan Event]struct{}
	debouncers map[string]*debounce.Debouncer
	closed     bool
}

// NewHub returns a Hub that coalesces publishes within the given window.
// A zero window delivers on the next timer tick, effectively immediately.
func NewHub(coalesce time.Duration) *Hub {
	return &Hub{
		coalesce:   coalesce,
		subs:       make(map[string]map[chan Event]struct{}),
		debouncers: make(map[string]*debounce.Debouncer),
	}
}

// Subscribe registers for events on topic. The returned cancel function
// removes the subscription and closes the channel; calling it twice, or
// after Close, is a no-op.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[chan Event]struct{})
	}
	h.subs[topic][ch] = struct{}{}
	h.mu.Unlock()

	// Whoever removes ch from subs owns closing it: cancel closes only when
	// the removal happened here, so a cancel racing Close (which also closes
	// every channel it drained) can never close twice.
	cancel := func() {
		h.mu.Lock()
		removed := false
		if set, ok := h.subs[topic]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				removed = true
				if len(set) == 0 {
					delete(h.subs, topic)
				}
			}
		}
		h.mu.Unlock()
		if removed {
			close(ch)
		}
	}
	return ch, cancel
}

// Publish schedules a change notification for topic. Publishes inside the
// coalescing window collapse into a single delivery.
func (h *Hub) Publish(topic string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	d, ok := h.debouncers[topic]
	if !ok {
		d = debounce.New(h.coalesce)
		h.debouncers[topic] = d
	}
	h.mu.Unlock()

	d.Trigger(func(context.Context) {
		h.deliver(topic)
	})
}

func (h *Hub) deliver(topic string) {
	ev := Event{Topic: topic, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[topic] {
		select {
		case ch <- ev:
		default:
			// Subscriber already has a pending event; dropping is fine.
		}
	}
}

// Close stops all debouncers and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for _, d := range h.debouncers {
		d.Stop()
	}
	var chans []chan Event
	for _, set := range h.subs {
		for ch := range set {
			chans = append(chans, ch)
		}
	}
	h.subs = make(map[string]map[chan Event]struct{})
	h.mu.Unlock()

	for _, ch := range chans {
		close(ch)
	}
}

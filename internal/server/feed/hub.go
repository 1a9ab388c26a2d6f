// Package feed fans vehicle change events out to connected stations. The
// HTTP layer turns each subscription into a server-sent-event stream.
package feed

import (
	"sync"

	"github.com/gateflow/gateflow/internal/model"
)

// subscriberBuffer absorbs short bursts; a subscriber that falls further
// behind than this is dropped rather than allowed to stall the publisher.
const subscriberBuffer = 64

type Hub struct {
	mu   sync.Mutex
	subs map[chan model.ChangeEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan model.ChangeEvent]struct{})}
}

// Subscribe registers a new listener. The returned cancel function must be
// called when the listener goes away; it closes the channel.
func (h *Hub) Subscribe() (<-chan model.ChangeEvent, func()) {
	ch := make(chan model.ChangeEvent, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber. A full subscriber is
// disconnected; its stream handler notices the closed channel and the
// client re-syncs on reconnect.
func (h *Hub) Publish(ev model.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Subscribers reports the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

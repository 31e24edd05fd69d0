package web

import "sync"

// subscriberBuffer sizes each subscriber channel. agent output arrives in
// bursts when the stream parser flushes a turn, so the buffer needs headroom.
const subscriberBuffer = 256

// Hub fans generation events out to dashboard subscribers. safe for
// concurrent use from the broadcast logger and the SSE handlers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new dashboard connection and returns its channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

// Unsubscribe drops a connection and closes its channel. calling it again
// with the same channel is a no-op.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Broadcast delivers an event to every subscriber without blocking. a slow
// browser with a full buffer loses the event rather than stalling the run.
func (h *Hub) Broadcast(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- e:
		default: // buffer full, drop
		}
	}
}

// ClientCount reports how many dashboard connections are subscribed.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops every subscriber and closes their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

// Package notify fans out lightweight change events to in-process
// subscribers. Events carry only the table, action and row id; observers
// re-query for current state.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

type Hub struct {
	log *slog.Logger

	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a listener that receives events until ctx is done.
// The returned channel is closed on unsubscribe.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers the event to every subscriber without blocking. A
// subscriber that has fallen behind loses the event; observers re-query on
// receipt, so a dropped event only delays a refresh.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.log.Warn("notify subscriber lagging, event dropped",
				"table", event.Table, "action", event.Action)
		}
	}
}

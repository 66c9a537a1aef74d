package hub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/metrics"
)

// ErrHubFull is returned by Register when the subscriber limit is reached.
var ErrHubFull = errors.New("maximum number of subscribers reached")

// Subscriber is one consumer's delivery handle. Its mailbox is drained by the
// owning connection; the channel is never closed, the consumer stops reading
// when its own connection ends.
type Subscriber struct {
	id     uuid.UUID
	events chan []byte
}

// Events returns the mailbox to drain. Each element is one serialized event.
func (s *Subscriber) Events() <-chan []byte {
	return s.events
}

// Hub is the fan-out registry. Register/Unregister may run concurrently with
// Publish; Publish works on a point-in-time snapshot of the registry.
type Hub struct {
	mu             sync.RWMutex
	subscribers    map[uuid.UUID]*Subscriber
	buffer         int
	maxSubscribers int
}

// New creates a hub. buffer is the per-subscriber mailbox capacity.
// maxSubscribers limits concurrent subscribers; 0 means unlimited.
func New(buffer, maxSubscribers int) *Hub {
	return &Hub{
		subscribers:    make(map[uuid.UUID]*Subscriber),
		buffer:         buffer,
		maxSubscribers: maxSubscribers,
	}
}

// Register adds a new subscriber with an empty mailbox. Events published
// before registration are never delivered.
func (h *Hub) Register() (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxSubscribers > 0 && len(h.subscribers) >= h.maxSubscribers {
		slog.Warn("Rejecting subscriber: max subscribers reached", "max_subscribers", h.maxSubscribers)
		return nil, ErrHubFull
	}

	sub := &Subscriber{
		id:     uuid.New(),
		events: make(chan []byte, h.buffer),
	}
	h.subscribers[sub.id] = sub

	metrics.HubSubscribers.Set(float64(len(h.subscribers)))
	slog.Debug("Subscriber registered", "subscriber_id", sub.id.String(), "total", len(h.subscribers))
	return sub, nil
}

// Unregister removes a subscriber. Idempotent.
func (h *Hub) Unregister(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.id]; !ok {
		return
	}
	delete(h.subscribers, sub.id)

	metrics.HubSubscribers.Set(float64(len(h.subscribers)))
	slog.Debug("Subscriber unregistered", "subscriber_id", sub.id.String(), "remaining", len(h.subscribers))
}

// Publish serializes the event once and enqueues it into every registered
// mailbox without blocking. A full mailbox drops the event for that
// subscriber only.
func (h *Hub) Publish(ev domain.ClassifiedEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal broadcast event", "error", err)
		return
	}

	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.events <- data:
		default:
			metrics.HubDroppedTotal.Inc()
		}
	}

	metrics.HubPublishedTotal.Inc()
}

// SubscriberCount returns the current number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

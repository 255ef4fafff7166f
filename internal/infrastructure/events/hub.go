package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultSubscriberBuffer is the per-subscriber queue length
const DefaultSubscriberBuffer = 16

// Hub fans events out in-process to subscribers of the owning account.
// A subscriber whose queue is full misses the event instead of stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	buffer int
}

type subscription struct {
	ownerID uuid.UUID
	ch      chan ChangeEvent
}

// NewHub creates a hub; buffer <= 0 selects DefaultSubscriberBuffer
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[uint64]*subscription),
		buffer: buffer,
	}
}

// Subscribe registers interest in an owner's events. The returned cancel func closes the
// channel and must be called once the subscriber is done.
func (h *Hub) Subscribe(ownerID uuid.UUID) (<-chan ChangeEvent, func()) {
	sub := &subscription{ownerID: ownerID, ch: make(chan ChangeEvent, h.buffer)}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish never blocks and never fails
func (h *Hub) Publish(_ context.Context, event ChangeEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.ownerID != event.OwnerID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribers reports how many subscriptions are open
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

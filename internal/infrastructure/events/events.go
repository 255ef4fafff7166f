package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType names a change that clients may want to react to
type EventType string

const (
	EventProductCreated EventType = "product.created"
	EventProductUpdated EventType = "product.updated"
	EventProductDeleted EventType = "product.deleted"
	EventStockChanged   EventType = "stock.changed"
	EventSaleRecorded   EventType = "sale.recorded"
)

// ChangeEvent is a push hint: it says what changed, never the new state.
// Subscribers re-read through the API.
type ChangeEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	OwnerID    uuid.UUID `json:"owner_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewChangeEvent stamps a new event with an id and the current time
func NewChangeEvent(t EventType, ownerID, entityID uuid.UUID) ChangeEvent {
	return ChangeEvent{
		ID:         uuid.New(),
		Type:       t,
		OwnerID:    ownerID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers change events. Implementations must not block on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Multi fans an event out to every publisher and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event ChangeEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, ChangeEvent) error { return nil }

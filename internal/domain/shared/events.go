package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact an aggregate records about itself. The aggregate
// id is a string because orders and lookups use integer keys while the
// rest use UUIDs.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
	AggregateType() string
}

// BaseDomainEvent is embedded by every concrete event. Its JSON form is
// the envelope realtime subscribers see.
type BaseDomainEvent struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"type"`
	At          time.Time `json:"occurred_at"`
	Subject     string    `json:"aggregate_id"`
	SubjectType string    `json:"aggregate_type"`
}

func NewBaseDomainEvent(eventType, aggregateType, aggregateID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.New(),
		Name:        eventType,
		At:          time.Now().UTC(),
		Subject:     aggregateID,
		SubjectType: aggregateType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID    { return e.ID }
func (e *BaseDomainEvent) EventType() string     { return e.Name }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.At }
func (e *BaseDomainEvent) AggregateID() string   { return e.Subject }
func (e *BaseDomainEvent) AggregateType() string { return e.SubjectType }

// EventHandler reacts to published events. A handler whose EventTypes is
// empty receives everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers. Event types passed to Subscribe
// override the handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PublishAndClear hands the aggregate's pending events to publisher and
// empties the aggregate. Services built without a bus pass nil.
func PublishAndClear(ctx context.Context, publisher EventPublisher, aggregate AggregateRoot) error {
	pending := aggregate.GetDomainEvents()
	if len(pending) == 0 {
		return nil
	}
	aggregate.ClearDomainEvents()
	if publisher == nil {
		return nil
	}
	return publisher.Publish(ctx, pending...)
}

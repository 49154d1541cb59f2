package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every uuid-keyed row shares.
// Orders and lookups use integer keys and do not embed it.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh id with matching created/updated times.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// Touch records a mutation.
func (e *BaseEntity) Touch() { e.UpdatedAt = time.Now().UTC() }

// AggregateRoot is implemented by entities that record domain events
type AggregateRoot interface {
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// EventRecorder collects domain events raised by an aggregate until the
// application layer publishes them
type EventRecorder struct {
	domainEvents []DomainEvent
}

func (r *EventRecorder) AddDomainEvent(event DomainEvent) {
	r.domainEvents = append(r.domainEvents, event)
}

func (r *EventRecorder) GetDomainEvents() []DomainEvent {
	return r.domainEvents
}

func (r *EventRecorder) ClearDomainEvents() {
	r.domainEvents = nil
}

// BaseAggregateRoot is a uuid-keyed entity with an event recorder
type BaseAggregateRoot struct {
	BaseEntity
	EventRecorder
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

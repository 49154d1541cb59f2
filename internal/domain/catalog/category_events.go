package catalog

import (
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
)

// AggregateTypeCategory is the aggregate type of category events
const AggregateTypeCategory = "categories"

// Event type constants
const (
	EventTypeCategoryCreated = "CategoryCreated"
	EventTypeCategoryUpdated = "CategoryUpdated"
	EventTypeCategoryDeleted = "CategoryDeleted"
)

// CategoryEvent carries the category state at the time of the change
type CategoryEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
}

func newCategoryEvent(eventType string, c *Category) *CategoryEvent {
	return &CategoryEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCategory, c.ID.String()),
		CategoryID:      c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
	}
}

// NewCategoryCreatedEvent creates a CategoryCreated event
func NewCategoryCreatedEvent(c *Category) *CategoryEvent {
	return newCategoryEvent(EventTypeCategoryCreated, c)
}

// NewCategoryUpdatedEvent creates a CategoryUpdated event
func NewCategoryUpdatedEvent(c *Category) *CategoryEvent {
	return newCategoryEvent(EventTypeCategoryUpdated, c)
}

// NewCategoryDeletedEvent creates a CategoryDeleted event
func NewCategoryDeletedEvent(c *Category) *CategoryEvent {
	return newCategoryEvent(EventTypeCategoryDeleted, c)
}

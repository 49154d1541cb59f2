package catalog

import (
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type of product events
const AggregateTypeProduct = "products"

// Event type constants
const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeProductUpdated = "ProductUpdated"
	EventTypeProductDeleted = "ProductDeleted"
)

// ProductEvent carries the storefront-visible state of a product
type ProductEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	IsActive   bool            `json:"is_active"`
	IsFeatured bool            `json:"is_featured"`
}

func newProductEvent(eventType string, p *Product) *ProductEvent {
	return &ProductEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProduct, p.ID.String()),
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price.Amount(),
		Stock:           p.Stock,
		IsActive:        p.IsActive,
		IsFeatured:      p.IsFeatured,
	}
}

// NewProductCreatedEvent creates a ProductCreated event
func NewProductCreatedEvent(p *Product) *ProductEvent {
	return newProductEvent(EventTypeProductCreated, p)
}

// NewProductUpdatedEvent creates a ProductUpdated event
func NewProductUpdatedEvent(p *Product) *ProductEvent {
	return newProductEvent(EventTypeProductUpdated, p)
}

// NewProductDeletedEvent creates a ProductDeleted event
func NewProductDeletedEvent(p *Product) *ProductEvent {
	return newProductEvent(EventTypeProductDeleted, p)
}

package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	UserID   *uuid.UUID
	Status   *OrderStatus
	Search   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip
func (f OrderFilter) Offset() int {
	return shared.PageOffset(f.Page, f.PageSize)
}

// Limit returns the page size, defaulting to 20 and capped at 100
func (f OrderFilter) Limit() int {
	return shared.PageLimit(f.PageSize)
}

// StatusCount is the number of orders in one status
type StatusCount struct {
	Status OrderStatus
	Count  int64
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts the order with its items and assigns the ID
	Create(ctx context.Context, order *Order) error

	// FindByID loads an order with its items
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindAll returns one page of orders (with items) and the total count
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)

	// UpdateStatus persists the order's status if the stored status is still
	// from. A row that moved on meanwhile yields ErrStatusChanged.
	UpdateStatus(ctx context.Context, order *Order, from OrderStatus) error

	// Delete removes an order and its items
	Delete(ctx context.Context, id int64) error

	// Resequence renumbers the remaining orders to 1..N by creation order and
	// returns the applied plan
	Resequence(ctx context.Context) (ResequencePlan, error)

	// CountByUser returns the number of orders a customer placed
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountByStatus returns the number of orders per status
	CountByStatus(ctx context.Context) ([]StatusCount, error)

	// Revenue sums the totals of orders that were not cancelled
	Revenue(ctx context.Context) (decimal.Decimal, error)

	// Recent returns the latest orders
	Recent(ctx context.Context, limit int) ([]*Order, error)
}

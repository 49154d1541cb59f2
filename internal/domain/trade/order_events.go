package trade

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type of order events
const AggregateTypeOrder = "orders"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderDeleted       = "OrderDeleted"
	EventTypeOrdersResequenced  = "OrdersResequenced"
)

// OrderPlacedEvent is published after checkout commits
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID   int64           `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	ItemCount int             `json:"item_count"`
}

// NewOrderPlacedEvent creates an OrderPlaced event
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, strconv.FormatInt(o.ID, 10)),
		OrderID:         o.ID,
		UserID:          o.UserID,
		Total:           o.Total.Amount(),
		Currency:        string(o.Total.Currency()),
		ItemCount:       o.ItemCount(),
	}
}

// OrderStatusChangedEvent is published on every status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   int64       `json:"order_id"`
	UserID    uuid.UUID   `json:"user_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChanged event
func NewOrderStatusChangedEvent(o *Order, oldStatus, newStatus OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, strconv.FormatInt(o.ID, 10)),
		OrderID:         o.ID,
		UserID:          o.UserID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// OrderDeletedEvent is published when an admin deletes an order
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID int64 `json:"order_id"`
}

// NewOrderDeletedEvent creates an OrderDeleted event
func NewOrderDeletedEvent(o *Order) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeleted, AggregateTypeOrder, strconv.FormatInt(o.ID, 10)),
		OrderID:         o.ID,
	}
}

// OrdersResequencedEvent tells subscribers that order IDs were renumbered
// and any cached order list must be reloaded
type OrdersResequencedEvent struct {
	shared.BaseDomainEvent
	Moves []IDMove `json:"moves"`
	Count int      `json:"count"`
}

// NewOrdersResequencedEvent creates an OrdersResequenced event. Moves maps
// each renumbered order's old ID to its new one.
func NewOrdersResequencedEvent(plan ResequencePlan) *OrdersResequencedEvent {
	byTemp := make(map[int64]int64, len(plan.Stage))
	for _, m := range plan.Stage {
		byTemp[m.To] = m.From
	}
	moves := make([]IDMove, 0, len(plan.Final))
	for _, m := range plan.Final {
		moves = append(moves, IDMove{From: byTemp[m.From], To: m.To})
	}
	return &OrdersResequencedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrdersResequenced, AggregateTypeOrder, ""),
		Moves:           moves,
		Count:           plan.Count,
	}
}

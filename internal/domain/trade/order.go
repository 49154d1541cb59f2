package trade

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ErrStatusChanged reports a status write that lost a race with another writer
var ErrStatusChanged = shared.NewDomainError("INVALID_STATE", "Order status was changed by another request")

// AllOrderStatuses lists the statuses in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsFinal reports whether no further transition is possible
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentMethod is how the customer intends to pay
type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// IsValid reports whether the payment method is accepted
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCard, PaymentCashOnDelivery, PaymentBankTransfer:
		return true
	}
	return false
}

// ShippingAddress is the delivery contact captured at checkout
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate checks the required delivery fields
func (a ShippingAddress) Validate() error {
	required := []struct{ field, value string }{
		{"full_name", a.FullName},
		{"email", a.Email},
		{"address", a.Address},
		{"city", a.City},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return shared.NewDomainError("INVALID_SHIPPING", fmt.Sprintf("Shipping %s is required", r.field))
		}
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return shared.NewDomainError("INVALID_SHIPPING", "Shipping email is invalid")
	}
	return nil
}

func (a ShippingAddress) trimmed() ShippingAddress {
	return ShippingAddress{
		FullName:   strings.TrimSpace(a.FullName),
		Email:      strings.ToLower(strings.TrimSpace(a.Email)),
		Phone:      strings.TrimSpace(a.Phone),
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

// OrderItem is a priced order line. Name and price are copied from the
// product at checkout so later catalog edits do not change the order.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   valueobject.Money
	Quantity    int
	LineTotal   valueobject.Money
}

// LineInput is one line handed to NewOrder
type LineInput struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   valueobject.Money
	Quantity    int
}

// Order is a placed customer order. Orders are keyed by a dense integer
// sequence that admin deletions renumber.
type Order struct {
	shared.EventRecorder
	ID            int64
	UserID        uuid.UUID
	Status        OrderStatus
	Shipping      ShippingAddress
	PaymentMethod PaymentMethod
	Notes         string
	Items         []OrderItem
	Subtotal      valueobject.Money
	ShippingCost  valueobject.Money
	Tax           valueobject.Money
	Total         valueobject.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder builds a pending order and prices it with the policy.
// The ID is assigned on insert; call MarkPlaced afterwards.
func NewOrder(userID uuid.UUID, shipping ShippingAddress, payment PaymentMethod, notes string, lines []LineInput, policy PricingPolicy) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	shipping = shipping.trimmed()
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if !payment.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method: "+string(payment))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot place an order without items")
	}
	if len(notes) > 1000 {
		return nil, shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	}

	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if !line.UnitPrice.IsPositive() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
		}
		items = append(items, OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.UnitPrice.MultiplyByInt(int64(line.Quantity)),
		})
	}

	totals, err := policy.Price(items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Order{
		UserID:        userID,
		Status:        OrderStatusPending,
		Shipping:      shipping,
		PaymentMethod: payment,
		Notes:         strings.TrimSpace(notes),
		Items:         items,
		Subtotal:      totals.Subtotal,
		ShippingCost:  totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MarkPlaced records the OrderPlaced event once the order has an ID
func (o *Order) MarkPlaced() {
	o.AddDomainEvent(NewOrderPlacedEvent(o))
}

// MarkDeleted records the deletion event
func (o *Order) MarkDeleted() {
	o.AddDomainEvent(NewOrderDeletedEvent(o))
}

// TransitionTo moves the order to the target status
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+string(target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	old := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, target))
	return nil
}

// CancelByCustomer cancels an order the customer owns; only pending orders qualify
func (o *Order) CancelByCustomer() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending orders can be cancelled")
	}
	return o.TransitionTo(OrderStatusCancelled)
}

// IsOwnedBy reports whether the order belongs to the user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// ItemCount returns the number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ShippingRequest is the delivery contact entered at checkout
type ShippingRequest struct {
	FullName   string `json:"full_name" binding:"required,max=120"`
	Email      string `json:"email" binding:"required,email,max=254"`
	Phone      string `json:"phone" binding:"omitempty,max=40,phone"`
	Address    string `json:"address" binding:"required,max=300"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
}

func (r ShippingRequest) toDomain() trade.ShippingAddress {
	return trade.ShippingAddress{
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// CheckoutRequest places an order from the caller's cart
type CheckoutRequest struct {
	Shipping      ShippingRequest `json:"shipping" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=card cash_on_delivery bank_transfer"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// OrderListQuery filters order listings
type OrderListQuery struct {
	Status   string     `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Search   string     `form:"search" binding:"max=100"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UpdateOrderStatusRequest moves an order to another status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            int64                 `json:"id"`
	UserID        uuid.UUID             `json:"user_id"`
	Status        string                `json:"status"`
	Shipping      trade.ShippingAddress `json:"shipping"`
	PaymentMethod string                `json:"payment_method"`
	Notes         string                `json:"notes,omitempty"`
	Items         []OrderItemResponse   `json:"items"`
	ItemCount     int                   `json:"item_count"`
	Currency      string                `json:"currency"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	ShippingCost  decimal.Decimal       `json:"shipping_cost"`
	Tax           decimal.Decimal       `json:"tax"`
	Total         decimal.Decimal       `json:"total"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.Amount(),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal.Amount(),
		}
	}
	return OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Shipping:      o.Shipping,
		PaymentMethod: string(o.PaymentMethod),
		Notes:         o.Notes,
		Items:         items,
		ItemCount:     o.ItemCount(),
		Currency:      string(o.Total.Currency()),
		Subtotal:      o.Subtotal.Amount(),
		ShippingCost:  o.ShippingCost.Amount(),
		Tax:           o.Tax.Amount(),
		Total:         o.Total.Amount(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []*trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}

// DeleteOrderResult is returned by the admin delete. Orders is the refreshed
// list; it is also filled when the delete failed so the caller sees the
// real state.
type DeleteOrderResult struct {
	DeletedID  int64      `json:"deleted_id"`
	Renumbered int        `json:"renumbered"`
	OrderCount int        `json:"order_count"`
	Orders     *OrderPage `json:"orders,omitempty"`
}

// OrderPage is one page of orders
type OrderPage = shared.Paginated[OrderResponse]

// Invoice is a rendered order document
type Invoice struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DashboardStats summarizes the shop for the admin home page
type DashboardStats struct {
	OrdersByStatus    map[string]int64 `json:"orders_by_status"`
	TotalOrders       int64            `json:"total_orders"`
	Revenue           decimal.Decimal  `json:"revenue"`
	Currency          string           `json:"currency"`
	ProductCount      int64            `json:"product_count"`
	UserCount         int64            `json:"user_count"`
	CustomerCount     int64            `json:"customer_count"`
	PendingReviews    int64            `json:"pending_reviews"`
	UnreadSubmissions int64            `json:"unread_submissions"`
	RecentOrders      []OrderResponse  `json:"recent_orders"`
}

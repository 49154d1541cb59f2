package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
// Orders use an integer key so they can be renumbered after deletions.
type OrderModel struct {
	ID                 int64               `gorm:"primaryKey;autoIncrement"`
	UserID             uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status             trade.OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	ShippingFullName   string              `gorm:"type:varchar(200);not null"`
	ShippingEmail      string              `gorm:"type:varchar(255);not null"`
	ShippingPhone      string              `gorm:"type:varchar(50)"`
	ShippingAddress    string              `gorm:"type:varchar(500);not null"`
	ShippingCity       string              `gorm:"type:varchar(100);not null"`
	ShippingPostalCode string              `gorm:"type:varchar(20);not null"`
	ShippingCountry    string              `gorm:"type:varchar(100);not null"`
	PaymentMethod      trade.PaymentMethod `gorm:"type:varchar(30);not null"`
	Notes              string              `gorm:"type:text"`
	Currency           string              `gorm:"type:varchar(3);not null;default:'USD'"`
	Subtotal           decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	ShippingCost       decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Tax                decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Total              decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Items              []OrderItemModel    `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt          time.Time           `gorm:"not null;index"`
	UpdatedAt          time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	currency := currencyOrDefault(m.Currency)
	order := &trade.Order{
		ID:     m.ID,
		UserID: m.UserID,
		Status: m.Status,
		Shipping: trade.ShippingAddress{
			FullName:   m.ShippingFullName,
			Email:      m.ShippingEmail,
			Phone:      m.ShippingPhone,
			Address:    m.ShippingAddress,
			City:       m.ShippingCity,
			PostalCode: m.ShippingPostalCode,
			Country:    m.ShippingCountry,
		},
		PaymentMethod: m.PaymentMethod,
		Notes:         m.Notes,
		Subtotal:      valueobject.MustMoney(m.Subtotal, currency),
		ShippingCost:  valueobject.MustMoney(m.ShippingCost, currency),
		Tax:           valueobject.MustMoney(m.Tax, currency),
		Total:         valueobject.MustMoney(m.Total, currency),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	order.Items = make([]trade.OrderItem, 0, len(m.Items))
	for i := range m.Items {
		order.Items = append(order.Items, m.Items[i].ToDomain(currency))
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.ID = o.ID
	m.UserID = o.UserID
	m.Status = o.Status
	m.ShippingFullName = o.Shipping.FullName
	m.ShippingEmail = o.Shipping.Email
	m.ShippingPhone = o.Shipping.Phone
	m.ShippingAddress = o.Shipping.Address
	m.ShippingCity = o.Shipping.City
	m.ShippingPostalCode = o.Shipping.PostalCode
	m.ShippingCountry = o.Shipping.Country
	m.PaymentMethod = o.PaymentMethod
	m.Notes = o.Notes
	m.Currency = string(o.Total.Currency())
	m.Subtotal = o.Subtotal.Amount()
	m.ShippingCost = o.ShippingCost.Amount()
	m.Tax = o.Tax.Amount()
	m.Total = o.Total.Amount()
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for i := range o.Items {
		m.Items = append(m.Items, OrderItemModelFromDomain(&o.Items[i]))
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain(currency valueobject.Currency) trade.OrderItem {
	return trade.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		UnitPrice:   valueobject.MustMoney(m.UnitPrice, currency),
		Quantity:    m.Quantity,
		LineTotal:   valueobject.MustMoney(m.LineTotal, currency),
	}
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem.
func OrderItemModelFromDomain(i *trade.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:          i.ID,
		OrderID:     i.OrderID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		UnitPrice:   i.UnitPrice.Amount(),
		Quantity:    i.Quantity,
		LineTotal:   i.LineTotal.Amount(),
	}
}

func currencyOrDefault(code string) valueobject.Currency {
	if code == "" {
		return valueobject.DefaultCurrency
	}
	return valueobject.Currency(code)
}

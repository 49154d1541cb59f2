package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
)

// MaxLineQuantity caps a single cart line
const MaxLineQuantity = 99

// Item is one cart line
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is a customer's basket. It lives in a key-value store, not in the
// relational schema.
type Cart struct {
	UserID    uuid.UUID `json:"user_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart for the user
func New(userID uuid.UUID) *Cart {
	return &Cart{UserID: userID, Items: []Item{}, UpdatedAt: time.Now()}
}

// Quantity returns the quantity held for a product
func (c *Cart) Quantity(productID uuid.UUID) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Add merges quantity into the product's line. available caps the result.
func (c *Cart) Add(productID uuid.UUID, quantity, available int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	return c.Set(productID, c.Quantity(productID)+quantity, available)
}

// Set overwrites the product's quantity; zero removes the line
func (c *Cart) Set(productID uuid.UUID, quantity, available int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if quantity == 0 {
		c.Remove(productID)
		return nil
	}
	if quantity > available {
		return shared.ErrInsufficientStock
	}
	if quantity > MaxLineQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot exceed 99")
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	c.UpdatedAt = time.Now()
	return nil
}

// Remove drops the product's line if present
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Retain keeps only the lines whose product satisfies keep
func (c *Cart) Retain(keep func(Item) bool) bool {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if keep(item) {
			kept = append(kept, item)
		}
	}
	changed := len(kept) != len(c.Items)
	c.Items = kept
	if changed {
		c.UpdatedAt = time.Now()
	}
	return changed
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ProductIDs lists the products in the cart
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Store persists carts with an expiry
type Store interface {
	// Get returns the user's cart, or an empty cart when none is stored
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save stores the cart and refreshes its TTL
	Save(ctx context.Context, cart *Cart) error

	// Delete removes the user's cart
	Delete(ctx context.Context, userID uuid.UUID) error
}

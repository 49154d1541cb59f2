package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/cart"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// Service manages customer carts
type Service struct {
	store       cart.Store
	productRepo catalog.ProductRepository
	policy      trade.PricingPolicy
	logger      *zap.Logger
}

// NewService creates a cart service
func NewService(store cart.Store, productRepo catalog.ProductRepository, policy trade.PricingPolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		productRepo: productRepo,
		policy:      policy,
		logger:      logger,
	}
}

// Get returns the priced cart. Lines whose product vanished or went inactive
// are dropped and the pruned cart is saved back.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return s.view(ctx, c)
}

// AddItem merges quantity into the product's line, capped by stock
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartView, error) {
	product, err := s.purchasable(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if err := c.Add(product.ID, req.Quantity, product.Stock); err != nil {
		return nil, stockError(err, product)
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.view(ctx, c)
}

// UpdateQuantity overwrites a line quantity; zero removes the line
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if quantity == 0 {
		c.Remove(productID)
	} else {
		if c.Quantity(productID) == 0 {
			return nil, shared.NewDomainError("NOT_IN_CART", "Product is not in the cart")
		}
		product, err := s.purchasable(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := c.Set(productID, quantity, product.Stock); err != nil {
			return nil, stockError(err, product)
		}
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.view(ctx, c)
}

// RemoveItem drops a product's line
func (s *Service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.Remove(productID) {
		if err := s.store.Save(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to save cart: %w", err)
		}
	}
	return s.view(ctx, c)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Service) purchasable(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	if product.Stock == 0 {
		return nil, shared.NewDomainError("OUT_OF_STOCK", product.Name+" is out of stock")
	}
	return product, nil
}

func stockError(err error, product *catalog.Product) error {
	if errors.Is(err, shared.ErrInsufficientStock) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Only %d of %s left in stock", product.Stock, product.Name))
	}
	return err
}

func (s *Service) view(ctx context.Context, c *cart.Cart) (*CartView, error) {
	products := map[uuid.UUID]*catalog.Product{}
	if !c.IsEmpty() {
		found, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
		if err != nil {
			return nil, fmt.Errorf("failed to load cart products: %w", err)
		}
		for _, p := range found {
			products[p.ID] = p
		}
	}

	if c.Retain(func(item cart.Item) bool {
		p, ok := products[item.ProductID]
		return ok && p.IsActive
	}) {
		if err := s.store.Save(ctx, c); err != nil {
			s.logger.Warn("Failed to save pruned cart", zap.String("user_id", c.UserID.String()), zap.Error(err))
		}
	}

	currency := s.policy.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	subtotal := valueobject.Zero(currency)
	view := &CartView{Items: make([]LineView, 0, len(c.Items)), UpdatedAt: c.UpdatedAt}
	for _, item := range c.Items {
		p := products[item.ProductID]
		line := p.Price.MultiplyByInt(int64(item.Quantity))
		sum, err := subtotal.Add(line)
		if err != nil {
			return nil, shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
		}
		subtotal = sum
		view.ItemCount += item.Quantity
		view.Items = append(view.Items, LineView{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			UnitPrice: p.Price.Amount(),
			Quantity:  item.Quantity,
			LineTotal: line.Amount(),
			Stock:     p.Stock,
		})
	}

	view.Currency = string(currency)
	if len(view.Items) == 0 {
		zero := valueobject.Zero(currency).Amount()
		view.Subtotal, view.Shipping, view.Tax, view.Total = zero, zero, zero, zero
		return view, nil
	}
	totals := s.policy.Quote(subtotal)
	view.Subtotal = totals.Subtotal.Amount()
	view.Shipping = totals.Shipping.Amount()
	view.Tax = totals.Tax.Amount()
	view.Total = totals.Total.Amount()
	return view, nil
}

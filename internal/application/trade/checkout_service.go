package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/cart"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CheckoutService turns a cart into a placed order
type CheckoutService struct {
	carts       cart.Store
	productRepo catalog.ProductRepository
	txScope     TransactionScope
	policy      trade.PricingPolicy
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	carts cart.Store,
	productRepo catalog.ProductRepository,
	txScope TransactionScope,
	policy trade.PricingPolicy,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		carts:       carts,
		productRepo: productRepo,
		txScope:     txScope,
		policy:      policy,
		publisher:   publisher,
		logger:      logger,
	}
}

// PlaceOrder prices the caller's cart at current product prices, takes the
// stock and inserts the order in one transaction, then empties the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "PlaceOrder",
		telemetry.SpanAttrUserID, userID.String(),
	)
	defer span.End()

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Your cart is empty")
	}

	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]trade.LineInput, 0, len(c.Items))
	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok || !p.IsActive {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "A product in your cart is no longer available")
		}
		if err := p.DecreaseStock(item.Quantity); err != nil {
			if errors.Is(err, shared.ErrInsufficientStock) {
				return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Only %d of %s left in stock", p.Stock, p.Name))
			}
			return nil, err
		}
		lines = append(lines, trade.LineInput{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    item.Quantity,
		})
	}

	order, err := trade.NewOrder(userID, req.Shipping.toDomain(), trade.PaymentMethod(req.PaymentMethod), req.Notes, lines, s.policy)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, line := range lines {
			if err := repos.ProductRepo().AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError("INSUFFICIENT_STOCK",
						fmt.Sprintf("Not enough stock left for %s", line.ProductName))
				}
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("PRODUCT_UNAVAILABLE", "A product in your cart is no longer available")
				}
				return fmt.Errorf("failed to reserve stock: %w", err)
			}
		}
		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	order.MarkPlaced()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID,
		telemetry.SpanAttrItemCount, order.ItemCount(),
		telemetry.SpanAttrOrderTotal, order.Total.Amount().String(),
	)

	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("user_id", userID.String()),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	s.publish(ctx, order)
	for _, p := range products {
		s.publish(ctx, p)
	}

	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("user_id", userID.String()),
		zap.String("total", order.Total.String()))

	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *CheckoutService) publish(ctx context.Context, aggregate shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.publisher, aggregate); err != nil {
		s.logger.Warn("Failed to publish checkout events", zap.Error(err))
	}
}

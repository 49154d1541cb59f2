package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderService handles order reads and lifecycle changes for customers and admins
type OrderService struct {
	orderRepo trade.OrderRepository
	txScope   TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	txScope TransactionScope,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		publisher: publisher,
		logger:    logger,
	}
}

// ListMine returns the caller's orders, newest first
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, query OrderListQuery) (*OrderPage, error) {
	filter := toFilter(query)
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// GetMine returns one of the caller's orders. Someone else's order reads as
// not found so IDs cannot be probed.
func (s *OrderService) GetMine(ctx context.Context, userID uuid.UUID, id int64) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, orderNotFound()
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// CancelMine cancels a pending order the caller owns and puts its stock back
func (s *OrderService) CancelMine(ctx context.Context, userID uuid.UUID, id int64) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, orderNotFound()
	}
	from := order.Status
	if err := order.CancelByCustomer(); err != nil {
		return nil, err
	}
	if err := s.saveCancellation(ctx, order, from); err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("Order cancelled by customer",
		zap.Int64("order_id", order.ID),
		zap.String("user_id", userID.String()))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns orders for the admin listing
func (s *OrderService) List(ctx context.Context, query OrderListQuery) (*OrderPage, error) {
	return s.list(ctx, toFilter(query))
}

// Get returns any order
func (s *OrderService) Get(ctx context.Context, id int64) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateStatus moves an order through the status machine. Cancelling
// restocks the items in the same transaction as the status write.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := order.Status
	target := trade.OrderStatus(req.Status)
	if target == oldStatus {
		resp := ToOrderResponse(order)
		return &resp, nil
	}
	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}

	if target == trade.OrderStatusCancelled {
		err = s.saveCancellation(ctx, order, oldStatus)
	} else if err = s.orderRepo.UpdateStatus(ctx, order, oldStatus); err != nil {
		err = statusWriteError(err)
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("Order status updated",
		zap.Int64("order_id", order.ID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(target)))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete removes an order and renumbers the remaining ones to 1..N in
// creation order, both inside one transaction. The refreshed listing is
// returned even when the delete fails, so the caller can redraw from the
// real state.
func (s *OrderService) Delete(ctx context.Context, id int64, query OrderListQuery) (*DeleteOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "Delete", telemetry.SpanAttrOrderID, id)
	defer span.End()

	result := &DeleteOrderResult{DeletedID: id}

	order, err := s.find(ctx, id)
	if err != nil {
		s.refresh(ctx, result, query)
		return result, err
	}

	var plan trade.ResequencePlan
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().Delete(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return orderNotFound()
			}
			return fmt.Errorf("failed to delete order: %w", err)
		}
		var err error
		plan, err = repos.OrderRepo().Resequence(ctx)
		if err != nil {
			return fmt.Errorf("failed to renumber orders: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Order deletion rolled back", zap.Int64("order_id", id), zap.Error(err))
		s.refresh(ctx, result, query)
		return result, err
	}

	order.MarkDeleted()
	if !plan.IsNoop() {
		order.AddDomainEvent(trade.NewOrdersResequencedEvent(plan))
	}
	s.publish(ctx, order)

	result.Renumbered = len(plan.Final)
	result.OrderCount = plan.Count
	telemetry.SetAttributes(span, "renumbered", result.Renumbered)

	s.logger.Info("Order deleted",
		zap.Int64("order_id", id),
		zap.Int("renumbered", result.Renumbered),
		zap.Int("remaining", plan.Count))

	s.refresh(ctx, result, query)
	return result, nil
}

// saveCancellation writes the cancelled status and restocks every line.
// Nothing is restocked unless the order still held from. Lines whose product
// was deleted since are skipped.
func (s *OrderService) saveCancellation(ctx context.Context, order *trade.Order, from trade.OrderStatus) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().UpdateStatus(ctx, order, from); err != nil {
			return statusWriteError(err)
		}
		for _, item := range order.Items {
			err := repos.ProductRepo().AdjustStock(ctx, item.ProductID, item.Quantity)
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Debug("Skipping restock of deleted product",
					zap.String("product_id", item.ProductID.String()))
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to restock product: %w", err)
			}
		}
		return nil
	})
}

func statusWriteError(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return orderNotFound()
	case errors.Is(err, trade.ErrStatusChanged):
		return err
	}
	return fmt.Errorf("failed to update order status: %w", err)
}

func (s *OrderService) refresh(ctx context.Context, result *DeleteOrderResult, query OrderListQuery) {
	page, err := s.list(ctx, toFilter(query))
	if err != nil {
		s.logger.Warn("Failed to reload orders after delete", zap.Error(err))
		return
	}
	result.Orders = page
	if result.OrderCount == 0 {
		result.OrderCount = int(page.Total)
	}
}

func (s *OrderService) list(ctx context.Context, filter trade.OrderFilter) (*OrderPage, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	page := shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.Limit())
	return &page, nil
}

func (s *OrderService) find(ctx context.Context, id int64) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, orderNotFound()
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	if err := shared.PublishAndClear(ctx, s.publisher, order); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

func toFilter(q OrderListQuery) trade.OrderFilter {
	f := trade.OrderFilter{
		Search:   q.Search,
		From:     q.From,
		To:       q.To,
		Page:     max(q.Page, 1),
		PageSize: q.PageSize,
	}
	if q.Status != "" {
		status := trade.OrderStatus(q.Status)
		f.Status = &status
	}
	return f
}

func orderNotFound() error {
	return shared.NewDomainError("NOT_FOUND", "Order not found")
}

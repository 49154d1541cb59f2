package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// InvoiceRenderer renders an order document
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, order *trade.Order) (*Invoice, error)
}

// InvoiceService produces downloadable invoices
type InvoiceService struct {
	orders   *OrderService
	renderer InvoiceRenderer
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(orders *OrderService, renderer InvoiceRenderer, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{orders: orders, renderer: renderer, logger: logger}
}

// ForCustomer renders the invoice of an order the caller owns
func (s *InvoiceService) ForCustomer(ctx context.Context, userID uuid.UUID, orderID int64) (*Invoice, error) {
	order, err := s.orders.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, orderNotFound()
	}
	return s.render(ctx, order)
}

// ForAdmin renders the invoice of any order
func (s *InvoiceService) ForAdmin(ctx context.Context, orderID int64) (*Invoice, error) {
	order, err := s.orders.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, order)
}

func (s *InvoiceService) render(ctx context.Context, order *trade.Order) (*Invoice, error) {
	if s.renderer == nil {
		return nil, shared.NewDomainError("INVOICE_UNAVAILABLE", "Invoice rendering is not configured")
	}
	invoice, err := s.renderer.RenderInvoice(ctx, order)
	if err != nil {
		s.logger.Error("Failed to render invoice", zap.Int64("order_id", order.ID), zap.Error(err))
		return nil, shared.NewDomainError("INVOICE_FAILED", "Failed to render invoice")
	}
	return invoice, nil
}

package trade

import (
	"context"
	"fmt"

	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/contact"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/review"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RecentOrdersLimit is the number of orders shown on the dashboard
const RecentOrdersLimit = 5

// DashboardService aggregates shop statistics for the admin home page
type DashboardService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	reviewRepo  review.Repository
	contactRepo contact.Repository
	currency    valueobject.Currency
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	reviewRepo review.Repository,
	contactRepo contact.Repository,
	currency valueobject.Currency,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		reviewRepo:  reviewRepo,
		contactRepo: contactRepo,
		currency:    currency,
		logger:      logger,
	}
}

// Stats collects the dashboard figures
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "Stats")
	defer span.End()

	stats := &DashboardStats{
		OrdersByStatus: make(map[string]int64, len(trade.AllOrderStatuses)),
		Currency:       string(s.currency),
	}
	for _, status := range trade.AllOrderStatuses {
		stats.OrdersByStatus[string(status)] = 0
	}

	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	for _, c := range counts {
		stats.OrdersByStatus[string(c.Status)] = c.Count
		stats.TotalOrders += c.Count
	}

	if stats.Revenue, err = s.orderRepo.Revenue(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if stats.ProductCount, err = s.productRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if stats.UserCount, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.CustomerCount, err = s.userRepo.CountByRole(ctx, identity.RoleCustomer); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if stats.PendingReviews, err = s.reviewRepo.CountByStatus(ctx, review.StatusPending); err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	if stats.UnreadSubmissions, err = s.contactRepo.CountByStatus(ctx, contact.StatusNew); err != nil {
		return nil, fmt.Errorf("failed to count contact submissions: %w", err)
	}

	recent, err := s.orderRepo.Recent(ctx, RecentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}
	stats.RecentOrders = ToOrderResponses(recent)

	return stats, nil
}

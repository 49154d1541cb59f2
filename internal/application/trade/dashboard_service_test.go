package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/contact"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/review"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingUsers struct {
	identity.UserRepository
	total     int64
	customers int64
}

func (u countingUsers) Count(context.Context) (int64, error) { return u.total, nil }

func (u countingUsers) CountByRole(_ context.Context, role identity.UserRole) (int64, error) {
	if role == identity.RoleCustomer {
		return u.customers, nil
	}
	return u.total - u.customers, nil
}

type countingReviews struct {
	review.Repository
	byStatus map[review.Status]int64
}

func (r countingReviews) CountByStatus(_ context.Context, status review.Status) (int64, error) {
	return r.byStatus[status], nil
}

type countingSubmissions struct {
	contact.Repository
	byStatus map[contact.Status]int64
}

func (s countingSubmissions) CountByStatus(_ context.Context, status contact.Status) (int64, error) {
	return s.byStatus[status], nil
}

func TestDashboardService_Stats(t *testing.T) {
	orders := new(MockOrderRepository)
	products := new(MockProductRepository)
	recent, _, _ := twoLineOrder(12, uuid.New())

	orders.On("CountByStatus", mock.Anything).Return([]trade.StatusCount{
		{Status: trade.OrderStatusPending, Count: 3},
		{Status: trade.OrderStatusDelivered, Count: 7},
	}, nil)
	orders.On("Revenue", mock.Anything).Return(decimal.RequireFromString("4821.50"), nil)
	orders.On("Recent", mock.Anything, RecentOrdersLimit).Return([]*trade.Order{recent}, nil)
	products.On("Count", mock.Anything).Return(int64(42), nil)

	svc := NewDashboardService(orders, products,
		countingUsers{total: 10, customers: 9},
		countingReviews{byStatus: map[review.Status]int64{review.StatusPending: 4, review.StatusApproved: 20}},
		countingSubmissions{byStatus: map[contact.Status]int64{contact.StatusNew: 2}},
		valueobject.USD, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalOrders)
	assert.Equal(t, int64(3), stats.OrdersByStatus["pending"])
	assert.Equal(t, int64(0), stats.OrdersByStatus["shipped"], "every status is reported")
	assert.Len(t, stats.OrdersByStatus, len(trade.AllOrderStatuses))
	assert.Equal(t, "4821.5", stats.Revenue.String())
	assert.Equal(t, "USD", stats.Currency)
	assert.Equal(t, int64(42), stats.ProductCount)
	assert.Equal(t, int64(10), stats.UserCount)
	assert.Equal(t, int64(9), stats.CustomerCount)
	assert.Equal(t, int64(4), stats.PendingReviews)
	assert.Equal(t, int64(2), stats.UnreadSubmissions)
	require.Len(t, stats.RecentOrders, 1)
	assert.Equal(t, int64(12), stats.RecentOrders[0].ID)
}

func TestDashboardService_Stats_RepositoryError(t *testing.T) {
	orders := new(MockOrderRepository)
	orders.On("CountByStatus", mock.Anything).Return([]trade.StatusCount(nil), errors.New("db down"))

	svc := NewDashboardService(orders, new(MockProductRepository), countingUsers{}, countingReviews{}, countingSubmissions{}, valueobject.USD, nil)

	_, err := svc.Stats(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count orders")
}

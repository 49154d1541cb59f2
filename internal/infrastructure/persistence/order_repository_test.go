package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	apptrade "github.com/jewelry/backend/internal/application/trade"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testShipping = trade.ShippingAddress{
	FullName:   "Ana Ruiz",
	Email:      "ana@example.com",
	Phone:      "+351 900 000 000",
	Address:    "1 Main St",
	City:       "Lisbon",
	PostalCode: "1000-001",
	Country:    "PT",
}

func newTestOrder(t *testing.T, userID uuid.UUID, createdAt time.Time, quantities ...int) *trade.Order {
	t.Helper()
	if len(quantities) == 0 {
		quantities = []int{1}
	}
	lines := make([]trade.LineInput, len(quantities))
	for i, q := range quantities {
		lines[i] = trade.LineInput{
			ProductID:   uuid.New(),
			ProductName: "Item",
			UnitPrice:   usd(100),
			Quantity:    q,
		}
	}
	order, err := trade.NewOrder(userID, testShipping, trade.PaymentCard, "", lines, trade.DefaultPricingPolicy())
	require.NoError(t, err)
	order.CreatedAt = createdAt
	order.UpdatedAt = createdAt
	return order
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newTestDB(t))

	userID := uuid.New()
	order := newTestOrder(t, userID, time.Now(), 2, 1)
	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, int64(1), order.ID)
	for _, item := range order.Items {
		assert.NotZero(t, item.ID)
		assert.Equal(t, order.ID, item.OrderID)
	}

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, found.UserID)
	assert.Equal(t, trade.OrderStatusPending, found.Status)
	assert.Equal(t, testShipping, found.Shipping)
	require.Len(t, found.Items, 2)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.True(t, found.Subtotal.Amount().Equal(decimal.NewFromInt(300)))
	assert.True(t, found.Total.Equals(order.Total))

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindAllAndStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newTestDB(t))

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	alice, bob := uuid.New(), uuid.New()
	first := newTestOrder(t, alice, base)
	second := newTestOrder(t, bob, base.Add(time.Hour))
	third := newTestOrder(t, alice, base.Add(48*time.Hour))
	for _, o := range []*trade.Order{first, second, third} {
		require.NoError(t, repo.Create(ctx, o))
	}

	require.NoError(t, third.TransitionTo(trade.OrderStatusCancelled))
	require.NoError(t, repo.UpdateStatus(ctx, third, trade.OrderStatusPending))

	orders, total, err := repo.FindAll(ctx, trade.OrderFilter{UserID: &alice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Equal(t, third.ID, orders[0].ID, "newest first")
	assert.Len(t, orders[0].Items, 1)

	cancelled := trade.OrderStatusCancelled
	_, total, err = repo.FindAll(ctx, trade.OrderFilter{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	from, to := base, base.Add(2*time.Hour)
	orders, _, err = repo.FindAll(ctx, trade.OrderFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, _, err = repo.FindAll(ctx, trade.OrderFilter{Search: "#2"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, second.ID, orders[0].ID)

	orders, _, err = repo.FindAll(ctx, trade.OrderFilter{Search: "ANA@"})
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	byStatus := map[trade.OrderStatus]int64{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	assert.Equal(t, int64(2), byStatus[trade.OrderStatusPending])
	assert.Equal(t, int64(1), byStatus[trade.OrderStatusCancelled])

	revenue, err := repo.Revenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(first.Total.Amount().Add(second.Total.Amount())), "got %s", revenue)

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, third.ID, recent[0].ID)

	ghost := newTestOrder(t, alice, base)
	ghost.ID = 404
	assert.ErrorIs(t, repo.UpdateStatus(ctx, ghost, trade.OrderStatusPending), shared.ErrNotFound)
}

func TestGormOrderRepository_UpdateStatus_StaleSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newTestDB(t))
	order := newTestOrder(t, uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, order))

	byCustomer, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	byAdmin, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, byCustomer.CancelByCustomer())
	require.NoError(t, repo.UpdateStatus(ctx, byCustomer, trade.OrderStatusPending))

	require.NoError(t, byAdmin.TransitionTo(trade.OrderStatusCancelled))
	err = repo.UpdateStatus(ctx, byAdmin, trade.OrderStatusPending)
	assert.ErrorIs(t, err, trade.ErrStatusChanged)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusCancelled, found.Status)
}

func orderIDs(t *testing.T, db *gorm.DB) []int64 {
	t.Helper()
	var ids []int64
	require.NoError(t, db.Model(&models.OrderModel{}).Order("id ASC").Pluck("id", &ids).Error)
	return ids
}

func TestGormOrderRepository_DeleteAndResequence(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()
	orders := make([]*trade.Order, 5)
	for i := range orders {
		orders[i] = newTestOrder(t, userID, base.Add(time.Duration(i)*time.Minute), i+1)
		require.NoError(t, repo.Create(ctx, orders[i]))
	}

	require.NoError(t, repo.Delete(ctx, orders[1].ID))
	require.NoError(t, repo.Delete(ctx, orders[3].ID))
	assert.ErrorIs(t, repo.Delete(ctx, orders[3].ID), shared.ErrNotFound)
	assert.Equal(t, []int64{1, 3, 5}, orderIDs(t, db))

	plan, err := repo.Resequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Count)
	assert.Equal(t, []trade.IDMove{{From: 3, To: 6}, {From: 5, To: 7}}, plan.Stage)
	assert.Equal(t, []trade.IDMove{{From: 6, To: 2}, {From: 7, To: 3}}, plan.Final)
	assert.Equal(t, []int64{1, 2, 3}, orderIDs(t, db))

	// items followed their orders: order 5 (5 units) is now order 3
	moved, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, moved.ItemCount())
	assert.Equal(t, base.Add(4*time.Minute), moved.CreatedAt.UTC())
	for _, item := range moved.Items {
		assert.Equal(t, int64(3), item.OrderID)
	}

	var orphans int64
	require.NoError(t, db.Model(&models.OrderItemModel{}).Where("order_id NOT IN (?)", []int64{1, 2, 3}).Count(&orphans).Error)
	assert.Zero(t, orphans)

	again, err := repo.Resequence(ctx)
	require.NoError(t, err)
	assert.True(t, again.IsNoop())
}

func TestGormOrderRepository_ResequenceOrdersByCreationTime(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()
	late := newTestOrder(t, userID, base.Add(time.Hour), 1)
	early := newTestOrder(t, userID, base, 2)
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))

	_, err := repo.Resequence(ctx)
	require.NoError(t, err)

	first, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.ItemCount(), "the earliest order takes id 1")
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	products := NewGormProductRepository(db)

	product := saveTestProduct(t, products, catalog.ProductDetails{Name: "Bangle", Price: usd(50)}, 3)

	err := scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
		require.NoError(t, repos.ProductRepo().AdjustStock(ctx, product.ID, -2))
		require.NoError(t, repos.OrderRepo().Create(ctx, newTestOrder(t, uuid.New(), time.Now())))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	found, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Stock)
	assert.Empty(t, orderIDs(t, db))

	err = scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
		if err := repos.ProductRepo().AdjustStock(ctx, product.ID, -1); err != nil {
			return err
		}
		return repos.OrderRepo().Create(ctx, newTestOrder(t, uuid.New(), time.Now()))
	})
	require.NoError(t, err)
	found, err = products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Stock)
	assert.Equal(t, []int64{1}, orderIDs(t, db))
}

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	appcart "github.com/jewelry/backend/internal/application/cart"
	appcatalog "github.com/jewelry/backend/internal/application/catalog"
	apptrade "github.com/jewelry/backend/internal/application/trade"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/cache"
	"github.com/jewelry/backend/internal/infrastructure/event"
	"github.com/jewelry/backend/internal/infrastructure/persistence"
	"github.com/jewelry/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// shop wires the catalog, cart and order services over a migrated database
type shop struct {
	t        *testing.T
	db       *TestDB
	users    *persistence.GormUserRepository
	products *appcatalog.ProductService
	carts    *appcart.Service
	checkout *apptrade.CheckoutService
	orders   *apptrade.OrderService
	events   *testutil.EventRecorder
}

func newShop(t *testing.T) *shop {
	t.Helper()

	tdb := NewSharedTestDB(t)
	tdb.CleanTables()

	userRepo := persistence.NewGormUserRepository(tdb.DB)
	productRepo := persistence.NewGormProductRepository(tdb.DB)
	orderRepo := persistence.NewGormOrderRepository(tdb.DB)
	txScope := persistence.NewGormTransactionScope(tdb.DB)
	policy := trade.DefaultPricingPolicy()
	cartStore := cache.NewInMemoryCartStore(time.Hour)
	recorder := testutil.NewEventRecorder()
	bus := event.NewInMemoryEventBus(nil)
	bus.Subscribe(recorder)

	return &shop{
		t:     t,
		db:    tdb,
		users: userRepo,
		products: appcatalog.NewProductService(productRepo,
			persistence.NewGormCategoryRepository(tdb.DB),
			persistence.NewGormLookupRepository(tdb.DB),
			valueobject.DefaultCurrency, bus, nil),
		carts:    appcart.NewService(cartStore, productRepo, policy, nil),
		checkout: apptrade.NewCheckoutService(cartStore, productRepo, txScope, policy, bus, nil),
		orders:   apptrade.NewOrderService(orderRepo, txScope, bus, nil),
		events:   recorder,
	}
}

func (s *shop) customer(n int) *identity.User {
	s.t.Helper()
	user, err := identity.NewCustomer(fmt.Sprintf("customer%d@example.com", n), "Secret123!", fmt.Sprintf("Customer %d", n))
	require.NoError(s.t, err)
	require.NoError(s.t, s.users.Create(context.Background(), user))
	return user
}

func (s *shop) product(name string, price int64, stock int) appcatalog.ProductResponse {
	s.t.Helper()
	p, err := s.products.Create(context.Background(), appcatalog.CreateProductRequest{
		Name:  name,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	})
	require.NoError(s.t, err)
	return *p
}

func (s *shop) fillCart(user *identity.User, product appcatalog.ProductResponse, qty int) {
	s.t.Helper()
	_, err := s.carts.AddItem(context.Background(), user.ID, appcart.AddItemRequest{
		ProductID: product.ID,
		Quantity:  qty,
	})
	require.NoError(s.t, err)
}

func (s *shop) placeOrder(user *identity.User) (*apptrade.OrderResponse, error) {
	return s.checkout.PlaceOrder(context.Background(), user.ID, apptrade.CheckoutRequest{
		Shipping: apptrade.ShippingRequest{
			FullName:   user.FullName,
			Email:      user.Email,
			Address:    "12 Rue de la Paix",
			City:       "Paris",
			PostalCode: "75002",
			Country:    "France",
		},
		PaymentMethod: "card",
	})
}

func (s *shop) orderIDs() []int64 {
	s.t.Helper()
	var ids []int64
	require.NoError(s.t, s.db.DB.Raw("SELECT id FROM orders ORDER BY id").Scan(&ids).Error)
	return ids
}

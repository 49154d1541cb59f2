package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// productCatalog serves products from a map. Only the lookups used by the
// cart service are implemented.
type productCatalog struct {
	catalog.ProductRepository
	products map[uuid.UUID]*catalog.Product
}

func (c *productCatalog) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (c *productCatalog) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *productCatalog) add(name, price string, stock int) *catalog.Product {
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:  name,
		Price: valueobject.MustMoney(decimal.RequireFromString(price), valueobject.USD),
	}, stock)
	if err != nil {
		panic(err)
	}
	c.products[p.ID] = p
	return p
}

func newCartFixture(t *testing.T) (*Service, *productCatalog, *cache.InMemoryCartStore) {
	store := cache.NewInMemoryCartStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	products := &productCatalog{products: map[uuid.UUID]*catalog.Product{}}
	policy := trade.PricingPolicy{
		Currency:              valueobject.USD,
		TaxRate:               decimal.RequireFromString("0.08"),
		FlatShippingFee:       decimal.NewFromInt(15),
		FreeShippingThreshold: decimal.NewFromInt(500),
	}
	return NewService(store, products, policy, zaptest.NewLogger(t)), products, store
}

func TestService_AddItem_MergesLines(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCartFixture(t)
	user := uuid.New()
	ring := products.add("Ring", "100.00", 5)

	_, err := svc.AddItem(ctx, user, AddItemRequest{ProductID: ring.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, user, AddItemRequest{ProductID: ring.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 3, view.ItemCount)
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(300)))
	assert.True(t, view.Shipping.Equal(decimal.NewFromInt(15)))
	assert.True(t, view.Tax.Equal(decimal.NewFromInt(24)))
	assert.True(t, view.Total.Equal(decimal.NewFromInt(339)))
	assert.Equal(t, "USD", view.Currency)
}

func TestService_AddItem_CappedByStock(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCartFixture(t)
	user := uuid.New()
	ring := products.add("Ring", "100.00", 2)

	_, err := svc.AddItem(ctx, user, AddItemRequest{ProductID: ring.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user, AddItemRequest{ProductID: ring.ID, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	soldOut := products.add("Brooch", "40.00", 0)
	_, err = svc.AddItem(ctx, user, AddItemRequest{ProductID: soldOut.ID, Quantity: 1})
	assert.ErrorIs(t, err, shared.NewDomainError("OUT_OF_STOCK", ""))

	_, err = svc.AddItem(ctx, user, AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_FreeShippingAboveThreshold(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCartFixture(t)
	user := uuid.New()
	necklace := products.add("Necklace", "250.00", 3)

	view, err := svc.AddItem(ctx, user, AddItemRequest{ProductID: necklace.ID, Quantity: 2})
	require.NoError(t, err)
	assert.True(t, view.Shipping.IsZero())
	assert.True(t, view.Total.Equal(decimal.NewFromInt(540)))
}

func TestService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCartFixture(t)
	user := uuid.New()
	ring := products.add("Ring", "100.00", 5)
	band := products.add("Band", "50.00", 5)

	_, err := svc.UpdateQuantity(ctx, user, ring.ID, 2)
	assert.ErrorIs(t, err, shared.NewDomainError("NOT_IN_CART", ""))

	_, err = svc.AddItem(ctx, user, AddItemRequest{ProductID: ring.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user, AddItemRequest{ProductID: band.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateQuantity(ctx, user, ring.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, view.ItemCount)

	_, err = svc.UpdateQuantity(ctx, user, ring.ID, 6)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	view, err = svc.UpdateQuantity(ctx, user, ring.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, band.ID, view.Items[0].ProductID)
}

func TestService_Get_DropsVanishedAndInactiveProducts(t *testing.T) {
	ctx := context.Background()
	svc, products, store := newCartFixture(t)
	user := uuid.New()
	ring := products.add("Ring", "100.00", 5)
	band := products.add("Band", "50.00", 5)
	chain := products.add("Chain", "30.00", 5)

	for _, p := range []*catalog.Product{ring, band, chain} {
		_, err := svc.AddItem(ctx, user, AddItemRequest{ProductID: p.ID, Quantity: 1})
		require.NoError(t, err)
	}

	delete(products.products, band.ID)
	chain.SetActive(false)

	view, err := svc.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, ring.ID, view.Items[0].ProductID)

	stored, err := store.Get(ctx, user)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1, "pruned cart is saved back")
}

func TestService_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCartFixture(t)
	user := uuid.New()
	ring := products.add("Ring", "100.00", 5)

	_, err := svc.AddItem(ctx, user, AddItemRequest{ProductID: ring.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, user, ring.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())

	_, err = svc.AddItem(ctx, user, AddItemRequest{ProductID: ring.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, user))

	view, err = svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

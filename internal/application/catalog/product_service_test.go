package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type productFixture struct {
	svc        *ProductService
	products   *MockProductRepository
	categories *MockCategoryRepository
	lookups    *MockLookupRepository
	publisher  *recordingPublisher
}

func newProductFixture(t *testing.T) *productFixture {
	f := &productFixture{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		lookups:    new(MockLookupRepository),
		publisher:  &recordingPublisher{},
	}
	f.svc = NewProductService(f.products, f.categories, f.lookups, valueobject.USD, f.publisher, zaptest.NewLogger(t))
	return f
}

func TestProductService_List_StorefrontHidesInactive(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	ring := newTestProduct("Solitaire Ring", "499.00", 3)

	f.products.On("FindAll", ctx, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
		return filter.Active != nil && *filter.Active && filter.Sort == catalog.SortNewest
	})).Return([]*catalog.Product{ring}, int64(1), nil)

	page, err := f.svc.List(ctx, ProductListQuery{Active: boolPtr(false)}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Solitaire Ring", page.Items[0].Name)
	assert.True(t, page.Items[0].Price.Equal(decimal.RequireFromString("499")))
	assert.Equal(t, 1, page.Page)
}

func TestProductService_List_AdminPassesVisibility(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.products.On("FindAll", ctx, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
		return filter.Active == nil
	})).Return([]*catalog.Product{}, int64(0), nil)

	_, err := f.svc.List(ctx, ProductListQuery{}, true)
	require.NoError(t, err)
	f.products.AssertExpectations(t)
}

func TestProductService_List_CategorySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves slug to id", func(t *testing.T) {
		f := newProductFixture(t)
		rings, _ := catalog.NewCategory("Rings", "", "")
		f.categories.On("FindBySlug", ctx, "rings").Return(rings, nil)
		f.products.On("FindAll", ctx, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
			return filter.CategoryID != nil && *filter.CategoryID == rings.ID
		})).Return([]*catalog.Product{}, int64(0), nil)

		_, err := f.svc.List(ctx, ProductListQuery{Category: "Rings", Sort: "price_asc"}, false)
		require.NoError(t, err)
		f.products.AssertExpectations(t)
	})

	t.Run("unknown slug yields empty page", func(t *testing.T) {
		f := newProductFixture(t)
		f.categories.On("FindBySlug", ctx, "tiaras").Return(nil, shared.ErrNotFound)

		page, err := f.svc.List(ctx, ProductListQuery{Category: "tiaras"}, false)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(0), page.Total)
		f.products.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})
}

func TestProductService_List_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)

	_, err := f.svc.List(ctx, ProductListQuery{Sort: "cheapest"}, false)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_SORT", ""))

	lo, hi := decimal.NewFromInt(500), decimal.NewFromInt(100)
	_, err = f.svc.List(ctx, ProductListQuery{MinPrice: &lo, MaxPrice: &hi}, false)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PRICE_RANGE", ""))
}

func TestProductService_Get(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	hidden := newTestProduct("Hidden Pendant", "120.00", 1)
	hidden.SetActive(false)
	f.products.On("FindByID", ctx, hidden.ID).Return(hidden, nil)

	_, err := f.svc.Get(ctx, hidden.ID, false)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := f.svc.Get(ctx, hidden.ID, true)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}

func TestProductService_Related(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	catID := uuid.New()
	ring := newTestProduct("Ring", "100", 1)
	ring.CategoryID = &catID
	other := newTestProduct("Band", "80", 1)
	f.products.On("FindByID", ctx, ring.ID).Return(ring, nil)
	f.products.On("FindRelated", ctx, ring, DefaultRelatedLimit).Return([]*catalog.Product{other}, nil)

	related, err := f.svc.Related(ctx, ring.ID, 0)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Band", related[0].Name)

	loose := newTestProduct("Loose Stone", "50", 1)
	f.products.On("FindByID", ctx, loose.ID).Return(loose, nil)
	related, err = f.svc.Related(ctx, loose.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("validates references and publishes", func(t *testing.T) {
		f := newProductFixture(t)
		catID := uuid.New()
		gold := int64(1)
		category, _ := catalog.NewCategory("Rings", "", "")
		f.categories.On("FindByID", ctx, catID).Return(category, nil)
		f.lookups.On("FindByID", ctx, catalog.LookupMetalType, gold).Return(&catalog.Lookup{ID: 1, Kind: catalog.LookupMetalType, Name: "Gold"}, nil)
		f.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		compareAt := decimal.RequireFromString("650")
		resp, err := f.svc.Create(ctx, CreateProductRequest{
			Name:           "Gold Ring",
			Price:          decimal.RequireFromString("499.99"),
			CompareAtPrice: &compareAt,
			CategoryID:     &catID,
			MetalTypeID:    &gold,
			Stock:          4,
			IsFeatured:     true,
		})
		require.NoError(t, err)
		assert.Equal(t, "USD", resp.Currency)
		assert.True(t, resp.IsFeatured)
		assert.True(t, resp.IsActive)
		assert.True(t, resp.InStock)
		assert.Equal(t, []string{}, resp.Images)
		assert.Contains(t, f.publisher.types(), catalog.EventTypeProductCreated)
	})

	t.Run("unknown lookup", func(t *testing.T) {
		f := newProductFixture(t)
		opal := int64(99)
		f.lookups.On("FindByID", ctx, catalog.LookupStoneType, opal).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(ctx, CreateProductRequest{Name: "Opal", Price: decimal.NewFromInt(10), StoneTypeID: &opal})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_LOOKUP", ""))
		f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("compare-at must exceed price", func(t *testing.T) {
		f := newProductFixture(t)
		compareAt := decimal.NewFromInt(10)
		_, err := f.svc.Create(ctx, CreateProductRequest{Name: "Chain", Price: decimal.NewFromInt(20), CompareAtPrice: &compareAt})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PRICE", ""))
	})

	t.Run("created hidden", func(t *testing.T) {
		f := newProductFixture(t)
		f.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		resp, err := f.svc.Create(ctx, CreateProductRequest{Name: "Draft", Price: decimal.NewFromInt(20), IsActive: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, resp.IsActive)
	})
}

func TestProductService_StockAndFlags(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := newTestProduct("Bracelet", "75", 2)
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)
	f.products.On("Save", ctx, p).Return(nil)

	resp, err := f.svc.SetStock(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.False(t, resp.InStock)

	_, err = f.svc.SetStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_STOCK", ""))

	resp, err = f.svc.ToggleFeatured(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsFeatured)
	resp, err = f.svc.ToggleFeatured(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsFeatured)

	resp, err = f.svc.SetActive(ctx, p.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := newTestProduct("Earrings", "60", 1)
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)
	f.products.On("Delete", ctx, p.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	assert.Equal(t, []string{catalog.EventTypeProductDeleted}, f.publisher.types())

	missing := uuid.New()
	f.products.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, missing), shared.ErrNotFound)
}

func TestProductService_Delete_OrderedProductIsInUse(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := newTestProduct("Signet Ring", "220", 4)
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)
	f.products.On("Delete", ctx, p.ID).Return(catalog.ErrProductInUse)

	err := f.svc.Delete(ctx, p.ID)

	assert.Same(t, catalog.ErrProductInUse, err)
	assert.Empty(t, f.publisher.types())
}

func boolPtr(b bool) *bool { return &b }

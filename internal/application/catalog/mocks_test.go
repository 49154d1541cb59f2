package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindRelated(ctx context.Context, product *catalog.Product, limit int) ([]*catalog.Product, error) {
	args := m.Called(ctx, product, limit)
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal, count int) error {
	args := m.Called(ctx, id, rating, count)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountByLookup(ctx context.Context, kind catalog.LookupKind, id int64) (int64, error) {
	args := m.Called(ctx, kind, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]*catalog.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockLookupRepository is a mock implementation of catalog.LookupRepository
type MockLookupRepository struct {
	mock.Mock
}

func (m *MockLookupRepository) List(ctx context.Context, kind catalog.LookupKind) ([]*catalog.Lookup, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]*catalog.Lookup), args.Error(1)
}

func (m *MockLookupRepository) FindByID(ctx context.Context, kind catalog.LookupKind, id int64) (*catalog.Lookup, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Lookup), args.Error(1)
}

func (m *MockLookupRepository) ExistsByName(ctx context.Context, kind catalog.LookupKind, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, kind, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLookupRepository) Create(ctx context.Context, lookup *catalog.Lookup) error {
	args := m.Called(ctx, lookup)
	return args.Error(0)
}

func (m *MockLookupRepository) Update(ctx context.Context, lookup *catalog.Lookup) error {
	args := m.Called(ctx, lookup)
	return args.Error(0)
}

func (m *MockLookupRepository) Delete(ctx context.Context, kind catalog.LookupKind, id int64) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// fakeImageStorage records presign and delete calls
type fakeImageStorage struct {
	uploaded map[string]bool
	deleted  []string
}

func newFakeImageStorage() *fakeImageStorage {
	return &fakeImageStorage{uploaded: make(map[string]bool)}
}

func (f *fakeImageStorage) PresignUpload(_ context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://s3.test/bucket/" + key + "?sig=1", time.Now().Add(expiresIn), nil
}

func (f *fakeImageStorage) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeImageStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	return f.uploaded[key], nil
}

func (f *fakeImageStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func usd(amount string) valueobject.Money {
	return valueobject.MustMoney(decimal.RequireFromString(amount), valueobject.USD)
}

func newTestProduct(name, price string, stock int) *catalog.Product {
	p, err := catalog.NewProduct(catalog.ProductDetails{Name: name, Price: usd(price)}, stock)
	if err != nil {
		panic(err)
	}
	p.ClearDomainEvents()
	return p
}

package trade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/cart"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
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

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]*trade.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*trade.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order, from trade.OrderStatus) error {
	args := m.Called(ctx, order, from)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Resequence(ctx context.Context) (trade.ResequencePlan, error) {
	args := m.Called(ctx)
	return args.Get(0).(trade.ResequencePlan), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) ([]trade.StatusCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]trade.StatusCount), args.Error(1)
}

func (m *MockOrderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderRepository) Recent(ctx context.Context, limit int) ([]*trade.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*trade.Order), args.Error(1)
}

// memoryCarts is a map-backed cart.Store
type memoryCarts struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*cart.Cart
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{carts: make(map[uuid.UUID]*cart.Cart)}
}

func (s *memoryCarts) Get(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[userID]; ok {
		return c, nil
	}
	return cart.New(userID), nil
}

func (s *memoryCarts) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.UserID] = c
	return nil
}

func (s *memoryCarts) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

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

func usd(amount string) valueobject.Money {
	return valueobject.MustMoney(decimal.RequireFromString(amount), valueobject.USD)
}

func testPolicy() trade.PricingPolicy {
	return trade.PricingPolicy{
		Currency:              valueobject.USD,
		TaxRate:               decimal.RequireFromString("0.08"),
		FlatShippingFee:       decimal.NewFromInt(15),
		FreeShippingThreshold: decimal.NewFromInt(500),
	}
}

func newTestProduct(name, price string, stock int) *catalog.Product {
	p, err := catalog.NewProduct(catalog.ProductDetails{Name: name, Price: usd(price)}, stock)
	if err != nil {
		panic(err)
	}
	p.ClearDomainEvents()
	return p
}

func testShipping() trade.ShippingAddress {
	return trade.ShippingAddress{
		FullName:   "Ada Lovelace",
		Email:      "ada@example.com",
		Address:    "12 St James's Square",
		City:       "London",
		PostalCode: "SW1Y 4JH",
		Country:    "United Kingdom",
	}
}

// newTestOrder builds a pending order with the given ID and lines
func newTestOrder(id int64, userID uuid.UUID, lines ...trade.LineInput) *trade.Order {
	order, err := trade.NewOrder(userID, testShipping(), trade.PaymentCard, "", lines, testPolicy())
	if err != nil {
		panic(err)
	}
	order.ID = id
	order.CreatedAt = time.Date(2026, 3, int(id), 10, 0, 0, 0, time.UTC)
	order.ClearDomainEvents()
	return order
}

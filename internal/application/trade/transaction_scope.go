package trade

import (
	"context"

	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories an
// order write touches. Everything done through the repositories handed to fn
// is committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one underlying database transaction.
//   - ProductRepo: stock adjustments for checkout, cancellation and deletion
//   - OrderRepo: order rows, their items and resequencing
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	OrderRepo() trade.OrderRepository
}

// NoOpTransactionScope runs the function against plain repositories.
// Used by tests.
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	orderRepo   trade.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(productRepo catalog.ProductRepository, orderRepo trade.OrderRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{productRepo: productRepo, orderRepo: orderRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() trade.OrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

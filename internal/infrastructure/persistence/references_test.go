package persistence

import (
	"context"
	"testing"

	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// withOrderReferences rebuilds the order tables with the foreign keys of the
// PostgreSQL schema and turns on SQLite's enforcement.
func withOrderReferences(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, stmt := range []string{
		"DROP TABLE order_items",
		"DROP TABLE orders",
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id) ON DELETE RESTRICT)`,
		`CREATE TABLE order_items (
			id INTEGER PRIMARY KEY,
			order_id INTEGER NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
			product_id TEXT NOT NULL REFERENCES products (id) ON DELETE RESTRICT)`,
		"PRAGMA foreign_keys = ON",
	} {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
}

func TestGormRepositories_DeleteReferencedByOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	withOrderReferences(t, db)

	users := NewGormUserRepository(db)
	products := NewGormProductRepository(db)
	buyer := createTestUser(t, users, "buyer@example.com", "Buyer")
	browser := createTestUser(t, users, "browser@example.com", "Browser")
	ring := saveTestProduct(t, products, catalog.ProductDetails{Name: "Signet Ring", Price: usd(220)}, 4)
	clasp := saveTestProduct(t, products, catalog.ProductDetails{Name: "Spare Clasp", Price: usd(15)}, 4)

	require.NoError(t, db.Exec("INSERT INTO orders (id, user_id) VALUES (1, ?)", buyer.ID).Error)
	require.NoError(t, db.Exec("INSERT INTO order_items (order_id, product_id) VALUES (1, ?)", ring.ID).Error)

	assert.ErrorIs(t, products.Delete(ctx, ring.ID), catalog.ErrProductInUse)
	assert.ErrorIs(t, users.Delete(ctx, buyer.ID), identity.ErrUserHasOrders)

	_, err := products.FindByID(ctx, ring.ID)
	require.NoError(t, err)
	_, err = users.FindByID(ctx, buyer.ID)
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, clasp.ID))
	require.NoError(t, users.Delete(ctx, browser.ID))
}

package persistence

import (
	"os"
	"testing"

	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	identity.PasswordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// newTestDB opens an in-memory SQLite database with the full schema.
// The pool is pinned to one connection because every new :memory:
// connection would see an empty database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.CategoryModel{},
		&models.MetalTypeModel{},
		&models.StoneTypeModel{},
		&models.OccasionModel{},
		&models.ProductModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.ReviewModel{},
		&models.ContactSubmissionModel{},
	))
	return db
}

// Package integration runs the storage, checkout and change-notification
// paths against a real PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jewelry/backend/internal/infrastructure/migration"
	"github.com/jewelry/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// One migrated container serves the whole package; tests isolate
// themselves with CleanTables.
var pg struct {
	once      sync.Once
	container *tcpostgres.PostgresContainer
	dsn       string
	err       error
}

// TestDB is a connection to the package container
type TestDB struct {
	DB  *gorm.DB
	DSN string
	t   *testing.T
}

// NewSharedTestDB connects to the package container, starting and
// migrating it on first use. Skipped under -short.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker; skipped in short mode")
	}

	pg.once.Do(startContainer)
	require.NoError(t, pg.err, "start postgres container")

	db, err := open(pg.dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &TestDB{DB: db, DSN: pg.dsn, t: t}
}

func startContainer() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg.container, pg.err = tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("jewelry_test"),
		tcpostgres.WithUsername("jewelry"),
		tcpostgres.WithPassword("jewelry"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if pg.err != nil {
		return
	}
	if pg.dsn, pg.err = pg.container.ConnectionString(ctx, "sslmode=disable"); pg.err != nil {
		return
	}

	db, err := open(pg.dsn)
	if err != nil {
		pg.err = err
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		pg.err = err
		return
	}
	defer sqlDB.Close()

	m, err := migration.NewFromFS(sqlDB, migrations.FS, nil)
	if err != nil {
		pg.err = fmt.Errorf("migrator: %w", err)
		return
	}
	if err := m.Up(); err != nil {
		pg.err = fmt.Errorf("migrate up: %w", err)
	}
}

func open(dsn string) (*gorm.DB, error) {
	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// checkout races need several connections at once
	sqlDB.SetMaxOpenConns(10)
	return db, nil
}

// CleanTables truncates every table except the migration bookkeeping and
// restarts their sequences, so order ids begin at 1 again. Seeded lookup
// rows go too.
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`SELECT quote_ident(tablename) FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`).Scan(&tables).Error
	require.NoError(tdb.t, err)
	if len(tables) == 0 {
		return
	}

	err = tdb.DB.Exec("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error
	require.NoError(tdb.t, err)
}

// CleanupSharedContainer stops the package container. TestMain calls it.
func CleanupSharedContainer() {
	if pg.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pg.container.Terminate(ctx)
}

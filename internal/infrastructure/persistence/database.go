package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jewelry/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the shop's gorm handle with the pool it was opened with.
type Database struct {
	DB *gorm.DB
}

// Option tweaks the gorm config used by Open
type Option func(*gorm.Config)

// WithGormLogger routes SQL logging through l (see logger.NewGormLogger).
func WithGormLogger(l logger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// WithoutPreparedStatements disables the statement cache, for poolers such
// as pgbouncer in transaction mode.
func WithoutPreparedStatements() Option {
	return func(c *gorm.Config) { c.PrepareStmt = false }
}

// Open connects to PostgreSQL, sizes the pool from cfg and pings once.
func Open(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gcfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}
	for _, opt := range opts {
		opt(gcfg)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBName, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DBName, err)
	}
	return &Database{DB: db}, nil
}

func (d *Database) sqlDB() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return sqlDB, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping is used by the health endpoint.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PoolStats reports the connection pool; zero when the handle is unusable.
func (d *Database) PoolStats() sql.DBStats {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Transaction runs fn in a transaction bound to ctx.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// IsPostgres reports whether db speaks the postgres dialect. Locking and
// sequence statements are skipped on sqlite.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

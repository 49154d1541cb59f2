package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := fromViper(viper.New())
		require.NoError(t, err)

		assert.Equal(t, "jewelry-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "jewelry", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled())
		assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
		assert.Equal(t, 15*time.Minute, cfg.Auth.LoginAttemptWindow)
		assert.Equal(t, "USD", cfg.Shop.Currency)
		assert.True(t, cfg.Shop.TaxRate.Equal(decimal.RequireFromString("0.08")))
		assert.True(t, cfg.Shop.FlatShippingFee.Equal(decimal.NewFromInt(15)))
		assert.True(t, cfg.Shop.FreeShippingThreshold.Equal(decimal.NewFromInt(500)))
		assert.True(t, cfg.HTTP.RateLimitEnabled)
		assert.Equal(t, "table_changes", cfg.Realtime.Channel)
		assert.Equal(t, time.Hour, cfg.JWT.AccessTokenExpiration)
	})

	t.Run("loads values from environment variables with JEWELRY prefix", func(t *testing.T) {
		t.Setenv("JEWELRY_APP_NAME", "test-app")
		t.Setenv("JEWELRY_APP_PORT", "9000")
		t.Setenv("JEWELRY_DATABASE_HOST", "testdb.local")
		t.Setenv("JEWELRY_DATABASE_PORT", "5433")
		t.Setenv("JEWELRY_DATABASE_PASSWORD", "testpass")
		t.Setenv("JEWELRY_REDIS_HOST", "cache.local")
		t.Setenv("JEWELRY_AUTH_MAX_LOGIN_ATTEMPTS", "3")
		t.Setenv("JEWELRY_AUTH_LOGIN_ATTEMPT_WINDOW", "10m")
		t.Setenv("JEWELRY_SHOP_TAX_RATE", "0")
		t.Setenv("JEWELRY_SHOP_CURRENCY", "eur")
		t.Setenv("JEWELRY_HTTP_RATE_LIMIT_ENABLED", "false")

		cfg, err := fromViper(viper.New())
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.True(t, cfg.Redis.Enabled())
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)
		assert.Equal(t, 10*time.Minute, cfg.Auth.LoginAttemptWindow)
		assert.True(t, cfg.Shop.TaxRate.IsZero())
		assert.Equal(t, "EUR", cfg.Shop.Currency)
		assert.False(t, cfg.HTTP.RateLimitEnabled)
	})

	t.Run("rejects malformed decimal", func(t *testing.T) {
		t.Setenv("JEWELRY_SHOP_FLAT_SHIPPING_FEE", "ten")
		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shop.flat_shipping_fee")
	})
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := fromViper(viper.New())
		require.NoError(t, err)
		return cfg
	}

	t.Run("idle connections above open connections", func(t *testing.T) {
		cfg := base(t)
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("non-positive throttle threshold", func(t *testing.T) {
		cfg := base(t)
		cfg.Auth.MaxLoginAttempts = -1
		assert.Error(t, cfg.validate())
	})

	t.Run("tax rate out of range", func(t *testing.T) {
		cfg := base(t)
		cfg.Shop.TaxRate = decimal.NewFromInt(1)
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires long jwt secret", func(t *testing.T) {
		cfg := base(t)
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.validate())

		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, cfg.validate())

		cfg.Log.Level = "debug"
		assert.Error(t, cfg.validate())
	})

	t.Run("production rejects wildcard cors", func(t *testing.T) {
		cfg := base(t)
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "shop",
		Password: "p@ss word",
		DBName:   "jewelry",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://shop:p%40ss%20word@db:5432/jewelry?sslmode=disable", d.DSN())
}

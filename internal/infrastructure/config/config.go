package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the whole service configuration, one section per TOML table.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Auth      AuthConfig
	Shop      ShopConfig
	Cart      CartConfig
	Storage   StorageConfig
	Printing  PrintingConfig
	Realtime  RealtimeConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig describes the PostgreSQL connection and pool. Lifetimes
// are in minutes.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int

	// DisablePreparedStatements is needed behind transaction-mode poolers
	DisablePreparedStatements bool
}

// RedisConfig holds Redis connection settings. An empty host disables Redis
// and the in-memory stores are used instead.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string  { return net.JoinHostPort(r.Host, strconv.Itoa(r.Port)) }
func (r RedisConfig) Enabled() bool { return r.Host != "" }

// JWTConfig signs access and refresh tokens. An empty RefreshSecret reuses
// Secret.
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// HTTPConfig tunes the server and its middleware. WriteTimeout defaults to
// zero because the change stream holds responses open.
type HTTPConfig struct {
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
	IdleTimeout              time.Duration
	MaxHeaderBytes           int
	MaxBodySize              int64
	RateLimitEnabled         bool
	RateLimitRequests        int
	RateLimitWindow          time.Duration
	ContactRateLimitRequests int
	ContactRateLimitWindow   time.Duration
	CORSAllowOrigins         []string
	CORSAllowMethods         []string
	CORSAllowHeaders         []string
	TrustedProxies           []string
}

// AuthConfig is the login throttle: MaxLoginAttempts failures per email
// within LoginAttemptWindow lock further attempts.
type AuthConfig struct {
	MaxLoginAttempts   int
	LoginAttemptWindow time.Duration
}

// ShopConfig holds the pricing rules applied at checkout. Amounts are in
// Currency; TaxRate is a fraction.
type ShopConfig struct {
	Name                  string
	Currency              string
	TaxRate               decimal.Decimal
	FlatShippingFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

type CartConfig struct {
	TTL time.Duration
}

// StorageConfig holds S3-compatible object storage settings. An empty
// bucket selects the stub storage.
type StorageConfig struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PublicBaseURL     string
	PresignExpiration time.Duration
	MaxImageSize      int64
}

// PrintingConfig holds the headless Chrome settings for invoice PDFs
type PrintingConfig struct {
	Enabled   bool
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
}

// RealtimeConfig drives the change stream. ListenEnabled also relays
// NOTIFY messages from other instances.
type RealtimeConfig struct {
	ListenEnabled     bool
	Channel           string
	SubscriberBuffer  int
	HeartbeatInterval time.Duration
}

// SwaggerConfig guards /swagger. An empty AllowedIPs allows every address.
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string
}

// TelemetryConfig controls OTLP trace export. Insecure drops TLS towards
// the collector; DBLogFullSQL records statements with their arguments and
// is refused in production.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool

	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
}

// Load reads ./config.toml (or /app/config.toml) when present. JEWELRY_
// environment variables override it, e.g. JEWELRY_DATABASE_PASSWORD for
// database.password, and built-in defaults fill the rest.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return fromViper(v)
}

var defaults = map[string]any{
	"app.name": "jewelry-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.dbname":             "jewelry",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.port": 6379,

	"jwt.access_token_expiration":  time.Hour,
	"jwt.refresh_token_expiration": 7 * 24 * time.Hour,
	"jwt.issuer":                   "jewelry-backend",
	"jwt.max_refresh_count":        10,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":                15 * time.Second,
	"http.idle_timeout":                60 * time.Second,
	"http.max_header_bytes":            1 << 20,
	"http.max_body_size":               2 << 20,
	"http.rate_limit_enabled":          true,
	"http.rate_limit_requests":         300,
	"http.rate_limit_window":           time.Minute,
	"http.contact_rate_limit_requests": 5,
	"http.contact_rate_limit_window":   time.Hour,
	"http.cors_allow_methods":          []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":          []string{"Content-Type", "Authorization", "X-Request-ID"},

	"auth.max_login_attempts":   5,
	"auth.login_attempt_window": 15 * time.Minute,

	"shop.name":                    "Jewelry Store",
	"shop.currency":                "USD",
	"shop.tax_rate":                "0.08",
	"shop.flat_shipping_fee":       "15",
	"shop.free_shipping_threshold": "500",

	"cart.ttl": 30 * 24 * time.Hour,

	"storage.region":             "us-east-1",
	"storage.presign_expiration": 15 * time.Minute,
	"storage.max_image_size":     10 << 20,

	"printing.timeout": 30 * time.Second,

	"realtime.channel":            "table_changes",
	"realtime.subscriber_buffer":  64,
	"realtime.heartbeat_interval": 25 * time.Second,

	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("JEWELRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),

			DisablePreparedStatements: v.GetBool("database.disable_prepared_statements"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:              v.GetDuration("http.read_timeout"),
			WriteTimeout:             v.GetDuration("http.write_timeout"),
			IdleTimeout:              v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:           v.GetInt("http.max_header_bytes"),
			MaxBodySize:              v.GetInt64("http.max_body_size"),
			RateLimitEnabled:         v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:        v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:          v.GetDuration("http.rate_limit_window"),
			ContactRateLimitRequests: v.GetInt("http.contact_rate_limit_requests"),
			ContactRateLimitWindow:   v.GetDuration("http.contact_rate_limit_window"),
			CORSAllowOrigins:         v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:         v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:         v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:           v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			MaxLoginAttempts:   v.GetInt("auth.max_login_attempts"),
			LoginAttemptWindow: v.GetDuration("auth.login_attempt_window"),
		},
		Shop: ShopConfig{
			Name:     v.GetString("shop.name"),
			Currency: strings.ToUpper(v.GetString("shop.currency")),
		},
		Cart: CartConfig{TTL: v.GetDuration("cart.ttl")},
		Storage: StorageConfig{
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			MaxImageSize:      v.GetInt64("storage.max_image_size"),
		},
		Printing: PrintingConfig{
			Enabled:   v.GetBool("printing.enabled"),
			RemoteURL: v.GetString("printing.remote_url"),
			NoSandbox: v.GetBool("printing.no_sandbox"),
			Timeout:   v.GetDuration("printing.timeout"),
		},
		Realtime: RealtimeConfig{
			ListenEnabled:     v.GetBool("realtime.listen_enabled"),
			Channel:           v.GetString("realtime.channel"),
			SubscriberBuffer:  v.GetInt("realtime.subscriber_buffer"),
			HeartbeatInterval: v.GetDuration("realtime.heartbeat_interval"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	for key, dst := range map[string]*decimal.Decimal{
		"shop.tax_rate":                &cfg.Shop.TaxRate,
		"shop.flat_shipping_fee":       &cfg.Shop.FlatShippingFee,
		"shop.free_shipping_threshold": &cfg.Shop.FreeShippingThreshold,
	} {
		d, err := decimalSetting(v, key)
		if err != nil {
			return nil, err
		}
		*dst = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decimalSetting parses money settings from their string form so no float
// rounding happens on the way in.
func decimalSetting(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q: %w", key, raw, err)
	}
	return d, nil
}

type rule struct {
	broken bool
	msg    string
}

func (c *Config) validate() error {
	rules := []rule{
		{c.Database.MaxOpenConns <= 0, "database.max_open_conns must be positive"},
		{c.Database.MaxIdleConns < 0, "database.max_idle_conns cannot be negative"},
		{c.Database.MaxIdleConns > c.Database.MaxOpenConns,
			fmt.Sprintf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", c.Database.MaxIdleConns, c.Database.MaxOpenConns)},
		{c.Auth.MaxLoginAttempts < 1, "auth.max_login_attempts must be at least 1"},
		{c.Auth.LoginAttemptWindow <= 0, "auth.login_attempt_window must be positive"},
		{c.Shop.TaxRate.IsNegative() || c.Shop.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)),
			fmt.Sprintf("shop.tax_rate must be in [0, 1), got %s", c.Shop.TaxRate)},
		{c.Shop.FlatShippingFee.IsNegative(), "shop.flat_shipping_fee cannot be negative"},
		{c.Shop.FreeShippingThreshold.IsNegative(), "shop.free_shipping_threshold cannot be negative"},
		{len(c.Shop.Currency) != 3, fmt.Sprintf("shop.currency must be an ISO 4217 code, got %q", c.Shop.Currency)},
		{c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1,
			fmt.Sprintf("telemetry.sampling_ratio must be between 0 and 1, got %g", c.Telemetry.SamplingRatio)},
	}
	if c.IsProduction() {
		rules = append(rules,
			rule{len(c.JWT.Secret) < 32, "jwt.secret of at least 32 characters is required in production"},
			rule{c.Database.Password == "", "database.password is required in production"},
			rule{c.Log.Level == "debug", "log.level cannot be debug in production"},
			rule{slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins cannot contain '*' in production"},
			rule{c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0,
				"swagger must be disabled, require auth or be IP-restricted in production"},
			rule{c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production"},
		)
	}

	for _, r := range rules {
		if r.broken {
			return errors.New(r.msg)
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN is a postgres:// URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/jewelry/backend/internal/application/cart"
	catalogapp "github.com/jewelry/backend/internal/application/catalog"
	contactapp "github.com/jewelry/backend/internal/application/contact"
	identityapp "github.com/jewelry/backend/internal/application/identity"
	reviewapp "github.com/jewelry/backend/internal/application/review"
	tradeapp "github.com/jewelry/backend/internal/application/trade"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/auth"
	"github.com/jewelry/backend/internal/infrastructure/cache"
	"github.com/jewelry/backend/internal/infrastructure/config"
	"github.com/jewelry/backend/internal/infrastructure/event"
	"github.com/jewelry/backend/internal/infrastructure/logger"
	"github.com/jewelry/backend/internal/infrastructure/persistence"
	"github.com/jewelry/backend/internal/infrastructure/printing"
	"github.com/jewelry/backend/internal/infrastructure/realtime"
	"github.com/jewelry/backend/internal/infrastructure/storage"
	"github.com/jewelry/backend/internal/infrastructure/telemetry"
	"github.com/jewelry/backend/internal/interfaces/http/handler"
	"github.com/jewelry/backend/internal/interfaces/http/middleware"
	"github.com/jewelry/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/jewelry/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

//	@title			Jewelry Shop API
//	@version		1.0
//	@description	Storefront and back-office API of the jewelry shop
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.email	support@jewelry.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Jewelry Shop API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Tracing is a no-op provider when telemetry is disabled
	tracer, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	dbOpts := []persistence.Option{persistence.WithGormLogger(gormLog)}
	if cfg.Database.DisablePreparedStatements {
		dbOpts = append(dbOpts, persistence.WithoutPreparedStatements())
	}
	db, err := persistence.Open(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, tracer.Provider(), log).Register(db.DB); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Carts, login throttling and token revocation live in Redis when configured
	stores, err := cache.NewStoreFactory(cfg.Redis, cfg.Cart,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStores(ctx)
	if err != nil {
		log.Fatal("Failed to create stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing stores", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	lookupRepo := persistence.NewGormLookupRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus feeds the realtime hub
	eventBus := event.NewInMemoryEventBus(log)
	hubOpts := []realtime.HubOption{
		realtime.WithBuffer(cfg.Realtime.SubscriberBuffer),
		realtime.WithHubLogger(log),
	}
	if cfg.Realtime.ListenEnabled {
		// local writes come back through NOTIFY as well
		hubOpts = append(hubOpts, realtime.WithDedupeWindow(realtime.DefaultDedupeWindow))
	}
	hub := realtime.NewHub(hubOpts...)
	eventBus.Subscribe(realtime.NewBusHandler(hub))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Row triggers report writes made by other instances and by psql
	if cfg.Realtime.ListenEnabled {
		listener := realtime.NewPgListener(cfg.Database.DSN(), cfg.Realtime.Channel, hub, log)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Realtime listener stopped", zap.Error(err))
			}
		}()
		log.Info("Realtime listener started", zap.String("channel", cfg.Realtime.Channel))
	}

	currency := valueobject.Currency(cfg.Shop.Currency)
	pricing := trade.PricingPolicy{
		Currency:              currency,
		TaxRate:               cfg.Shop.TaxRate,
		FlatShippingFee:       cfg.Shop.FlatShippingFee,
		FreeShippingThreshold: cfg.Shop.FreeShippingThreshold,
	}

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	throttle := identity.NewLoginThrottle(stores.LoginAttempts, identity.ThrottlePolicy{
		MaxAttempts: cfg.Auth.MaxLoginAttempts,
		Window:      cfg.Auth.LoginAttemptWindow,
	})
	authService := identityapp.NewAuthService(userRepo, throttle, jwtService, stores.Blacklist, eventBus, log)
	userService := identityapp.NewUserService(userRepo, orderRepo, stores.Blacklist, jwtService, eventBus, log)

	// Catalog
	productService := catalogapp.NewProductService(productRepo, categoryRepo, lookupRepo, currency, eventBus, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, eventBus, log)
	lookupService := catalogapp.NewLookupService(lookupRepo, productRepo, eventBus, log)

	var imageStorage catalogapp.ImageStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ImageStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		imageStorage = s3Storage
		log.Info("Image storage ready", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		imageStorage = storage.NewStubImageStorage(cfg.Storage.PublicBaseURL)
		log.Warn("No storage bucket configured, image uploads are not persisted")
	}
	imageService := catalogapp.NewImageService(productService, imageStorage, cfg.Storage.PresignExpiration, log)

	// Cart, checkout and orders
	cartService := cartapp.NewService(stores.Carts, productRepo, pricing, log)
	checkoutService := tradeapp.NewCheckoutService(stores.Carts, productRepo, txScope, pricing, eventBus, log)
	orderService := tradeapp.NewOrderService(orderRepo, txScope, eventBus, log)

	var pdf printing.PDFRenderer
	if cfg.Printing.Enabled {
		renderer := printing.NewChromedpRenderer(cfg.Printing, log)
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		pdf = renderer
	}
	invoices, err := printing.NewInvoiceGenerator(cfg.Shop.Name, pdf, log)
	if err != nil {
		log.Fatal("Failed to load invoice template", zap.Error(err))
	}
	invoiceService := tradeapp.NewInvoiceService(orderService, invoices, log)
	dashboardService := tradeapp.NewDashboardService(orderRepo, productRepo, userRepo, reviewRepo, contactRepo, currency, log)

	reviewService := reviewapp.NewService(reviewRepo, productRepo, userRepo, eventBus, log)
	contactService := contactapp.NewService(contactRepo, eventBus, log)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		User:      handler.NewUserHandler(userService),
		Product:   handler.NewProductHandler(productService, imageService),
		Category:  handler.NewCategoryHandler(categoryService),
		Lookup:    handler.NewLookupHandler(lookupService),
		Cart:      handler.NewCartHandler(cartService),
		Order:     handler.NewOrderHandler(checkoutService, orderService, invoiceService),
		Review:    handler.NewReviewHandler(reviewService),
		Contact:   handler.NewContactHandler(contactService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Realtime: handler.NewRealtimeHandler(hub,
			handler.WithRealtimeLogger(log),
			handler.WithRealtimeHeartbeat(cfg.Realtime.HeartbeatInterval),
			handler.WithRealtimeBlacklist(stores.Blacklist),
		),
		System: systemHandler,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID  2. Recovery  3. Tracing  4. Logger  5. Security headers
	// 6. CORS  7. BodyLimit  8. RateLimit  9. JWT
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.Enabled = cfg.Telemetry.Enabled
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	engine.Use(middleware.TracingWithConfig(tracingConfig), middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	newLimiter := func(prefix string, limit int, window time.Duration) middleware.Limiter {
		if stores.Redis != nil {
			return middleware.NewRedisRateLimiter(stores.Redis, prefix, limit, window)
		}
		return middleware.NewRateLimiter(limit, window)
	}
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(newLimiter("ratelimit:api:", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow), log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = stores.Blacklist
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig), middleware.TracingAttributeInjector())

	engine.GET("/health", systemHandler.Health)
	engine.GET("/api/v1/health", systemHandler.Health)

	// /swagger is skipped by the global JWT middleware, so the docs guard
	// authenticates on its own when RequireAuth is set
	swaggerAuth := middleware.DefaultJWTConfig(jwtService)
	swaggerAuth.SkipPaths, swaggerAuth.SkipPathPrefixes, swaggerAuth.PublicReadPrefixes = nil, nil, nil
	swaggerAuth.TokenBlacklist = stores.Blacklist
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddlewareWithConfig(swaggerAuth), middleware.RequireAdmin()),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	routeOptions := router.RouteOptions{
		ContactLimit: middleware.RateLimit(
			newLimiter("ratelimit:contact:", cfg.HTTP.ContactRateLimitRequests, cfg.HTTP.ContactRateLimitWindow), log),
	}
	for _, group := range router.APIGroups(handlers, routeOptions) {
		r.Register(group)
	}
	r.Setup()
	log.Info("API routes mounted", zap.String("base", r.BasePath()), zap.Int("routes", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Event streams never finish on their own; closing the hub ends them
	stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

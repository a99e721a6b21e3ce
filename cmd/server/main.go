package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	directoryapp "github.com/ordena/backend/internal/application/directory"
	orderingapp "github.com/ordena/backend/internal/application/ordering"
	ratesapp "github.com/ordena/backend/internal/application/rates"
	"github.com/ordena/backend/internal/domain/identity"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/ordena/backend/internal/infrastructure/auth"
	"github.com/ordena/backend/internal/infrastructure/cache"
	"github.com/ordena/backend/internal/infrastructure/config"
	"github.com/ordena/backend/internal/infrastructure/logger"
	"github.com/ordena/backend/internal/infrastructure/persistence"
	"github.com/ordena/backend/internal/infrastructure/rates"
	"github.com/ordena/backend/internal/infrastructure/storage"
	"github.com/ordena/backend/internal/infrastructure/telemetry"
	"github.com/ordena/backend/internal/interfaces/http/handler"
	"github.com/ordena/backend/internal/interfaces/http/middleware"
	"github.com/ordena/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Ordena Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Idempotency store: Redis when configured, in-memory otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = redisStore
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Object storage for receipts: S3-compatible when credentials are
	// configured, in-memory stub otherwise
	var objectStorage orderingapp.ObjectStorageService
	if cfg.Storage.AccessKey != "" && cfg.Storage.SecretKey != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure receipt bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage connected", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage not configured, receipts are kept in memory only")
	}

	// Reference rate provider
	rateProvider := rates.NewBCVClient(&cfg.Rates)

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	bankRepo := persistence.NewGormBankRepository(db.DB)

	// Initialize application services
	rateService := ratesapp.NewRateService(rateProvider, log)
	paymentService := orderingapp.NewPaymentService(orderRepo, orderingapp.WithRateResolver(rateService))
	changeService := orderingapp.NewChangeService(orderRepo, idempotencyStore, shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}, orderingapp.WithBankRoster(bankRepo))
	receiptService := orderingapp.NewReceiptService(orderRepo, objectStorage)
	bankService := directoryapp.NewBankService(bankRepo)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	orderPaymentHandler := handler.NewOrderPaymentHandler(paymentService)
	orderChangeHandler := handler.NewOrderChangeHandler(changeService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	currencyHandler := handler.NewCurrencyHandler(rateService)
	bankHandler := handler.NewBankHandler(bankService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding validators (payment_method, covered_by)
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Per-request spans (if enabled)
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside authentication)
	engine.GET("/healthz", systemHandler.Healthz)

	// The back-office clients consume these routes at the root path, so no API
	// version prefix is applied
	r := router.NewRouter(engine)

	// Apply JWT authentication middleware to all registered routes
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	}))

	// Order reconciliation routes
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.GET("/:id",
		middleware.RequireCapability(identity.CapabilityOrdersRead),
		orderPaymentHandler.GetOrder)
	orderRoutes.PUT("/:id/payment",
		middleware.RequireCapability(identity.CapabilityOrdersEditPayments),
		orderPaymentHandler.SavePayments)
	orderRoutes.POST("/:id/payment/mixed",
		middleware.RequireCapability(identity.CapabilityOrdersEditPayments),
		orderPaymentHandler.PreviewMixedPayment)
	orderRoutes.POST("/:id/change",
		middleware.RequireCapability(identity.CapabilityOrdersAssignChange),
		orderChangeHandler.AssignChange)
	orderRoutes.POST("/:id/change-receipt",
		middleware.RequireCapability(identity.CapabilityReceiptsWrite),
		receiptHandler.AttachChangeReceipt)
	orderRoutes.POST("/:id/payment-receipt",
		middleware.RequireCapability(identity.CapabilityReceiptsWrite),
		receiptHandler.AddPaymentReceipt)
	orderRoutes.DELETE("/:id/payment-receipt/:receiptId",
		middleware.RequireCapability(identity.CapabilityReceiptsWrite),
		receiptHandler.RemovePaymentReceipt)

	// Directory routes (bank roster for settlement pickers)
	bankRoutes := router.NewDomainGroup("banks", "/banks")
	bankRoutes.GET("",
		middleware.RequireCapability(identity.CapabilityBanksRead),
		bankHandler.ListBanks)

	// Reference rate routes
	currencyRoutes := router.NewDomainGroup("currency", "/currency")
	currencyRoutes.GET("",
		middleware.RequireCapability(identity.CapabilityRatesRead),
		currencyHandler.GetRates)

	r.Register(orderRoutes).
		Register(bankRoutes).
		Register(currencyRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

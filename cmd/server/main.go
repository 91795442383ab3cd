package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	boardapp "github.com/orderboard/backend/internal/application/board"
	webhookapp "github.com/orderboard/backend/internal/application/webhook"
	"github.com/orderboard/backend/internal/domain/shared"
	"github.com/orderboard/backend/internal/infrastructure/auth"
	"github.com/orderboard/backend/internal/infrastructure/cache"
	"github.com/orderboard/backend/internal/infrastructure/config"
	"github.com/orderboard/backend/internal/infrastructure/logger"
	"github.com/orderboard/backend/internal/infrastructure/persistence"
	"github.com/orderboard/backend/internal/infrastructure/shopify"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
	"github.com/orderboard/backend/internal/interfaces/http/handler"
	"github.com/orderboard/backend/internal/interfaces/http/middleware"
	"github.com/orderboard/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
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
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OrderBoard Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry tracing and metrics. Both providers are
	// no-ops when telemetry is disabled, so the rest of the wiring can
	// stay unconditional.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
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
	log.Info("Database connected successfully")

	// Database query tracing (otelgorm)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracingPlugin := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
		if err := dbTracingPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing plugin", zap.Error(err))
		}
	}

	// Database pool and query metrics
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(context.Background())
		defer dbMetrics.Stop()
	}

	// Initialize repositories and the transaction scope used by drag
	// and reorder operations
	columnRepo := persistence.NewGormColumnRepository(db.DB)
	cardRepo := persistence.NewGormCardRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Shopify Admin API client doubles as the order feed for board
	// assembly and sync
	shopifyClient := shopify.NewClient(cfg.Shopify, log)
	webhookVerifier := shopify.NewWebhookVerifier(cfg.Shopify.APISecret)

	// Initialize application services
	columnService := boardapp.NewColumnService(columnRepo, txScope)
	cardService := boardapp.NewCardService(columnRepo, cardRepo, txScope)
	boardService := boardapp.NewBoardService(columnService, columnRepo, cardRepo, shopifyClient, log)
	syncService := boardapp.NewSyncService(columnService, shopifyClient, txScope, log)

	// Webhook idempotency store (memory or redis, per config)
	idemFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idemStore, err := idemFactory.CreateStore(cfg.Webhook.IdempotencyStore)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	idemCfg := shared.IdempotencyConfig{
		Enabled: cfg.Webhook.IdempotencyEnabled,
		TTL:     cfg.Webhook.IdempotencyTTL,
	}
	webhookService := webhookapp.NewOrderWebhookService(cardRepo, idemStore, idemCfg, log)

	// Token services: Shopify session tokens for embedded-app requests,
	// first-party user tokens for the standalone dashboard
	sessionVerifier := auth.NewSessionTokenVerifier(cfg.Shopify)
	userTokens := auth.NewUserTokenService(cfg.Auth)

	// Board metrics instruments
	meter := meterProvider.Meter("orderboard/board")
	boardMetrics, err := telemetry.NewBoardMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to create board metrics", zap.Error(err))
	}

	// Initialize HTTP handlers
	boardHandler := handler.NewBoardHandler(boardService, boardMetrics)
	columnHandler := handler.NewColumnHandler(columnService, boardMetrics)
	cardHandler := handler.NewCardHandler(cardService, syncService, boardMetrics)
	webhookHandler := handler.NewWebhookHandler(webhookService, webhookVerifier, boardMetrics, log)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
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
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tracing + HTTP metrics (if telemetry enabled)
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Request tracing and HTTP metrics
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetricsWithMeter(meter, cfg.Telemetry.Enabled))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Shopify webhook endpoints. Shopify calls these directly with an
	// HMAC signature, so they bypass bearer token authentication.
	webhookGroup := engine.Group("/webhooks/shopify")
	if cfg.HTTP.RateLimitEnabled {
		// Webhooks get their own budget keyed by shop domain, so one
		// noisy shop cannot starve the others.
		webhookLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		webhookGroup.Use(middleware.RateLimitByKey(webhookLimiter, func(c *gin.Context) string {
			if shop := c.GetHeader("X-Shopify-Shop-Domain"); shop != "" {
				return shop
			}
			return c.ClientIP()
		}))
	}
	webhookGroup.POST("/orders-create", webhookHandler.OrdersCreate)
	webhookGroup.POST("/orders-updated", webhookHandler.OrdersUpdated)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply owner resolution middleware to API routes
	ownerAuthCfg := middleware.DefaultOwnerAuthConfig(sessionVerifier, userTokens)
	ownerAuthCfg.Logger = log
	r.Use(middleware.OwnerAuthMiddlewareWithConfig(ownerAuthCfg))

	// Kanban domain (board, columns, order cards)
	kanbanRoutes := router.NewDomainGroup("kanban", "/kanban")
	kanbanRoutes.GET("/board", boardHandler.GetBoard)
	kanbanRoutes.POST("/columns", columnHandler.Create)
	kanbanRoutes.PUT("/columns/reorder", columnHandler.Reorder)
	kanbanRoutes.PUT("/columns/:code", columnHandler.Update)
	kanbanRoutes.DELETE("/columns/:code", columnHandler.Delete)
	kanbanRoutes.PUT("/orders/reorder", cardHandler.Reorder)
	kanbanRoutes.PUT("/orders/:orderId/move", cardHandler.Move)
	kanbanRoutes.PUT("/orders/:orderId/note", cardHandler.SetNote)
	kanbanRoutes.POST("/orders/sync", cardHandler.Sync)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(kanbanRoutes).
		Register(systemRoutes).
		Setup()

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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

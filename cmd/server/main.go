package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/backoffice/backend/internal/application/ledger"
	partnerapp "github.com/backoffice/backend/internal/application/partner"
	salesapp "github.com/backoffice/backend/internal/application/sales"
	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/auth"
	"github.com/backoffice/backend/internal/infrastructure/cache"
	"github.com/backoffice/backend/internal/infrastructure/config"
	"github.com/backoffice/backend/internal/infrastructure/event"
	"github.com/backoffice/backend/internal/infrastructure/logger"
	"github.com/backoffice/backend/internal/infrastructure/persistence"
	"github.com/backoffice/backend/internal/infrastructure/scheduler"
	"github.com/backoffice/backend/internal/interfaces/http/handler"
	"github.com/backoffice/backend/internal/interfaces/http/middleware"
	"github.com/backoffice/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			Backoffice Ledger API
//	@version		1.0
//	@description	Small-business payables and receivables backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
		_ = log.Sync()
	}()

	log.Info("Starting backoffice backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection
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

	// Redis backs the list cache and the token blacklist. When Redis is
	// unreachable the server still comes up: cache and blacklist fall back
	// to their in-process implementations.
	var (
		listCache      shared.KeyValueCache
		tokenBlacklist auth.TokenBlacklist
		redisClient    *redis.Client
	)
	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	pingErr := redisClient.Ping(pingCtx).Err()
	cancelPing()
	if pingErr != nil {
		log.Warn("Redis unavailable, using in-memory cache and token blacklist", zap.Error(pingErr))
		_ = redisClient.Close()
		redisClient = nil
		memCache := cache.NewInMemoryCache(cache.WithInMemoryLogger(log))
		defer memCache.Stop()
		listCache = memCache
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		remote := cache.NewRedisCacheWithClient(redisClient, cache.WithRedisCacheLogger(log))
		local := cache.NewInMemoryCache(cache.WithInMemoryLogger(log))
		defer local.Stop()
		listCache = cache.NewTieredCache(local, remote, cache.WithTieredLogger(log))
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Redis connected successfully",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	}

	// Initialize repositories
	payableRepo := persistence.NewGormObligationRepository(db.DB, ledger.PolarityPayable)
	receivableRepo := persistence.NewGormObligationRepository(db.DB, ledger.PolarityReceivable)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	counterpartyRepo := persistence.NewGormCounterpartyRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	payableService := ledgerapp.NewObligationService(
		ledger.PolarityPayable, payableRepo, listCache, counterpartyRepo, eventBus, log,
	)
	receivableService := ledgerapp.NewObligationService(
		ledger.PolarityReceivable, receivableRepo, listCache, counterpartyRepo, eventBus, log,
	)
	saleService := salesapp.NewSaleService(saleRepo, counterpartyRepo, eventBus, log)
	counterpartyService := partnerapp.NewCounterpartyService(counterpartyRepo, log)
	reportingService := ledgerapp.NewReportingService(payableRepo, receivableRepo, log)

	// Register event handlers: sale lifecycle drives the matching receivable
	saleCreatedHandler := ledgerapp.NewSaleCreatedHandler(receivableService, log)
	eventBus.Subscribe(saleCreatedHandler, saleCreatedHandler.EventTypes()...)
	saleFinalizedHandler := ledgerapp.NewSaleFinalizedHandler(receivableService, log)
	eventBus.Subscribe(saleFinalizedHandler, saleFinalizedHandler.EventTypes()...)
	saleCancelledHandler := ledgerapp.NewSaleCancelledHandler(receivableService, log)
	eventBus.Subscribe(saleCancelledHandler, saleCancelledHandler.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("sale_created_events", saleCreatedHandler.EventTypes()),
		zap.Strings("sale_finalized_events", saleFinalizedHandler.EventTypes()),
		zap.Strings("sale_cancelled_events", saleCancelledHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Start maintenance scheduler: overdue relabelling and recurring
	// installment generation for both sides of the ledger
	if cfg.Scheduler.Enabled {
		maintenanceConfig := scheduler.MaintenanceConfig{
			Enabled:    cfg.Scheduler.Enabled,
			Interval:   cfg.Scheduler.RefreshInterval,
			RunOnStart: true,
		}
		maintenance := scheduler.NewMaintenanceScheduler(maintenanceConfig, payableService, receivableService, log)
		if err := maintenance.Start(context.Background()); err != nil {
			log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		}
		defer func() {
			if err := maintenance.Stop(context.Background()); err != nil {
				log.Error("Error stopping maintenance scheduler", zap.Error(err))
			}
		}()
		log.Info("Maintenance scheduler started",
			zap.Duration("interval", maintenanceConfig.Interval),
		)
	}

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	defaultDailyRate := decimal.NewFromFloat(cfg.Ledger.DailyInterestRate)
	payableHandler := handler.NewObligationHandler(payableService, defaultDailyRate)
	receivableHandler := handler.NewObligationHandler(receivableService, defaultDailyRate)
	saleHandler := handler.NewSaleHandler(saleService)
	counterpartyHandler := handler.NewCounterpartyHandler(counterpartyService)
	reportHandler := handler.NewReportHandler(reportingService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

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
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Payables
	payableRoutes := router.NewDomainGroup("payables", "/payables")
	payableRoutes.GET("", payableHandler.List)
	payableRoutes.GET("/all", payableHandler.ListAll)
	payableRoutes.POST("", payableHandler.Create)
	payableRoutes.GET("/:id", payableHandler.GetByID)
	payableRoutes.PUT("/:id", payableHandler.Update)
	payableRoutes.DELETE("/:id", payableHandler.Delete)
	payableRoutes.POST("/:id/settle", payableHandler.Settle)
	payableRoutes.POST("/:id/cancel", payableHandler.Cancel)
	payableRoutes.GET("/:id/interest", payableHandler.PreviewInterest)
	payableMaintenance := payableRoutes.Group("maintenance", "/maintenance")
	payableMaintenance.POST("/refresh-statuses", payableHandler.RefreshStatuses)
	payableMaintenance.POST("/process-recurring", payableHandler.ProcessRecurring)

	// Receivables
	receivableRoutes := router.NewDomainGroup("receivables", "/receivables")
	receivableRoutes.GET("", receivableHandler.List)
	receivableRoutes.GET("/all", receivableHandler.ListAll)
	receivableRoutes.POST("", receivableHandler.Create)
	receivableRoutes.GET("/:id", receivableHandler.GetByID)
	receivableRoutes.PUT("/:id", receivableHandler.Update)
	receivableRoutes.DELETE("/:id", receivableHandler.Delete)
	receivableRoutes.POST("/:id/settle", receivableHandler.Settle)
	receivableRoutes.POST("/:id/cancel", receivableHandler.Cancel)
	receivableRoutes.GET("/:id/interest", receivableHandler.PreviewInterest)
	receivableMaintenance := receivableRoutes.Group("maintenance", "/maintenance")
	receivableMaintenance.POST("/refresh-statuses", receivableHandler.RefreshStatuses)
	receivableMaintenance.POST("/process-recurring", receivableHandler.ProcessRecurring)

	// Sales
	saleRoutes := router.NewDomainGroup("sales", "/sales")
	saleRoutes.GET("", saleHandler.List)
	saleRoutes.POST("", saleHandler.Create)
	saleRoutes.GET("/:id", saleHandler.GetByID)
	saleRoutes.POST("/:id/finalize", saleHandler.Finalize)
	saleRoutes.POST("/:id/cancel", saleHandler.Cancel)

	// Counterparties
	counterpartyRoutes := router.NewDomainGroup("counterparties", "/counterparties")
	counterpartyRoutes.GET("", counterpartyHandler.List)
	counterpartyRoutes.POST("", counterpartyHandler.Create)
	counterpartyRoutes.GET("/:id", counterpartyHandler.GetByID)
	counterpartyRoutes.PUT("/:id", counterpartyHandler.Update)

	// Reports
	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/summary", reportHandler.GetPeriodSummary)
	reportRoutes.GET("/payables/summary", reportHandler.GetPayableSummary)
	reportRoutes.GET("/receivables/summary", reportHandler.GetReceivableSummary)

	// System
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(payableRoutes).
		Register(receivableRoutes).
		Register(saleRoutes).
		Register(counterpartyRoutes).
		Register(reportRoutes).
		Register(systemRoutes)

	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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

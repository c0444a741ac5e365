package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	backfillapp "github.com/finbook/backend/internal/application/backfill"
	importapp "github.com/finbook/backend/internal/application/import"
	ledgerapp "github.com/finbook/backend/internal/application/ledger"
	registryapp "github.com/finbook/backend/internal/application/registry"
	reportapp "github.com/finbook/backend/internal/application/report"
	snapshotapp "github.com/finbook/backend/internal/application/snapshot"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/taxdoc"
	"github.com/finbook/backend/internal/infrastructure/cache"
	"github.com/finbook/backend/internal/infrastructure/config"
	"github.com/finbook/backend/internal/infrastructure/event"
	csvimport "github.com/finbook/backend/internal/infrastructure/import"
	"github.com/finbook/backend/internal/infrastructure/logger"
	"github.com/finbook/backend/internal/infrastructure/persistence"
	"github.com/finbook/backend/internal/infrastructure/reportpdf"
	"github.com/finbook/backend/internal/infrastructure/scheduler"
	"github.com/finbook/backend/internal/infrastructure/storage"
	"github.com/finbook/backend/internal/infrastructure/telemetry"
	"github.com/finbook/backend/internal/interfaces/http/handler"
	"github.com/finbook/backend/internal/interfaces/http/middleware"
	"github.com/finbook/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/finbook/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			FinBook Backend API
//	@version		1.0
//	@description	Personal finance backend: ledger transactions, counterparty registry, balance snapshots and the counterparty backfill.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/finbook/backend
//	@contact.email	support@finbook.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

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

	log.Info("Starting FinBook Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry providers. Each provider degrades to a no-op
	// when telemetry is disabled, so the rest of the wiring is unconditional.
	telemetryCtx := context.Background()

	var tracerProvider *telemetry.TracerProvider
	var meterProvider *telemetry.MeterProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(telemetryCtx, telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err = telemetry.NewMeterProvider(telemetryCtx, telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		// Bridge zap onto the OTLP log exporter so application logs reach
		// the collector alongside traces and metrics
		logsProvider, err := telemetry.NewLoggerProvider(telemetryCtx, telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Warn("Failed to initialize OTLP log exporter, logs stay local", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := logsProvider.Shutdown(shutdownCtx); err != nil {
					log.Error("Error shutting down logger provider", zap.Error(err))
				}
			}()

			bridgeLevel, parseErr := zapcore.ParseLevel(cfg.Log.Level)
			if parseErr != nil {
				bridgeLevel = zapcore.InfoLevel
			}
			otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
				ServiceName:    cfg.Telemetry.ServiceName,
				LoggerProvider: logsProvider,
				Level:          bridgeLevel,
			})
			log = telemetry.NewBridgedLogger(log.Core(), otelCore)
		}

		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:             cfg.Telemetry.ProfilerEnabled,
			ServerAddress:       cfg.Telemetry.ProfilerServerAddress,
			ApplicationName:     cfg.Telemetry.ServiceName,
			ProfileCPU:          true,
			ProfileAllocObjects: true,
			ProfileAllocSpace:   true,
			ProfileInuseObjects: true,
			ProfileInuseSpace:   true,
			ProfileGoroutines:   true,
		}, log)
		if err != nil {
			log.Warn("Failed to start continuous profiler", zap.Error(err))
		} else {
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()

			// Link spans to profiles so slow traces jump straight to flame graphs
			if profiler.IsEnabled() {
				if err := tracerProvider.EnableSpanProfiles(); err != nil {
					log.Warn("Failed to enable span profiles", zap.Error(err))
				}
			}
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing and connection pool metrics
	if cfg.Telemetry.Enabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}

		if meterProvider != nil && meterProvider.IsEnabled() {
			dbMetrics, err := telemetry.NewDBMetrics(
				meterProvider.Meter("db.pool"),
				telemetry.DefaultDBMetricsConfig(),
				log,
			)
			if err != nil {
				log.Warn("Failed to initialize database metrics", zap.Error(err))
			} else {
				if sqlDB, dbErr := db.DB.DB(); dbErr == nil {
					dbMetrics.SetSQLDB(sqlDB)
					dbMetrics.StartPoolStatsCollection(context.Background())
					defer dbMetrics.Stop()
				}
				if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
					log.Warn("Failed to register database metrics plugin", zap.Error(err))
				}
			}
		}
	}

	// Initialize repositories
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	fiscalBookRepo := persistence.NewGormFiscalBookRepository(db.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	personRepo := persistence.NewGormPersonRepository(db.DB)
	snapshotRepo := persistence.NewGormBalanceSnapshotRepository(db.DB)

	// Object storage for receipt attachments. Outside production a missing
	// bucket falls back to the stub so the API can run without MinIO.
	var objectStorage ledgerapp.ObjectStorageService
	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err == nil {
		err = s3Storage.EnsureBucket(context.Background())
	}
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		log.Warn("Object storage not available, using stub storage", zap.Error(err))
		objectStorage = storage.NewStubObjectStorage()
	} else {
		objectStorage = s3Storage
		log.Info("Object storage ready", zap.String("bucket", s3Storage.GetBucket()))
	}

	// Run lock store guards against concurrent backfill runs. Redis is
	// preferred; a single instance can fall back to the in-memory store.
	runLockFactory := cache.NewRunLockStoreFactory(cfg.Redis, cache.WithLogger(log))
	runLockStore, err := runLockFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create run lock store", zap.Error(err))
	}
	defer func() {
		if err := runLockStore.Close(); err != nil {
			log.Error("Error closing run lock store", zap.Error(err))
		}
	}()

	// PDF renderer for fiscal book exports and monthly statements
	pdfRenderer, err := reportpdf.NewChromedpRenderer(&reportpdf.ChromedpConfig{Logger: log})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	// Initialize application services
	transactionService := ledgerapp.NewTransactionService(transactionRepo, categoryRepo, fiscalBookRepo)
	categoryService := ledgerapp.NewCategoryService(categoryRepo, transactionRepo)
	fiscalBookService := ledgerapp.NewFiscalBookService(fiscalBookRepo, transactionRepo)

	attachmentService := ledgerapp.NewAttachmentService(attachmentRepo, transactionRepo, objectStorage, log)
	if cfg.Storage.PresignExpiration > 0 {
		attachmentCfg := ledgerapp.DefaultAttachmentServiceConfig()
		attachmentCfg.DownloadURLExpiry = cfg.Storage.PresignExpiration
		attachmentService.SetConfig(attachmentCfg)
	}

	companyService := registryapp.NewCompanyService(companyRepo, transactionRepo)
	personService := registryapp.NewPersonService(personRepo, transactionRepo)

	snapshotService := snapshotapp.NewBalanceSnapshotService(snapshotRepo, transactionRepo, log,
		snapshotapp.BalanceSnapshotServiceConfig{
			RetentionMonths: cfg.Snapshot.RetentionMonths,
		})

	importService := importapp.NewTransactionImportService(transactionRepo, log)
	importService.SetProcessor(csvimport.NewImportProcessor(
		csvimport.WithMaxFileSize(cfg.Import.MaxFileSize),
		csvimport.WithMaxRows(cfg.Import.MaxRows),
	))

	backfillService := backfillapp.NewService(
		persistence.NewGormTransactionScope(db.DB),
		taxdoc.NewChecksumValidator(),
		runLockStore,
		shared.RunLockConfig{
			TTL:     cfg.Backfill.RunLockTTL,
			Enabled: cfg.Backfill.RunLockEnabled,
		},
		log,
	)

	reportService := reportapp.NewFiscalBookReportService(
		fiscalBookRepo,
		transactionRepo,
		categoryRepo,
		companyRepo,
		personRepo,
		reportpdf.NewTemplateEngine(),
		pdfRenderer,
		log,
	)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Ledger writes regenerate the balance snapshot of the affected month
	transactionChangedHandler := snapshotapp.NewTransactionChangedHandler(transactionRepo, snapshotService, log)
	eventBus.Subscribe(transactionChangedHandler)

	log.Info("Event handlers registered",
		zap.Strings("transaction_changed_events", transactionChangedHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	transactionService.SetEventPublisher(eventBus)
	importService.SetEventPublisher(eventBus)

	// Business metrics: ledger activity, backfill runs and the pending
	// backfill backlog gauge
	if meterProvider != nil && meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:            meterProvider.Meter("finbook.business"),
			Logger:           log,
			BackfillProvider: telemetry.NewGormBackfillMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
			defer businessMetrics.Stop()

			transactionService.SetBusinessMetrics(businessMetrics)
			importService.SetBusinessMetrics(businessMetrics)
			backfillService.SetBusinessMetrics(businessMetrics)
		}
	}

	// Nightly snapshot refresh and retention cleanup
	if cfg.Scheduler.Enabled {
		refreshHour, refreshMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Fatal("Invalid scheduler cron schedule", zap.Error(err))
		}
		snapshotScheduler := scheduler.NewBalanceSnapshotScheduler(snapshotService, log,
			scheduler.BalanceSnapshotSchedulerConfig{
				Enabled:        true,
				RefreshHour:    refreshHour,
				RefreshMinute:  refreshMinute,
				CleanupEnabled: cfg.Snapshot.RetentionMonths > 0,
				CleanupHour:    cfg.Scheduler.CleanupHour,
				JobTimeout:     cfg.Scheduler.JobTimeout,
				RetryAttempts:  cfg.Scheduler.RetryAttempts,
				RetryDelay:     cfg.Scheduler.RetryDelay,
			})
		if err := snapshotScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start balance snapshot scheduler", zap.Error(err))
		}
		defer func() {
			if err := snapshotScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping balance snapshot scheduler", zap.Error(err))
			}
		}()
		log.Info("Balance snapshot scheduler started",
			zap.Int("refresh_hour", refreshHour),
			zap.Int("refresh_minute", refreshMinute),
			zap.Int("cleanup_hour", cfg.Scheduler.CleanupHour),
		)
	}

	// Initialize HTTP handlers
	transactionHandler := handler.NewTransactionHandler(transactionService, attachmentService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	fiscalBookHandler := handler.NewFiscalBookHandler(fiscalBookService, reportService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	companyHandler := handler.NewCompanyHandler(companyService)
	personHandler := handler.NewPersonHandler(personService)
	snapshotHandler := handler.NewSnapshotHandler(snapshotService)
	importHandler := handler.NewImportHandler(importService)
	backfillHandler := handler.NewBackfillHandler(backfillService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env)

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
	// 4. Tracing - OTel spans with request ID correlation
	// 5. Metrics - HTTP request metrics
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
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

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness and readiness endpoints (outside API versioning)
	engine.GET("/health", healthHandler())
	engine.GET("/ready", readyHandler(db))

	// Swagger documentation endpoint, IP-restricted via config
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:    true,
				AllowedIPs: cfg.Swagger.AllowedIPs,
			}),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Ledger domain (transactions, categories, fiscal books, attachments)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/transactions", transactionHandler.Create)
	ledgerRoutes.GET("/transactions", transactionHandler.List)
	ledgerRoutes.GET("/transactions/:id", transactionHandler.GetByID)
	ledgerRoutes.PUT("/transactions/:id", transactionHandler.Update)
	ledgerRoutes.DELETE("/transactions/:id", transactionHandler.Delete)
	ledgerRoutes.POST("/transactions/:id/clear", transactionHandler.Clear)
	ledgerRoutes.POST("/transactions/:id/reconcile", transactionHandler.Reconcile)
	ledgerRoutes.POST("/transactions/:id/cancel", transactionHandler.Cancel)
	ledgerRoutes.POST("/transactions/:id/attachments", transactionHandler.InitiateAttachmentUpload)
	ledgerRoutes.GET("/transactions/:id/attachments", transactionHandler.ListAttachments)

	// Attachment routes
	ledgerRoutes.GET("/attachments/:id", attachmentHandler.GetByID)
	ledgerRoutes.GET("/attachments/:id/download-url", attachmentHandler.GetDownloadURL)
	ledgerRoutes.DELETE("/attachments/:id", attachmentHandler.Delete)

	// Category routes
	ledgerRoutes.POST("/categories", categoryHandler.Create)
	ledgerRoutes.GET("/categories", categoryHandler.List)
	ledgerRoutes.GET("/categories/active", categoryHandler.ListActive)
	ledgerRoutes.GET("/categories/:id", categoryHandler.GetByID)
	ledgerRoutes.PUT("/categories/:id", categoryHandler.Update)
	ledgerRoutes.DELETE("/categories/:id", categoryHandler.Delete)

	// Fiscal book routes
	ledgerRoutes.POST("/fiscal-books", fiscalBookHandler.Create)
	ledgerRoutes.GET("/fiscal-books", fiscalBookHandler.List)
	ledgerRoutes.GET("/fiscal-books/:id", fiscalBookHandler.GetByID)
	ledgerRoutes.PUT("/fiscal-books/:id", fiscalBookHandler.Update)
	ledgerRoutes.DELETE("/fiscal-books/:id", fiscalBookHandler.Delete)
	ledgerRoutes.POST("/fiscal-books/:id/close", fiscalBookHandler.Close)
	ledgerRoutes.POST("/fiscal-books/:id/reopen", fiscalBookHandler.Reopen)
	ledgerRoutes.GET("/fiscal-books/:id/export", fiscalBookHandler.Export)

	// Registry domain (companies, persons)
	registryRoutes := router.NewDomainGroup("registry", "/registry")
	registryRoutes.POST("/companies", companyHandler.Create)
	registryRoutes.GET("/companies", companyHandler.List)
	registryRoutes.GET("/companies/by-cnpj/:cnpj", companyHandler.GetByCNPJ)
	registryRoutes.GET("/companies/:id", companyHandler.GetByID)
	registryRoutes.PUT("/companies/:id", companyHandler.Update)
	registryRoutes.DELETE("/companies/:id", companyHandler.Delete)
	registryRoutes.POST("/companies/:id/partners", companyHandler.AddPartner)
	registryRoutes.POST("/persons", personHandler.Create)
	registryRoutes.GET("/persons", personHandler.List)
	registryRoutes.GET("/persons/:id", personHandler.GetByID)
	registryRoutes.PUT("/persons/:id", personHandler.Update)
	registryRoutes.DELETE("/persons/:id", personHandler.Delete)

	// Balance snapshot domain
	snapshotRoutes := router.NewDomainGroup("snapshots", "/snapshots")
	snapshotRoutes.GET("", snapshotHandler.ListRange)
	snapshotRoutes.GET("/:year/:month", snapshotHandler.GetByPeriod)
	snapshotRoutes.POST("/generate", snapshotHandler.Generate)
	snapshotRoutes.POST("/refresh", snapshotHandler.Refresh)
	snapshotRoutes.POST("/cleanup", snapshotHandler.Cleanup)

	// CSV import
	importRoutes := router.NewDomainGroup("import", "/import")
	importRoutes.POST("/transactions", importHandler.ImportTransactions)
	importRoutes.GET("/transactions/rules", importHandler.GetValidationRules)

	// Counterparty backfill (admin surface)
	backfillRoutes := router.NewDomainGroup("backfill", "/backfill")
	backfillRoutes.POST("/runs", backfillHandler.Run)

	// PDF reports
	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/statements/:year/:month", reportHandler.MonthlyStatement)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(ledgerRoutes).
		Register(registryRoutes).
		Register(snapshotRoutes).
		Register(importRoutes).
		Register(backfillRoutes).
		Register(reportRoutes).
		Register(systemRoutes)

	// Setup routes
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

// healthHandler reports process liveness
func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// readyHandler reports readiness to serve traffic, which requires a
// reachable database
func readyHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unready",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		payload := gin.H{
			"status":   "ready",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		// Pool occupancy in the ready payload lets operators spot
		// saturation without scraping metrics
		if stats, statsErr := db.Stats(); statsErr == nil {
			payload["pool"] = gin.H{
				"open":     stats.OpenConnections,
				"in_use":   stats.InUse,
				"idle":     stats.Idle,
				"max_open": stats.MaxOpenConnections,
				"waits":    stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, payload)
	}
}

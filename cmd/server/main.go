package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appanalytics "github.com/autodealer/backend/internal/application/analytics"
	appassistant "github.com/autodealer/backend/internal/application/assistant"
	appcatalog "github.com/autodealer/backend/internal/application/catalog"
	appcrm "github.com/autodealer/backend/internal/application/crm"
	appidentity "github.com/autodealer/backend/internal/application/identity"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/infrastructure/assistant"
	"github.com/autodealer/backend/internal/infrastructure/auth"
	"github.com/autodealer/backend/internal/infrastructure/cache"
	"github.com/autodealer/backend/internal/infrastructure/config"
	"github.com/autodealer/backend/internal/infrastructure/event"
	"github.com/autodealer/backend/internal/infrastructure/logger"
	"github.com/autodealer/backend/internal/infrastructure/migration"
	"github.com/autodealer/backend/internal/infrastructure/persistence"
	"github.com/autodealer/backend/internal/infrastructure/printing"
	"github.com/autodealer/backend/internal/infrastructure/storage"
	"github.com/autodealer/backend/internal/infrastructure/telemetry"
	"github.com/autodealer/backend/internal/interfaces/http/handler"
	"github.com/autodealer/backend/internal/interfaces/http/middleware"
	"github.com/autodealer/backend/internal/interfaces/http/router"
	"github.com/autodealer/backend/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/autodealer/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Dealership Backend API
//	@version		1.0
//	@description	Car catalog, lead workflow and manager scoring for a car dealership

//	@contact.name	API Support

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

	// Telemetry comes first so the log bridge can be attached to the logger.
	// It logs through a bootstrap logger until the real one exists.
	bootLog, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	logLevel := zapcore.InfoLevel
	_ = logLevel.UnmarshalText([]byte(cfg.Log.Level))
	var extraCores []zapcore.Core
	if core := tel.ZapCore(logLevel); core != nil {
		extraCores = append(extraCores, core)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, extraCores...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting dealership backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", tel.Enabled()),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, tel.Meter("gorm"), log); err != nil {
		log.Warn("Database instrumentation disabled", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Redis backs the catalog cache, event de-duplication and the token
	// blacklist. Without it everything falls back to process memory.
	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory stores", zap.Error(err))
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Error closing Redis", zap.Error(err))
				}
			}()
		}
	}

	var cacheClient redis.UniversalClient
	var tokenBlacklist auth.TokenBlacklist
	if redisClient != nil {
		cacheClient = redisClient
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient, cfg.Cache.KeyPrefix+"token:blacklist:")
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}
	cacheFactory := cache.NewFactory(cacheClient,
		cache.WithLogger(log),
		cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
	)
	listingCache, err := cacheFactory.ListingCache()
	if err != nil {
		log.Fatal("Failed to create catalog cache", zap.Error(err))
	}
	idempotencyStore, err := cacheFactory.IdempotencyStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	carRepo := persistence.NewGormCarRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	scoreRepo := persistence.NewGormScoreRepository(db.DB)
	eventRepo := persistence.NewGormEventRepository(db.DB)
	chatRepo := persistence.NewGormChatRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	policy := crm.ScorePolicy{
		SalePoints:         cfg.Workflow.SalePoints,
		PointsPerStar:      cfg.Workflow.ReviewPointsPerStar,
		FastResponsePoints: cfg.Workflow.FastResponsePoints,
		FastResponseWindow: cfg.Workflow.FastResponseWindow,
	}

	workflowMetrics, err := telemetry.NewWorkflowMetrics(tel.Meter("workflow"))
	if err != nil {
		log.Fatal("Failed to create workflow metrics", zap.Error(err))
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	listingInvalidator := appcatalog.NewListingCacheInvalidator(listingCache, log)
	eventBus.Subscribe(event.NewIdempotentHandler(listingInvalidator, idempotencyStore, log), listingInvalidator.EventTypes()...)

	workflowRecorder := appanalytics.NewWorkflowRecorder(eventRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(workflowRecorder, idempotencyStore, log), workflowRecorder.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("listing_cache_events", listingInvalidator.EventTypes()),
		zap.Strings("workflow_recorder_events", workflowRecorder.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Optional integrations. Each one degrades to a disabled feature.
	var imageStorage appcatalog.ObjectStorageService
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(context.Background(), &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(context.Background()); err != nil {
			log.Warn("Image bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		imageStorage = s3
	}

	var quoteRenderer appcatalog.QuoteRenderer
	if cfg.Printing.Enabled {
		renderer, err := printing.NewChromedpRenderer(cfg.Printing, log)
		if err != nil {
			log.Warn("PDF quotes disabled", zap.Error(err))
		} else {
			defer func() {
				if err := renderer.Close(); err != nil {
					log.Error("Error closing PDF renderer", zap.Error(err))
				}
			}()
			quoteRenderer = renderer
		}
	}

	var completer appassistant.Completer
	assistantClient, err := assistant.NewClient(cfg.Assistant, log)
	switch {
	case errors.Is(err, assistant.ErrNotConfigured):
		log.Info("Chat assistant not configured, using fallback replies")
	case err != nil:
		log.Warn("Chat assistant disabled", zap.Error(err))
	default:
		completer = assistantClient
	}

	// Initialize application services
	carService := appcatalog.NewCarService(carRepo, appcatalog.CarServiceConfig{
		ListingTTL:      cfg.Cache.ListingTTL,
		UploadURLExpiry: cfg.Storage.UploadURLExpiry,
		DealerName:      cfg.App.DealerName,
	}, log)
	carService.SetCache(listingCache)
	if imageStorage != nil {
		carService.SetStorage(imageStorage)
	}
	if quoteRenderer != nil {
		carService.SetRenderer(quoteRenderer)
	}
	carService.SetEventPublisher(eventBus)
	quoteService := appcatalog.NewQuoteService(carRepo, quoteRenderer, cfg.App.DealerName, log)

	leadService := appcrm.NewLeadService(leadRepo, reviewRepo, carRepo, profileRepo, roleRepo, txScope,
		appcrm.LeadServiceConfig{PublicBaseURL: cfg.App.PublicBaseURL, Policy: policy}, log)
	leadService.SetEventPublisher(eventBus)
	leadService.SetMetrics(workflowMetrics)

	reviewService := appcrm.NewReviewService(leadRepo, reviewRepo, profileRepo, txScope, policy, log)
	reviewService.SetEventPublisher(eventBus)
	reviewService.SetMetrics(workflowMetrics)

	statsService := appcrm.NewStatsService(leadRepo, reviewRepo, scoreRepo, carRepo, profileRepo, roleRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(accountRepo, profileRepo, roleRepo, jwtService, tokenBlacklist, log)
	authService.SetEventPublisher(eventBus)
	provisioningService := appidentity.NewManagerProvisioningService(accountRepo, roleRepo, log)
	provisioningService.SetEventPublisher(eventBus)
	roleService := appidentity.NewRoleService(roleRepo, accountRepo, profileRepo, tokenBlacklist, cfg.JWT.RefreshTokenExpiration, log)
	roleService.SetEventPublisher(eventBus)

	analyticsService := appanalytics.NewService(eventRepo, log)
	chatService := appassistant.NewChatService(completer, chatRepo, appassistant.Options{
		DealerName: cfg.App.DealerName,
		MaxHistory: cfg.Assistant.MaxHistory,
	}, log)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.Cookie, cfg.JWT),
		Car:       handler.NewCarHandler(carService),
		Quote:     handler.NewQuoteHandler(quoteService),
		Lead:      handler.NewLeadHandler(leadService),
		Review:    handler.NewReviewHandler(reviewService),
		Stats:     handler.NewStatsHandler(statsService),
		Admin:     handler.NewAdminHandler(provisioningService, roleService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Chat:      handler.NewChatHandler(chatService),
	}

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
	// 2. Recovery - Recover from panics with request id in the log
	// 3. Logger - Access log with trace ids
	// 4. Tracing - otelgin server spans
	// 5. Profiling - Per-route pprof labels
	// 6. Secure - Security headers
	// 7. CORS - Cross-origin policy for the website
	// 8. BodyLimit - Reject oversized bodies
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = cfg.Telemetry.ProfilingEnabled

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.ProfilingWithConfig(profilingCfg),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	jwtCfg := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	}
	permCfg := middleware.PermissionConfig{Logger: log}
	requireAuth := middleware.JWTAuth(jwtCfg)

	guards := router.Guards{
		Auth:         requireAuth,
		OptionalAuth: middleware.OptionalJWTAuth(jwtCfg),
		Staff:        middleware.RequireStaff(permCfg),
		Admin:        middleware.RequireAdmin(permCfg),
		Enrich:       middleware.SpanEnricher(),
	}

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		publicLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, publicLimiter)
		guards.PublicLimit = middleware.RateLimit(publicLimiter)
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, authLimiter)
		guards.AuthLimit = middleware.RateLimit(authLimiter)
	}
	defer func() {
		for _, l := range limiters {
			l.Stop()
		}
	}()

	// API docs, guarded the same way as staff routes when RequireAuth is set
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, middleware.NewAuthenticator(jwtCfg)),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	for _, group := range router.APIGroups(handlers, guards) {
		r.Register(group)
	}
	r.Setup()

	checks := []handler.DependencyCheck{{Name: "database", Ping: db.Ping}}
	if redisClient != nil {
		checks = append(checks, handler.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	router.SystemRoutes(engine, handler.NewSystemHandler("1.0.0", checks...))

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
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("api", r.BasePath()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// applyMigrations brings the schema up to date from the embedded SQL files
func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log, migration.WithSource(migrations.FS))
	if err != nil {
		return err
	}
	// Not closed: the postgres driver would close the shared pool with it
	return m.Up()
}

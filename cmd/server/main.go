package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	approvalapp "github.com/ucrm/backend/internal/application/approval"
	billingapp "github.com/ucrm/backend/internal/application/billing"
	crmapp "github.com/ucrm/backend/internal/application/crm"
	identityapp "github.com/ucrm/backend/internal/application/identity"
	"github.com/ucrm/backend/internal/infrastructure/auth"
	"github.com/ucrm/backend/internal/infrastructure/cache"
	"github.com/ucrm/backend/internal/infrastructure/config"
	"github.com/ucrm/backend/internal/infrastructure/event"
	"github.com/ucrm/backend/internal/infrastructure/logger"
	"github.com/ucrm/backend/internal/infrastructure/persistence"
	"github.com/ucrm/backend/internal/infrastructure/telemetry"
	"github.com/ucrm/backend/internal/interfaces/http/handler"
	"github.com/ucrm/backend/internal/interfaces/http/middleware"
	"github.com/ucrm/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting UCRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := tracerProvider.RegisterDBTracing(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected")

	// Redis, used as read-through cache for approval flow configuration
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Repositories
	flowRepo := cache.NewCachedFlowRepository(persistence.NewGormFlowRepository(db.DB), redisClient, log)
	stateRepo := persistence.NewGormStateRepository(db.DB)
	recordRepo := persistence.NewGormRecordRepository(db.DB)
	appRepo := persistence.NewGormApplicationRepository(db.DB)
	inspRepo := persistence.NewGormInspectionRepository(db.DB)
	payableRepo := persistence.NewGormPayableRepository(db.DB)
	creditRepo := persistence.NewGormCreditBalanceRepository(db.DB)
	seriesRepo := persistence.NewGormTransactionSeriesRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	authorizer := identityapp.NewRoleAuthorizer(roleRepo)

	// Approval services
	flowService := approvalapp.NewFlowService(flowRepo, log)
	approvalService := approvalapp.NewApprovalService(flowRepo, stateRepo, recordRepo, authorizer, txManager, log)

	// Billing services
	payableService := billingapp.NewPayableService(payableRepo, log)
	seriesService := billingapp.NewSeriesService(seriesRepo, txManager, log)
	paymentService := billingapp.NewPaymentService(payableRepo, creditRepo, seriesRepo, txRepo, txManager, log)

	// CRM services
	applicationService := crmapp.NewApplicationService(appRepo, approvalService, log)
	inspectionService := crmapp.NewInspectionService(inspRepo, appRepo, txManager, log)

	// Event bus and the status cascades it drives
	eventBus := event.NewInMemoryEventBus(log)

	applicationApprovalHandler := crmapp.NewApplicationApprovalHandler(appRepo, eventBus, log)
	eventBus.Subscribe(applicationApprovalHandler)

	inspectionCompletedHandler := crmapp.NewInspectionCompletedHandler(approvalService, log)
	eventBus.Subscribe(inspectionCompletedHandler)

	inspectionApprovalHandler := crmapp.NewInspectionApprovalHandler(inspRepo, appRepo, payableRepo, txManager, eventBus, log)
	eventBus.Subscribe(inspectionApprovalHandler)

	settlementHandler := crmapp.NewSettlementHandler(appRepo, payableRepo, eventBus, log)
	eventBus.Subscribe(settlementHandler)

	log.Info("Event handlers registered",
		zap.Strings("application_approval_events", applicationApprovalHandler.EventTypes()),
		zap.Strings("inspection_completed_events", inspectionCompletedHandler.EventTypes()),
		zap.Strings("inspection_approval_events", inspectionApprovalHandler.EventTypes()),
		zap.Strings("settlement_events", settlementHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	approvalService.SetEventPublisher(eventBus)
	applicationService.SetEventPublisher(eventBus)
	inspectionService.SetEventPublisher(eventBus)
	payableService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	approvalHandler := handler.NewApprovalHandler(flowService, approvalService)
	applicationHandler := handler.NewApplicationHandler(applicationService, inspectionService)
	billingHandler := handler.NewBillingHandler(paymentService, payableService, seriesService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/api/v1/auth/login"},
		Logger:     log,
	}))
	r.Register(authHandler)
	r.Register(userHandler)
	r.Register(approvalHandler)
	r.Register(applicationHandler)
	r.Register(billingHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// healthHandler reports liveness, including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

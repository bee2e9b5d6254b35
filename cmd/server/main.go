package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/payops/backend/internal/application/audit"
	identityapp "github.com/payops/backend/internal/application/identity"
	payrollapp "github.com/payops/backend/internal/application/payroll"
	performanceapp "github.com/payops/backend/internal/application/performance"
	workforceapp "github.com/payops/backend/internal/application/workforce"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/infrastructure/auth"
	"github.com/payops/backend/internal/infrastructure/cache"
	"github.com/payops/backend/internal/infrastructure/config"
	"github.com/payops/backend/internal/infrastructure/event"
	"github.com/payops/backend/internal/infrastructure/logger"
	"github.com/payops/backend/internal/infrastructure/persistence"
	"github.com/payops/backend/internal/infrastructure/scheduler"
	"github.com/payops/backend/internal/infrastructure/storage"
	"github.com/payops/backend/internal/infrastructure/telemetry"
	"github.com/payops/backend/internal/interfaces/http/handler"
	"github.com/payops/backend/internal/interfaces/http/middleware"
	"github.com/payops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/payops/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			PayOps Backend API
//	@version		1.0
//	@description	Multi-tenant payroll and performance back-office API

//	@contact.name	API Support
//	@contact.url	https://github.com/payops/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

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

	log.Info("Starting PayOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap, sharing the slow-query threshold
	// with the tracing layer
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel,
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Telemetry (tracing, metrics, database instrumentation)
	var meterProvider *telemetry.MeterProvider
	var tracerProvider *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(context.Background(), telemetry.Config{
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

		meterProvider, err = telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
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

		// Log export: tee zap onto the OTLP collector alongside the existing
		// stdout/file core
		loggerProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize logger provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := loggerProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down logger provider", zap.Error(err))
			}
		}()
		log = telemetry.NewBridgedLogger(log.Core(), telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		}), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

		// Database query tracing with slow query detection
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}

		// Query counters, latency histograms and connection pool gauges
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("payops/db"), telemetry.DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
			PoolStatsInterval:  15 * time.Second,
		}, log)
		if err != nil {
			log.Warn("Failed to create database metrics", zap.Error(err))
		} else {
			if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
				log.Warn("Failed to register database metrics plugin", zap.Error(err))
			}
			if sqlDB, err := db.DB.DB(); err == nil {
				dbMetrics.SetSQLDB(sqlDB)
				dbMetrics.StartPoolStatsCollection(context.Background())
			}
			defer dbMetrics.Stop()
		}

		log.Info("Telemetry enabled",
			zap.String("collector", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)
	}

	// Continuous profiling (Pyroscope)
	if cfg.Telemetry.ProfilerEnabled {
		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:           cfg.Telemetry.ProfilerEnabled,
			ServerAddress:     cfg.Telemetry.ProfilerServerAddress,
			ApplicationName:   cfg.App.Name,
			ProfileCPU:        true,
			ProfileAllocSpace: true,
			ProfileInuseSpace: true,
		}, log)
		if err != nil {
			log.Fatal("Failed to start profiler", zap.Error(err))
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()

		// With the profiler running, spans can carry span_id pprof labels
		if tracerProvider != nil {
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to enable span profiles", zap.Error(err))
			}
		}
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	scoreParameterRepo := persistence.NewGormScoreParameterRepository(db.DB)
	parameterScoreRepo := persistence.NewGormParameterScoreRepository(db.DB)
	bonusRecordRepo := persistence.NewGormBonusRecordRepository(db.DB)
	salaryStructureRepo := persistence.NewGormSalaryStructureRepository(db.DB)
	salarySlipRepo := persistence.NewGormSalarySlipRepository(db.DB)
	attendanceRepo := persistence.NewGormAttendanceRepository(db.DB)
	workTaskRepo := persistence.NewGormWorkTaskRepository(db.DB)
	auditLogRepo := persistence.NewGormAuditLogRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Every domain event is recorded to the audit trail. The recorder is
	// wrapped in an idempotent handler so redelivered events do not produce
	// duplicate audit entries; dedup state lives in Redis when available.
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	auditRecorder := auditapp.NewRecorder(auditLogRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(auditRecorder, idempotencyStore, log))
	log.Info("Event handlers registered",
		zap.Strings("audit_recorder_events", auditRecorder.EventTypes()),
	)

	// Business metrics ride on the same event stream; reconciliation gauges
	// are collected periodically straight from the database
	if meterProvider != nil {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("payops/business"),
			Logger:          log,
			PayrollProvider: telemetry.NewGormPayrollMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create business metrics", zap.Error(err))
		}
		eventBus.Subscribe(telemetry.NewMetricsEventHandler(businessMetrics))
		businessMetrics.StartPeriodicCollection(context.Background(), telemetry.NewGormTenantProvider(db.DB), 0)
		defer businessMetrics.Stop()
	}

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Identity services (auth, user, role, company)
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis token blacklist unavailable, falling back to in-memory", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	roleService := identityapp.NewRoleService(roleRepo, userRepo, log)
	companyService := identityapp.NewCompanyService(companyRepo, userRepo, roleService, log)

	// Performance services (parameter registry, scoring engine)
	var evaluator *performance.Evaluator
	if len(cfg.Scoring.Tiers) > 0 {
		bands := make([]performance.TierBand, 0, len(cfg.Scoring.Tiers))
		for _, t := range cfg.Scoring.Tiers {
			bands = append(bands, performance.TierBand{
				MinScore:     t.MinScore,
				MaxScore:     t.MaxScore,
				Name:         t.Name,
				Color:        t.Color,
				BonusPercent: t.BonusPercent,
			})
		}
		tierPolicy, err := performance.NewTierPolicy(bands)
		if err != nil {
			log.Fatal("Invalid tier policy configuration", zap.Error(err))
		}
		evaluator = performance.NewEvaluator(tierPolicy)
		log.Info("Tier policy loaded from configuration", zap.Int("bands", len(bands)))
	}

	metricsSource := workforceapp.NewMetricsSource(attendanceRepo, workTaskRepo)
	parameterService := performanceapp.NewParameterService(scoreParameterRepo, parameterScoreRepo, eventBus)
	scoringService := performanceapp.NewScoringService(
		scoreParameterRepo, parameterScoreRepo, bonusRecordRepo, metricsSource, evaluator, eventBus,
	)

	// Workforce services (attendance, tasks)
	attendanceService := workforceapp.NewAttendanceService(attendanceRepo)
	taskService := workforceapp.NewTaskService(workTaskRepo)

	// Payroll services (salary structures, slips, register export)
	structureService := payrollapp.NewStructureService(salaryStructureRepo, eventBus)
	slipService := payrollapp.NewSlipService(salarySlipRepo, salaryStructureRepo, bonusRecordRepo, eventBus)

	var objectStorage payrollapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log.Named("storage")))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Storage.EnsureBucket(bucketCtx); err != nil {
			cancelBucket()
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		cancelBucket()
		objectStorage = s3Storage
		log.Info("Object storage initialized",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("No storage bucket configured, register exports use stub storage")
	}

	exportService := payrollapp.NewExportService(salarySlipRepo, objectStorage, eventBus)
	if cfg.Storage.PresignExpiration > 0 {
		exportService.SetConfig(payrollapp.ExportServiceConfig{
			DownloadURLExpiry: cfg.Storage.PresignExpiration,
		})
	}

	// Audit query service
	auditQueryService := auditapp.NewQueryService(auditLogRepo)

	// Monthly register export scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Warn("Invalid cron schedule, using default", zap.Error(err))
		}
		schedulerConfig := scheduler.RegisterCronSchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			CronHour:          cronHour,
			CronMinute:        cronMinute,
			DailyCronSchedule: cfg.Scheduler.DailyCronSchedule,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}
		exportExecutor := scheduler.NewRegisterExportExecutor(exportService, log)
		jobRepo := scheduler.NewSchedulerJobRepository(db.DB)
		registerScheduler := scheduler.NewRegisterCronScheduler(schedulerConfig, exportExecutor, companyRepo, jobRepo, log)
		if err := registerScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start register export scheduler", zap.Error(err))
		}
		defer func() {
			if err := registerScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping register export scheduler", zap.Error(err))
			}
		}()
		log.Info("Register export scheduler started",
			zap.Int("cron_hour", cronHour),
			zap.Int("cron_minute", cronMinute),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	companyHandler := handler.NewCompanyHandler(companyService)
	parameterHandler := handler.NewParameterHandler(parameterService)
	performanceHandler := handler.NewPerformanceHandler(scoringService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	taskHandler := handler.NewTaskHandler(taskService)
	salaryStructureHandler := handler.NewSalaryStructureHandler(structureService)
	salarySlipHandler := handler.NewSalarySlipHandler(slipService, exportService)
	auditHandler := handler.NewAuditHandler(auditQueryService)

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
	// 4. Tracing/Metrics - Request telemetry (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("payops/http"), true))
	}
	if cfg.Telemetry.ProfilerEnabled {
		engine.Use(middleware.Profiling())
	}
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

	// Health check endpoints (outside API versioning). Liveness never touches
	// dependencies; readiness requires a reachable database.
	engine.GET("/health", healthHandler(db, log))
	engine.GET("/health/ready", healthHandler(db, log))
	engine.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Swagger documentation endpoint
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddleware(jwtService)),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/companies/register",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tenant context: resolved from the JWT company claim and propagated to
	// request-scoped logging. Public endpoints carry no tenant.
	r.Use(middleware.TenantMiddlewareWithConfig(middleware.TenantMiddlewareConfig{
		JWTEnabled: true,
		Required:   false,
		Logger:     log,
	}))

	// Authentication (login/refresh are public, rest requires a token)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.AuthRateLimit(authLimiter))
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Company onboarding and self-service configuration. Registration is
	// public; configuration changes need the company update permission.
	companyRoutes := router.NewDomainGroup("company", "/companies")
	companyRoutes.POST("/register", companyHandler.Register)
	companyRoutes.GET("/current", companyHandler.GetCurrent)
	companyRoutes.PUT("/current", middleware.RequireResourceAction(identity.ResourceCompany, identity.ActionUpdate), companyHandler.Update)
	companyRoutes.GET("/current/config", companyHandler.GetConfig)
	companyRoutes.PUT("/current/config", middleware.RequireResourceAction(identity.ResourceCompany, identity.ActionUpdate), companyHandler.UpdateConfig)

	// Identity administration (users, roles). Route-level guards check the
	// resource:action claims; ownership checks stay in the services.
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.POST("/users", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionCreate), userHandler.Create)
	identityRoutes.GET("/users", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionRead), userHandler.List)
	identityRoutes.GET("/users/stats/count", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionRead), userHandler.Count)
	identityRoutes.GET("/users/:id", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionRead), userHandler.GetByID)
	identityRoutes.PUT("/users/:id", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionUpdate), userHandler.Update)
	identityRoutes.POST("/users/:id/activate", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionUpdate), userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionUpdate), userHandler.Deactivate)
	identityRoutes.POST("/users/:id/lock", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionUpdate), userHandler.Lock)
	identityRoutes.POST("/users/:id/unlock", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionUpdate), userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", middleware.RequireResourceAction(identity.ResourceUser, identity.ActionUpdate), userHandler.ResetPassword)
	identityRoutes.POST("/roles", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionCreate), roleHandler.Create)
	identityRoutes.GET("/roles", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionRead), roleHandler.List)
	identityRoutes.GET("/roles/system", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionRead), roleHandler.GetSystemRoles)
	identityRoutes.GET("/roles/stats/count", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionRead), roleHandler.Count)
	identityRoutes.GET("/roles/:id", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionRead), roleHandler.GetByID)
	identityRoutes.PUT("/roles/:id", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionUpdate), roleHandler.Update)
	identityRoutes.DELETE("/roles/:id", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionDelete), roleHandler.Delete)
	identityRoutes.POST("/roles/:id/enable", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionUpdate), roleHandler.Enable)
	identityRoutes.POST("/roles/:id/disable", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionUpdate), roleHandler.Disable)
	identityRoutes.PUT("/roles/:id/permissions", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionUpdate), roleHandler.SetPermissions)

	// Score parameter registry
	parameterRoutes := router.NewDomainGroup("parameters", "/parameters")
	parameterRoutes.POST("", middleware.RequireResourceAction(identity.ResourceScoreParameter, identity.ActionCreate), parameterHandler.Create)
	parameterRoutes.GET("", middleware.RequireResourceAction(identity.ResourceScoreParameter, identity.ActionRead), parameterHandler.List)
	parameterRoutes.GET("/:id", middleware.RequireResourceAction(identity.ResourceScoreParameter, identity.ActionRead), parameterHandler.GetByID)
	parameterRoutes.PUT("/:id", middleware.RequireResourceAction(identity.ResourceScoreParameter, identity.ActionUpdate), parameterHandler.Update)
	parameterRoutes.DELETE("/:id", middleware.RequireResourceAction(identity.ResourceScoreParameter, identity.ActionDelete), parameterHandler.Delete)

	// Performance scoring
	performanceRoutes := router.NewDomainGroup("performance", "/performance")
	performanceRoutes.POST("/compute", middleware.RequireResourceAction(identity.ResourcePerformance, identity.ActionCompute), performanceHandler.Compute)
	performanceRoutes.POST("/finalize", middleware.RequireResourceAction(identity.ResourceBonus, identity.ActionFinalize), performanceHandler.Finalize)
	performanceRoutes.GET("/history", middleware.RequireResourceAction(identity.ResourcePerformance, identity.ActionRead), performanceHandler.History)
	performanceRoutes.GET("/users/:user_id", middleware.RequireResourceAction(identity.ResourcePerformance, identity.ActionRead), performanceHandler.Get)

	// Workforce (attendance, tasks)
	attendanceRoutes := router.NewDomainGroup("attendance", "/attendance")
	attendanceRoutes.POST("", middleware.RequireResourceAction(identity.ResourceAttendance, identity.ActionCreate), attendanceHandler.Record)
	attendanceRoutes.GET("", middleware.RequireResourceAction(identity.ResourceAttendance, identity.ActionRead), attendanceHandler.List)

	taskRoutes := router.NewDomainGroup("tasks", "/tasks")
	taskRoutes.POST("", middleware.RequireResourceAction(identity.ResourceTask, identity.ActionCreate), taskHandler.Create)
	taskRoutes.GET("", middleware.RequireResourceAction(identity.ResourceTask, identity.ActionRead), taskHandler.List)
	taskRoutes.POST("/:id/start", middleware.RequireResourceAction(identity.ResourceTask, identity.ActionUpdate), taskHandler.Start)
	taskRoutes.POST("/:id/complete", middleware.RequireResourceAction(identity.ResourceTask, identity.ActionUpdate), taskHandler.Complete)
	taskRoutes.POST("/:id/rate", middleware.RequireResourceAction(identity.ResourceTask, identity.ActionRate), taskHandler.Rate)
	taskRoutes.POST("/:id/cancel", middleware.RequireResourceAction(identity.ResourceTask, identity.ActionUpdate), taskHandler.Cancel)

	// Payroll (salary structures, slips, register export)
	salaryStructureRoutes := router.NewDomainGroup("salary-structures", "/users")
	salaryStructureRoutes.PUT("/:user_id/salary-structure",
		middleware.RequireAnyPermission(
			identity.ResourceSalaryStructure+":"+identity.ActionCreate,
			identity.ResourceSalaryStructure+":"+identity.ActionUpdate,
		), salaryStructureHandler.Upsert)
	salaryStructureRoutes.GET("/:user_id/salary-structure", middleware.RequireResourceAction(identity.ResourceSalaryStructure, identity.ActionRead), salaryStructureHandler.GetActive)
	salaryStructureRoutes.GET("/:user_id/salary-structure/history", middleware.RequireResourceAction(identity.ResourceSalaryStructure, identity.ActionRead), salaryStructureHandler.History)

	salarySlipRoutes := router.NewDomainGroup("salary-slips", "/salary-slips")
	salarySlipRoutes.POST("/generate", middleware.RequireResourceAction(identity.ResourceSalarySlip, identity.ActionCreate), salarySlipHandler.Generate)
	salarySlipRoutes.POST("/export", middleware.RequireResourceAction(identity.ResourceRegister, identity.ActionExport), salarySlipHandler.ExportRegister)
	salarySlipRoutes.GET("", middleware.RequireResourceAction(identity.ResourceSalarySlip, identity.ActionRead), salarySlipHandler.List)
	salarySlipRoutes.GET("/:id", middleware.RequireResourceAction(identity.ResourceSalarySlip, identity.ActionRead), salarySlipHandler.GetByID)
	salarySlipRoutes.PATCH("/:id",
		middleware.RequireAnyPermission(
			identity.ResourceSalarySlip+":"+identity.ActionSubmit,
			identity.ResourceSalarySlip+":"+identity.ActionUpdate,
		), salarySlipHandler.Update)

	// Audit trail
	auditRoutes := router.NewDomainGroup("audit", "/audit-logs")
	auditRoutes.GET("", middleware.RequireResourceAction(identity.ResourceAuditLog, identity.ActionRead), auditHandler.List)
	auditRoutes.GET("/:id", middleware.RequireResourceAction(identity.ResourceAuditLog, identity.ActionRead), auditHandler.GetByID)
	auditRoutes.GET("/aggregates/:aggregate_id", middleware.RequireResourceAction(identity.ResourceAuditLog, identity.ActionRead), auditHandler.GetForAggregate)

	// Register all domain groups
	r.Register(authRoutes).
		Register(companyRoutes).
		Register(identityRoutes).
		Register(parameterRoutes).
		Register(performanceRoutes).
		Register(attendanceRoutes).
		Register(taskRoutes).
		Register(salaryStructureRoutes).
		Register(salarySlipRoutes).
		Register(auditRoutes)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler(cfg.App.Env)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

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
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["pool"] = gin.H{
				"open":    stats.OpenConnections,
				"in_use":  stats.InUse,
				"idle":    stats.Idle,
				"waiting": stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Poojitha-916/DRC-capstone/api/swagger"
	"github.com/Poojitha-916/DRC-capstone/internal/handler"
	"github.com/Poojitha-916/DRC-capstone/internal/middleware"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/repository"
	"github.com/Poojitha-916/DRC-capstone/internal/service"
	"github.com/Poojitha-916/DRC-capstone/internal/workflow"
	"github.com/Poojitha-916/DRC-capstone/pkg/cache"
	"github.com/Poojitha-916/DRC-capstone/pkg/config"
	"github.com/Poojitha-916/DRC-capstone/pkg/database"
	"github.com/Poojitha-916/DRC-capstone/pkg/export"
	"github.com/Poojitha-916/DRC-capstone/pkg/jobs"
	"github.com/Poojitha-916/DRC-capstone/pkg/logger"
	corsmiddleware "github.com/Poojitha-916/DRC-capstone/pkg/middleware/cors"
	reqidmiddleware "github.com/Poojitha-916/DRC-capstone/pkg/middleware/requestid"
	"github.com/Poojitha-916/DRC-capstone/pkg/storage"
)

// @title Scholar Portal API
// @version 1.0.0
// @description Research scholar administration portal with staged application approvals
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := workflow.NewRegistry()
	if err := registry.Validate(); err != nil {
		logr.Sugar().Fatalw("invalid workflow definitions", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo := repository.NewUserRepository(db)
	scholarRepo := repository.NewScholarRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	exportRepo := repository.NewExportRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "scholar-portal",
	})
	userService := service.NewUserService(userRepo, validate, logr)
	scholarService := service.NewScholarService(scholarRepo, logr)
	noticeService := service.NewNoticeService(noticeRepo, userRepo, logr)
	metricsService := service.NewMetricsService()

	progressService := service.NewProgressService(progressRepo, scholarRepo, logr)
	appOpts := []service.ApplicationServiceOption{
		service.WithChangeAppliers(service.DefaultChangeAppliers(scholarRepo, logr)),
		service.WithProgressRecorder(progressRepo),
		service.WithWorkflowObserver(metricsService),
		service.WithUserDirectory(userRepo),
	}
	if cacheRepo != nil {
		appOpts = append(appOpts, service.WithQueueCache(cacheRepo, cfg.Cache.QueueTTL))
		progressService = progressService.WithCache(cacheRepo, cfg.Cache.ProgressTTL)
	}
	applicationService := service.NewApplicationService(applicationRepo, reviewRepo, scholarRepo, registry, userRepo, logr, appOpts...)

	var exportService *service.ExportService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewRegisterExporter(applicationRepo, store, signer, service.RegisterExporterConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		worker := service.NewExportWorker(exportRepo, exporter, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("register-exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(ctx)
		defer exportQueue.Stop()

		exportService = service.NewExportService(exportRepo, exportQueue, exporter, logr, service.ExportServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportService.RecoverPendingJobs(ctx)
		exportService.StartCleanup(ctx)
	}

	if cfg.Provision.Enabled {
		provision := service.NewProvisionService(userRepo, scholarRepo, "", logr,
			service.WithSampleApplication(applicationRepo),
			service.WithSeedProgress(progressRepo))
		if err := provision.Run(ctx); err != nil {
			logr.Sugar().Warnw("provisioning failed", "error", err)
		}
	}

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	scholarHandler := handler.NewScholarHandler(scholarService)
	progressHandler := handler.NewProgressHandler(progressService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	noticeHandler := handler.NewNoticeHandler(noticeService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	apps := protected.Group("/applications")
	apps.POST("", middleware.RequireRoles(models.RoleScholar), applicationHandler.Create)
	apps.GET("", applicationHandler.List)
	apps.GET("/:id", applicationHandler.Get)
	apps.GET("/queue/:stage", middleware.RequireStaff(), applicationHandler.Queue)
	apps.POST("/:id/review", middleware.RequireStaff(), applicationHandler.Review)

	scholars := protected.Group("/scholars")
	scholars.GET("/me", middleware.RequireRoles(models.RoleScholar), scholarHandler.Me)
	scholars.GET("/:id", scholarHandler.Get)
	scholars.GET("/:id/committee", scholarHandler.Committee)
	scholars.POST("/:id/committee", middleware.RequireRoles(models.RoleAdmin),
		middleware.Audit(userRepo, models.AuditActionCommitteeAssign, "rac_members"), scholarHandler.AssignCommittee)
	scholars.GET("/:id/progress", progressHandler.Get)
	scholars.PUT("/:id/progress", middleware.RequireStaff(), progressHandler.Record)

	notices := protected.Group("/notices")
	notices.GET("", noticeHandler.List)
	notices.POST("", middleware.RequireStaff(), noticeHandler.Create)
	notices.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), noticeHandler.Delete)

	users := protected.Group("/users")
	users.Use(middleware.RequireRoles(models.RoleAdmin))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	if exportService != nil {
		exportHandler := handler.NewExportHandler(exportService)
		exports := api.Group("/exports")
		exports.POST("", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionExportRequest, "export_jobs"), exportHandler.Create)
		exports.GET("/:id", middleware.JWT(authService), exportHandler.Status)
		// Download is token-authenticated; the signed token replaces the JWT.
		exports.GET("/download/:token", exportHandler.Download)
	}

	protected.GET("/admin/metrics", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

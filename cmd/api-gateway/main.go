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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eduvault/eduvault-api/api/swagger"
	"github.com/eduvault/eduvault-api/internal/handler"
	"github.com/eduvault/eduvault-api/internal/middleware"
	"github.com/eduvault/eduvault-api/internal/models"
	"github.com/eduvault/eduvault-api/internal/repository"
	"github.com/eduvault/eduvault-api/internal/service"
	"github.com/eduvault/eduvault-api/pkg/cache"
	"github.com/eduvault/eduvault-api/pkg/config"
	"github.com/eduvault/eduvault-api/pkg/database"
	"github.com/eduvault/eduvault-api/pkg/export"
	"github.com/eduvault/eduvault-api/pkg/logger"
	corsmiddleware "github.com/eduvault/eduvault-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eduvault/eduvault-api/pkg/middleware/requestid"
	"github.com/eduvault/eduvault-api/pkg/storage"
)

// @title EduVault API
// @version 0.1.0
// @description Student payment and registration document vault
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, analytics cache disabled", "error", err)
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck
		}
	}()

	artifacts, err := storage.NewLocalStorage(cfg.Storage.BaseDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init artifact storage", "error", err)
	}

	submissionRepo := repository.NewSubmissionRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metrics := service.NewMetricsService()
	tokens := service.NewTokenService(cfg.JWT)
	analyticsCache := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, redisClient != nil)

	notifications := service.NewNotificationService(notificationRepo, userRepo, nil, nil, service.NotificationConfig{
		Workers:     cfg.Notifications.Workers,
		ReuploadURL: cfg.Notifications.ReuploadURL,
	}, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	submissions := service.NewSubmissionService(submissionRepo, artifacts, notifications, metrics, logr)
	analytics := service.NewAnalyticsService(submissionRepo, userRepo, analyticsCache, logr)

	fetcher := storage.NewRoutingFetcher(
		storage.NewHTTPFetcher(cfg.Storage.FetchTimeout),
		storage.NewLocalFetcher(artifacts),
	)
	bundles := service.NewBundleService(submissionRepo, fetcher, metrics, service.BundleConfig{
		FetchConcurrency: cfg.Exports.FetchConcurrency,
		FetchTimeout:     cfg.Exports.FetchTimeout,
	}, logr)

	reports := service.NewReportService(analytics, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	documentHandler := handler.NewDocumentHandler(submissions, artifacts, bundles)
	reviewHandler := handler.NewReviewHandler(submissions)
	analyticsHandler := handler.NewAnalyticsHandler(analytics, bundles, reports)
	notificationHandler := handler.NewNotificationHandler(notifications)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokens))

	documents := api.Group("/documents/:kind")
	{
		documents.POST("", middleware.RequireRoles(models.RoleStudent), documentHandler.Submit)
		documents.GET("", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin), documentHandler.List)
		documents.GET("/mine", middleware.RequireRoles(models.RoleStudent), documentHandler.Mine)
		documents.GET("/mine/latest/download", middleware.RequireRoles(models.RoleStudent), documentHandler.DownloadLatest)
		documents.GET("/export", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin), documentHandler.Export)
	}

	reviews := api.Group("/reviews/:kind", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
	{
		reviews.POST("/:id/approve", reviewHandler.Approve)
		reviews.POST("/:id/reject", reviewHandler.Reject)
	}

	analyticsRoutes := api.Group("/analytics", middleware.RequireRoles(models.RoleAdmin))
	{
		analyticsRoutes.GET("/approved-receipts", analyticsHandler.ApprovedReceipts)
		analyticsRoutes.GET("/approved-receipts/count", analyticsHandler.ApprovedCount)
		analyticsRoutes.GET("/approved/this-week", analyticsHandler.ApprovedThisWeek)
		analyticsRoutes.GET("/uploads/this-month", analyticsHandler.UploadsThisMonth)
		analyticsRoutes.GET("/students", analyticsHandler.Students)
		analyticsRoutes.GET("/students/new-this-month", analyticsHandler.NewStudentsThisMonth)
		analyticsRoutes.GET("/approvers", analyticsHandler.Approvers)
		analyticsRoutes.GET("/staff/activity-this-month", analyticsHandler.StaffActivity)
		analyticsRoutes.GET("/download/approved-receipts", analyticsHandler.DownloadApproved)
		analyticsRoutes.GET("/reports/approved", analyticsHandler.ApprovedReport)
	}

	inbox := api.Group("/notifications")
	{
		inbox.GET("", notificationHandler.List)
		inbox.POST("/:id/read", notificationHandler.MarkRead)
		inbox.POST("/read-all", notificationHandler.MarkAllRead)
	}

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
		logr.Sugar().Errorw("shutdown error", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/hiraya-scholars/hiraya-api/api/swagger"
	"github.com/hiraya-scholars/hiraya-api/internal/handler"
	"github.com/hiraya-scholars/hiraya-api/internal/middleware"
	"github.com/hiraya-scholars/hiraya-api/internal/repository"
	"github.com/hiraya-scholars/hiraya-api/internal/service"
	"github.com/hiraya-scholars/hiraya-api/pkg/cache"
	"github.com/hiraya-scholars/hiraya-api/pkg/config"
	"github.com/hiraya-scholars/hiraya-api/pkg/database"
	"github.com/hiraya-scholars/hiraya-api/pkg/logger"
	corsmiddleware "github.com/hiraya-scholars/hiraya-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hiraya-scholars/hiraya-api/pkg/middleware/requestid"
	"github.com/hiraya-scholars/hiraya-api/pkg/storage"
)

// @title Hiraya Scholarship API
// @version 1.0.0
// @description Backend for the Hiraya Foundation scholarship application portal
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
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			sugar.Warnw("redis unavailable, dashboard caching disabled", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to prepare uploads storage", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	validate := validator.New()
	clock := service.SystemClock()
	numbers := service.SystemNumberSource()

	authSvc := service.NewAuthService(userRepo, adminRepo, validate, logr, clock, numbers, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	appSvc := service.NewApplicationService(appRepo, docRepo, validate, logr, clock, numbers)
	docSvc := service.NewDocumentService(docRepo, appRepo, store, logr, service.UploadLimits{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	})
	userSvc := service.NewUserService(userRepo, logr)
	dashboardSvc := service.NewDashboardService(adminRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)
	exportSvc := service.NewExportService(appRepo, logr, clock)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(reqidmiddleware.Middleware())
	engine.Use(logger.GinMiddleware(logr))
	engine.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	engine.Use(middleware.Metrics(metrics))

	handler.Routes{
		Auth:         handler.NewAuthHandler(authSvc),
		Applications: handler.NewApplicationHandler(appSvc, metrics),
		Documents:    handler.NewDocumentHandler(docSvc, metrics),
		Admin:        handler.NewAdminHandler(appSvc, docSvc, userSvc, dashboardSvc, exportSvc),
		AuthService:  authSvc,
		Metrics:      metrics,
		APIPrefix:    cfg.APIPrefix,
		EnableDocs:   cfg.Env != config.EnvProduction,
		ExportsOn:    cfg.Exports.Enabled,
	}.Register(engine)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		sugar.Errorw("forced shutdown", "error", err)
	}
}

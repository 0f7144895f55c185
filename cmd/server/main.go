package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/api"
	"github.com/footyedge/reconciler/internal/api/handlers"
	"github.com/footyedge/reconciler/internal/api/middleware"
	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/ingest"
	"github.com/footyedge/reconciler/internal/services"
	"github.com/footyedge/reconciler/internal/store"
	"github.com/footyedge/reconciler/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Canonical store and audit trail
	st := store.New(cfg.StorePath, cfg.BackupDir, logger)
	auditDB, err := audit.Open(cfg.AuditDBPath, logger)
	if err != nil {
		logrus.Fatalf("Failed to open audit database: %v", err)
	}
	defer auditDB.Close()

	// Redis cache is optional; without it the API reads the store
	// directly on every request.
	var cache *services.CacheService
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("Failed to parse Redis URL: %v", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		cache = services.NewCacheService(client)
	}

	// Refresh pipeline and scheduler
	var fetcher *ingest.Fetcher
	if len(cfg.SourceURLs) > 0 {
		fetcher = ingest.NewFetcher(cfg.FetchRate, logger)
	}
	sources := services.Sources{Dir: cfg.SourcesDir, RemoteURLs: cfg.SourceURLs}
	refresh := services.NewRefreshService(st, auditDB, cache, fetcher, sources, logger)
	scheduler := services.NewScheduler(refresh, st, cfg.RefreshEvery, logger)
	if err := scheduler.Start(); err != nil {
		logrus.Errorf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// HTTP surface
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(st, auditDB)
	router.GET("/health", healthHandler.GetHealth)

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, st, cache, scheduler, auditDB, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

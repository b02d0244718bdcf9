package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-service/internal/cache"
	"pos-service/internal/repository"
	"pos-service/internal/server"
	"pos-service/pkg/config"
	"pos-service/pkg/database"
	"pos-service/pkg/logger"
	"pos-service/prometheus"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+cfg.ServiceName, cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))

	// Initialize Prometheus metrics
	metrics := prometheus.NewMetrics(cfg.Metrics.Prefix, prom.DefaultRegisterer)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	deps := server.Deps{
		Config:   cfg,
		DB:       db,
		Logger:   log,
		Metrics:  metrics,
		Gatherer: prom.DefaultGatherer,
	}

	// Optional store list cache
	if cfg.Redis.URL != "" {
		rdb, err := cache.ConnectRedis(context.Background(), &cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, store cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			deps.Stores = cache.NewCachedStoreRepository(repository.NewStoreRepository(db), rdb, cfg.Redis.TTL, metrics)
			log.Info("Store cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
		}
	}

	e := server.New(deps)

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mr1hm/go-alert-dashboard/internal/api"
	"github.com/mr1hm/go-alert-dashboard/internal/config"
	"github.com/mr1hm/go-alert-dashboard/internal/generator"
	"github.com/mr1hm/go-alert-dashboard/internal/logging"
	"github.com/mr1hm/go-alert-dashboard/internal/metrics"
	"github.com/mr1hm/go-alert-dashboard/internal/seed"
	"github.com/mr1hm/go-alert-dashboard/internal/simulation"
	"github.com/mr1hm/go-alert-dashboard/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"trend_mode", cfg.Trend.Mode,
		"trend_length", cfg.Trend.Length,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	broadcaster := stream.NewBroadcaster(cfg.Stream.BufferSize)
	st := simulation.NewStore(cfg)
	gen := generator.New(cfg.Sim.Seed)

	mgr := simulation.NewManager(cfg, st, gen, broadcaster, m)
	if cfg.Sim.SeedCatalog {
		alerts, err := seed.Load()
		if err != nil {
			logging.Fatalf("Failed to load seed alerts: %v", err)
		}
		mgr.Seed(alerts)
	}
	mgr.Start(ctx)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	handler := api.NewHandler(st, mgr, broadcaster, api.Options{
		FeedLimit: cfg.Feed.Limit,
		KeepAlive: cfg.Stream.KeepAlive,
		Source:    gen,
		Metrics:   m,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close() // ends open event streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nyxlabs/userd/internal/app/migrate"
	"github.com/nyxlabs/userd/internal/httpd"
	"github.com/nyxlabs/userd/internal/repository/postgres"
	"github.com/nyxlabs/userd/internal/service/user"
	"github.com/nyxlabs/userd/pkg/config"
	"github.com/nyxlabs/userd/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New("userd", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	var limiter httpd.RateLimiter
	if cfg.RedisAddr != "" {
		limiter, err = httpd.NewRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable, using memory limiter", "error", err)
			limiter = nil
		}
	}

	repo := postgres.New(pool)
	users := user.New(repo, log)
	server := httpd.NewServer(cfg, users, log, limiter)
	defer server.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("userd starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- server.ListenAndServe(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		<-errorCh
		log.Info("userd stopped")
	case err := <-errorCh:
		if err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

// serveMetrics exposes prometheus metrics on a side listener so the
// main data path stays on the hand-rolled HTTP loop.
func serveMetrics(ctx context.Context, addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server error", "error", err)
	}
}

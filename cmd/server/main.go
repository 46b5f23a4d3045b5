package main

import (
	"context"
	"errors"
	"fmt"
	"market-dash-service/internal/adapters/cache"
	"market-dash-service/internal/adapters/repositories"
	"market-dash-service/internal/api"
	"market-dash-service/internal/config"
	"market-dash-service/internal/platform/db"
	"market-dash-service/internal/platform/obs"
	"market-dash-service/internal/ports"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, Redis) behind ports and starts the HTTP server.
func main() {
	os.Exit(serve())
}

// serve returns the process exit code so deferred cleanup, including the
// logger flush, runs before os.Exit.
func serve() int {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}
	store := repositories.NewStore(conn, dialect)

	// Demo data for local runs; a no-op once profiles exist.
	if cfg.SeedOnStart {
		if err := repositories.SeedFromFile(ctx, store, cfg.SeedPath); err != nil {
			return err
		}
		logger.Info("seed applied", zap.String("path", cfg.SeedPath))
	}

	var reportCache ports.ReportCache
	if cfg.RedisURL != "" {
		client, err := cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		reportCache = cache.NewRedisReportCache(client, "market-dash:")
		logger.Info("report cache enabled", zap.Duration("ttl", cfg.ReportCacheTTL))
	}

	router := api.NewRouter(api.NewServices(store, reportCache, cfg.ReportCacheTTL), store)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("driver", cfg.DatabaseDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

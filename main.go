package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"options-pricer/auth"
	"options-pricer/config"
	"options-pricer/database"
	"options-pricer/handlers"
	"options-pricer/logger"
	"options-pricer/metrics"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, logCloser, err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("closing database", "error", err)
		}
	}()
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("database ready", "driver", cfg.DBDriver)

	health := map[string]handlers.PingFunc{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	var refreshStore auth.RefreshStore
	if cfg.RefreshEnabled() {
		rdb, err := auth.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		refreshStore = auth.NewRedisRefreshStore(rdb)
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("refresh tokens enabled", "redis", cfg.RedisAddr)
	} else {
		log.Info("refresh tokens disabled (REDIS_ADDR not set)")
	}

	tokens, err := auth.NewTokenService(cfg, refreshStore)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.Deps{
		Calculations: database.NewCalculationRepo(db),
		Users:        database.NewUserRepo(db),
		Tokens:       tokens,
		Metrics:      metrics.New(),
		Logger:       log,
		CORSOrigins:  cfg.CORSAllowOrigins,
		Health:       health,
	})

	return serve(ctx, log, cfg.Port, router)
}

func serve(ctx context.Context, log *slog.Logger, port string, h http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

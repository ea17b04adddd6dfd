package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finch/internal/auth"
	"finch/internal/config"
	"finch/internal/events"
	apphttp "finch/internal/http"
	"finch/internal/i18n"
	applog "finch/internal/log"
	"finch/internal/services"
	"finch/internal/storage"
	"finch/internal/storage/memory"
)

const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	maxHeaderBytes    = 64 << 10
	shutdownTimeout   = 30 * time.Second
	sessionSweepEvery = time.Hour
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", applog.FieldError, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, cleanup, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("connect to AMQP: %w", err)
		}
		defer eventsClient.Close()
		logger.WithComponent(applog.ComponentEvents).Info("Event publishing enabled",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.WithComponent(applog.ComponentEvents).Info("AMQP_URL not set, settings events disabled")
	}

	translator, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.SessionCookieName, store, store)
	settingsSvc := services.NewSettingsService(store, eventsClient)

	srv := apphttp.NewServer(":"+cfg.Port, authSvc, settingsSvc, translator, store)
	srv.ReadTimeout = readTimeout
	srv.WriteTimeout = writeTimeout
	srv.IdleTimeout = idleTimeout
	srv.MaxHeaderBytes = maxHeaderBytes
	srv.Handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(srv.Handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepExpiredSessions(ctx, store, logger.WithComponent(applog.ComponentAuth))

	errCh := make(chan error, 1)
	go func() {
		logger.WithComponent(applog.ComponentHTTP).Info("Server listening",
			"addr", srv.Addr, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

// openStore selects the data backend from configuration.
func openStore(cfg *config.Config, logger *applog.Logger) (storage.Store, func(), error) {
	storageLog := logger.WithComponent(applog.ComponentStorage)

	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		storageLog.Info("Using sqlite backend", "path", cfg.SQLiteDBPath)
		return repo, func() {
			if err := repo.Close(); err != nil {
				storageLog.Error("Failed to close store", applog.FieldError, err)
			}
		}, nil
	default:
		storageLog.Info("Using in-memory backend")
		return memory.New(), func() {}, nil
	}
}

// sweepExpiredSessions periodically deletes sessions past their expiry.
func sweepExpiredSessions(ctx context.Context, sessions storage.SessionStore, logger *applog.Logger) {
	ticker := time.NewTicker(sessionSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := sessions.DeleteExpiredSessions(ctx, time.Now())
			if err != nil {
				logger.ErrorContext(ctx, "Session sweep failed", applog.FieldError, err)
				continue
			}
			if deleted > 0 {
				logger.InfoContext(ctx, "Expired sessions removed", "count", deleted)
			}
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finch/internal/config"
	"finch/internal/events"
	applog "finch/internal/log"
	"finch/internal/storage"
	"finch/internal/storage/memory"
	"finch/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Worker exited with error", applog.FieldError, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	slog.SetDefault(logger.Logger)

	// The worker only needs the broker and the data backend, so it skips the
	// full server validation and checks its own requirements.
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the audit worker")
	}

	audit, cleanup, err := openAuditStore(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	auditWorker := worker.NewAuditWorker(audit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Audit worker consuming",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = events.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		func(event *events.SettingsEvent) error {
			return auditWorker.HandleSettingsEvent(ctx, event)
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume settings events: %w", err)
	}

	logger.Info("Audit worker stopped")
	return nil
}

// openAuditStore selects where audit entries are written. The memory backend
// only makes sense for local runs; production uses sqlite.
func openAuditStore(cfg *config.Config, logger *applog.Logger) (storage.AuditWriter, func(), error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("Audit trail in sqlite", "path", cfg.SQLiteDBPath)
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close store", applog.FieldError, err)
			}
		}, nil
	default:
		logger.Warn("Audit trail in memory, entries are lost on exit")
		return memory.New(), func() {}, nil
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/config"
	applog "budget/internal/log"
	"budget/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentScheduler,
	})
	applog.SetDefault(logger)

	logger.Info("Starting budget-scheduler")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(slog.Default())
	result, err := factory.CreateStore(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	queue, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	summaries := services.NewSummaryService(result.Store)
	exports := services.NewExportService(summaries, queue)

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	logger.Info("Scheduled report export configured",
		"interval", interval,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Enqueue a report for the current month immediately so a fresh deploy
	// does not wait a full interval for its first document.
	if err := exports.RequestExport(ctx, "", ""); err != nil {
		logger.Error("Initial export request failed", "error", err)
	} else {
		logger.Info("Initial export request enqueued")
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if err := exports.RequestExport(ctx, "", ""); err != nil {
					logger.Error("Scheduled export request failed", "error", err)
				} else {
					logger.Info("Scheduled export request enqueued",
						"next_run", now.Add(interval).Format("15:04:05"))
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down scheduler...")
	cancel()
	logger.Info("Scheduler shutdown complete")
}

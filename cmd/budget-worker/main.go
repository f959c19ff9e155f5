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
	"budget/internal/export"
	"budget/internal/export/drive"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting budget-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker reads the same store as the API so a request without a
	// carried snapshot can be rebuilt from current records.
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

	summaries := services.NewSummaryService(result.Store)
	files := export.NewFileStore(cfg.ExportDir, cfg.ExportBaseURL)

	// Drive sharing is optional; without it reports stay on local disk.
	var uploader worker.ReportUploader
	if cfg.DriveUpload {
		u, err := drive.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Drive uploader", "error", err)
			os.Exit(1)
		}
		uploader = u
		logger.Info("Drive uploader initialized")
	} else {
		logger.Info("Drive upload disabled - reports stay local")
	}

	exportWorker := worker.NewExportWorker(summaries, files, uploader)

	dial := func() (*amqp.Client, error) {
		return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	}
	handler := func(msg *amqp.ExportRequestMessage) error {
		return exportWorker.HandleExportRequest(ctx, msg)
	}

	go func() {
		if err := amqp.ConsumeWithReconnect(ctx, dial, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	logger.Info("Worker consuming export requests",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"export_dir", cfg.ExportDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}

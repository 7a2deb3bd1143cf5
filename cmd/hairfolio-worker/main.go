package main

import (
	"context"
	"os"
	"time"

	"hairfolio/internal/backend"
	"hairfolio/internal/cli"
	applog "hairfolio/internal/log"
	"hairfolio/internal/services"
	"hairfolio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Starting hairfolio-worker")

	ctx := context.Background()
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Slog())
	store, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer func() {
		if store.Cleanup != nil {
			_ = store.Cleanup()
		}
	}()
	if store.Sync == nil {
		logger.Error("Backend does not track sync state", "backend", backendCfg.Type)
		os.Exit(1)
	}

	sheetsClient, err := factory.CreateSheets(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	consumer, err := factory.CreatePublisher(cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	processor := services.NewSyncProcessor(store.Sync, sheetsClient, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
		Logger:       logger,
	})
	syncWorker := worker.NewSyncWorker(consumer, processor)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := syncWorker.Run(runCtx); err != nil {
		logger.Error("Sync worker stopped with error", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker shutdown complete")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"hairfolio/internal/backend"
	"hairfolio/internal/cache"
	"hairfolio/internal/cli"
	apphttp "hairfolio/internal/http"
	applog "hairfolio/internal/log"
	"hairfolio/internal/middleware/ratelimit"
	"hairfolio/internal/services"
	"hairfolio/internal/settings"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)
	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Slog())
	store, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	publisher, err := factory.CreatePublisher(cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP publisher", "error", err)
		os.Exit(1)
	}
	sheetsClient, err := factory.CreateSheets(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	st, err := settings.Open(cfg.SettingsFile)
	if err != nil {
		logger.Error("Failed to load settings", "error", err, "path", cfg.SettingsFile)
		os.Exit(1)
	}

	var ledger *services.Ledger
	if publisher != nil {
		ledger = services.NewLedger(store.Ledger, publisher)
	} else {
		ledger = services.NewLedger(store.Ledger, nil)
	}
	reports := services.NewReports(store.Ledger, services.ReportsConfig{
		TTL:        cfg.SnapshotTTL,
		MaxRecords: cfg.ReportMaxRecords,
	}).WithSettings(st)
	if sheetsClient != nil {
		reports.WithSheets(sheetsClient)
	}
	ledger.OnChange(reports.Invalidate)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:   ledger,
		Reports:  reports,
		Backups:  services.NewBackups(ledger, st),
		Settings: st,
		Ping:     store.Ping,
		Logger:   logger,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		ReportTimeout: cfg.ReportTimeout,
	})

	cacheCtx, stopCaches := context.WithCancel(ctx)
	caches := cache.NewManager()
	if c := reports.Cache(); c != nil {
		caches.Register(c)
	}
	caches.Start(cacheCtx, time.Minute)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		stopCaches()
		caches.Wait()
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting hairfolio server",
		"port", cfg.Port,
		"backend", backendCfg.Type,
		"amqp", publisher != nil,
		"sheets", sheetsClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

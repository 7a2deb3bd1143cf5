package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hairfolio/internal/backend"
	"hairfolio/internal/cli"
	"hairfolio/internal/cli/commands"
	applog "hairfolio/internal/log"
	"hairfolio/internal/services"
	"hairfolio/internal/settings"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupStderrLogger(cfg, applog.ComponentCLI)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		fail(logger, "Invalid backend configuration", err)
	}
	factory := backend.NewFactory(logger.Slog())
	store, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		fail(logger, "Failed to initialize backend", err)
	}
	defer func() {
		if store.Cleanup != nil {
			_ = store.Cleanup()
		}
	}()

	st, err := settings.Open(cfg.SettingsFile)
	if err != nil {
		fail(logger, "Failed to load settings", err)
	}

	publisher, err := factory.CreatePublisher(cfg)
	if err != nil {
		fail(logger, "Failed to initialize AMQP publisher", err)
	}
	ledger := services.NewLedger(store.Ledger, nil)
	if publisher != nil {
		defer publisher.Close()
		ledger = services.NewLedger(store.Ledger, publisher)
	}

	reports := services.NewReports(store.Ledger, services.ReportsConfig{MaxRecords: cfg.ReportMaxRecords}).WithSettings(st)
	sheetsClient, err := factory.CreateSheets(ctx, cfg)
	if err != nil {
		fail(logger, "Failed to initialize Google Sheets client", err)
	}
	if sheetsClient != nil {
		reports.WithSheets(sheetsClient)
	}

	root := commands.NewRootCmd(&commands.App{Ledger: ledger, Reports: reports, Out: os.Stdout})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func fail(logger *applog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

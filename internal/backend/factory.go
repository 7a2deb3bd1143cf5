package backend

import (
	"context"
	"fmt"
	"log/slog"

	"hairfolio/internal/amqp"
	"hairfolio/internal/config"
	gsheet "hairfolio/internal/sheets/google"
	"hairfolio/internal/sheets/memory"
	"hairfolio/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Ledger:  repo,
		Sync:    repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend; data is lost on restart")

	return &BackendResult{
		Ledger: memory.New(),
		Ping:   func(context.Context) error { return nil },
	}, nil
}

// CreatePublisher connects to AMQP when a URL is configured. A nil client
// with a nil error means publishing is disabled.
func (f *DefaultFactory) CreatePublisher(cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		f.logger.Info("AMQP not configured, record changes will not be published")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client, nil
}

// CreateSheets builds the Google Sheets client when a spreadsheet is
// configured. A nil client with a nil error means Sheets is disabled.
func (f *DefaultFactory) CreateSheets(ctx context.Context, cfg *config.Config) (*gsheet.Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		ExpensesSheet:     cfg.GoogleExpensesSheet,
		ReportsSheet:      cfg.GoogleReportsSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets client", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

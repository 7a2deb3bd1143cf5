package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"hairfolio/internal/cache"
	"hairfolio/internal/core"
	"hairfolio/internal/export"
	applog "hairfolio/internal/log"
	"hairfolio/internal/report"
	"hairfolio/internal/settings"
	"hairfolio/internal/sheets"
)

var (
	// ErrTooManyRecords is returned when the ledger exceeds the configured
	// snapshot size.
	ErrTooManyRecords = errors.New("too many records to build a report")
	// ErrSheetsDisabled is returned by PublishToSheets without a ReportWriter.
	ErrSheetsDisabled = errors.New("google sheets export is not configured")
)

const snapshotKey = "ledger"

// Source is the read side of the ledger.
type Source interface {
	sheets.TransactionReader
	sheets.ExpenseReader
}

// Snapshot is the full ledger as loaded for one round of report generation.
type Snapshot struct {
	Transactions []core.Transaction
	Expenses     []core.Expense
	LoadedAt     time.Time
}

// ReportsConfig tunes snapshot caching.
type ReportsConfig struct {
	TTL        time.Duration // 0 disables caching
	MaxRecords int           // 0 means unlimited
	Now        func() time.Time
}

// Reports builds report engines over a cached ledger snapshot.
type Reports struct {
	source   Source
	cfg      ReportsConfig
	cache    *cache.LRUCache[Snapshot]
	group    singleflight.Group
	gen      atomic.Uint64 // bumped by Invalidate
	writer   sheets.ReportWriter
	settings *settings.Store
	logger   *applog.StructuredLogger
}

// NewReports returns a report service reading from source.
func NewReports(source Source, cfg ReportsConfig) *Reports {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	r := &Reports{
		source: source,
		cfg:    cfg,
		logger: applog.NewStructuredLogger(applog.FromContext(context.Background()).WithComponent(applog.ComponentReports)),
	}
	if cfg.TTL > 0 {
		r.cache = cache.NewLRUCache[Snapshot](1, cfg.TTL).WithClock(cfg.Now)
	}
	return r
}

// WithSheets sets the spreadsheet that PublishToSheets writes to.
func (r *Reports) WithSheets(w sheets.ReportWriter) *Reports {
	r.writer = w
	return r
}

// WithSettings makes terminal tables use the configured currency.
func (r *Reports) WithSettings(s *settings.Store) *Reports {
	r.settings = s
	return r
}

// Cache exposes the snapshot cache for the periodic sweeper; nil when
// caching is disabled.
func (r *Reports) Cache() *cache.LRUCache[Snapshot] {
	return r.cache
}

// Invalidate drops the cached snapshot. Ledger writes call it.
func (r *Reports) Invalidate() {
	r.gen.Add(1)
	r.group.Forget(snapshotKey)
	if r.cache != nil {
		r.cache.Delete(snapshotKey)
	}
}

// Snapshot returns the cached ledger or loads it. Concurrent loads share one
// pair of reads.
func (r *Reports) Snapshot(ctx context.Context) (Snapshot, error) {
	if r.cache != nil {
		if snap, ok := r.cache.Get(snapshotKey); ok {
			return snap, nil
		}
	}

	v, err, shared := r.group.Do(snapshotKey, func() (any, error) {
		gen := r.gen.Load()
		snap, err := r.load(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		// A write during the load makes this snapshot stale for later callers.
		if r.cache != nil && r.gen.Load() == gen {
			r.cache.Set(snapshotKey, snap)
		}
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Shared in-flight snapshot load")
	}
	return v.(Snapshot), nil
}

func (r *Reports) load(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txns, err := r.source.ListTransactions(gctx, sheets.ListFilter{})
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		snap.Transactions = txns
		return nil
	})
	g.Go(func() error {
		exps, err := r.source.ListExpenses(gctx, sheets.ListFilter{})
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		snap.Expenses = exps
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	total := len(snap.Transactions) + len(snap.Expenses)
	if r.cfg.MaxRecords > 0 && total > r.cfg.MaxRecords {
		return Snapshot{}, fmt.Errorf("%w: %d records, limit %d", ErrTooManyRecords, total, r.cfg.MaxRecords)
	}
	snap.LoadedAt = r.cfg.Now()

	slog.InfoContext(ctx, "Ledger snapshot loaded",
		applog.FieldComponent, applog.ComponentReports,
		applog.FieldRecords, total,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return snap, nil
}

// Engine returns a report engine over the current snapshot.
func (r *Reports) Engine(ctx context.Context) (*report.Engine, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewEngine(snap.Transactions, snap.Expenses, report.WithClock(r.cfg.Now)), nil
}

// ResolveRange turns user input into a DateRange. Explicit start and end win
// over a preset name; an empty name means the last 30 days. The returned name
// is the preset used, or "custom".
func (r *Reports) ResolveRange(name, start, end string) (report.DateRange, string, error) {
	if start != "" || end != "" {
		dr := report.DateRange{Start: start, End: end}
		if err := dr.Validate(); err != nil {
			return report.DateRange{}, "", err
		}
		return dr, report.PresetCustom, nil
	}
	if name == "" {
		name = report.PresetLast30Days
	}
	if name == report.PresetCustom {
		return report.DateRange{}, "", fmt.Errorf("%w: custom range needs start and end", report.ErrInvalidRange)
	}
	return report.PresetRange(name, r.cfg.Now()), name, nil
}

// Generate validates dr and runs the generator for kind.
func (r *Reports) Generate(ctx context.Context, kind report.Kind, dr report.DateRange, p report.Params) (report.Report, error) {
	if err := dr.Validate(); err != nil {
		return nil, err
	}
	engine, err := r.Engine(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rep, err := engine.Generate(kind, dr, p)
	if err != nil {
		return nil, err
	}
	r.logger.LogReportGenerated(ctx, string(kind), dr.Label(), "", time.Since(start).Milliseconds())
	return rep, nil
}

// Monthly returns the analytics of the calendar month containing month.
func (r *Reports) Monthly(ctx context.Context, month time.Time) (report.MonthlyAnalytics, error) {
	engine, err := r.Engine(ctx)
	if err != nil {
		return report.MonthlyAnalytics{}, err
	}
	return engine.MonthlyAnalytics(month), nil
}

func (r *Reports) KPI(ctx context.Context, month time.Time) (report.KPI, error) {
	engine, err := r.Engine(ctx)
	if err != nil {
		return report.KPI{}, err
	}
	return engine.KPI(month), nil
}

// Export writes rep in format. Terminal tables use the configured currency;
// file formats keep plain numbers.
func (r *Reports) Export(w io.Writer, format string, rep report.Report) error {
	var opts export.Options
	if strings.EqualFold(format, export.FormatTable) && r.settings != nil {
		opts.Money = r.settings.Get().Money().Format
	}
	return export.Write(w, format, rep, opts)
}

// PublishToSheets writes rep to its own tab of the configured spreadsheet.
func (r *Reports) PublishToSheets(ctx context.Context, rep report.Report) error {
	if r.writer == nil {
		return ErrSheetsDisabled
	}
	doc, err := export.Build(rep, export.Options{})
	if err != nil {
		return err
	}
	if err := r.writer.WriteReport(ctx, doc.Title, doc.Records()); err != nil {
		return fmt.Errorf("write report to sheets: %w", err)
	}
	slog.InfoContext(ctx, "Report written to Google Sheets",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldReportKind, rep.Kind(),
		applog.FieldRange, rep.PeriodLabel())
	return nil
}

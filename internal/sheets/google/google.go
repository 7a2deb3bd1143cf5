package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ports "hairfolio/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultTransactionsSheet = "Transactions"
	DefaultExpensesSheet     = "Expenses"
	DefaultReportsSheet      = "Report"

	// maxSheetTitle is the Sheets limit on tab names.
	maxSheetTitle = 100
)

type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	ExpensesSheet     string
	ReportsSheet      string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.TransactionsSheet) == "" {
		c.TransactionsSheet = DefaultTransactionsSheet
	}
	if strings.TrimSpace(c.ExpensesSheet) == "" {
		c.ExpensesSheet = DefaultExpensesSheet
	}
	if strings.TrimSpace(c.ReportsSheet) == "" {
		c.ReportsSheet = DefaultReportsSheet
	}
	return c
}

// Client mirrors ledger records into a spreadsheet, one tab per entity with
// the record id in column A, and writes rendered reports to their own tabs.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	expensesSheet     string
	reportsSheet      string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

var (
	_ ports.Mirror       = (*Client)(nil)
	_ ports.ReportWriter = (*Client)(nil)
)

// New creates a client authenticated from the environment (see credentialOptions).
// Extra options are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentialOptions(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, append(creds, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return NewWithService(svc, cfg), nil
}

func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		expensesSheet:     cfg.ExpensesSheet,
		reportsSheet:      cfg.ReportsSheet,
		sheetIDs:          map[string]int64{},
	}
}

// sheetID resolves a tab title to its numeric id, creating the tab when create is set.
func (c *Client) sheetID(ctx context.Context, title string, create bool) (int64, bool, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, true, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read spreadsheet: %w", err)
	}
	c.mu.Lock()
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok = c.sheetIDs[title]
	c.mu.Unlock()
	if ok || !create {
		return id, ok, nil
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("add sheet %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, false, fmt.Errorf("add sheet %s: empty reply", title)
	}
	id = resp.Replies[0].AddSheet.Properties.SheetId

	c.mu.Lock()
	c.sheetIDs[title] = id
	c.mu.Unlock()
	slog.InfoContext(ctx, "Created sheet", "title", title, "sheet_id", id)
	return id, true, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toValues(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// quoteSheet wraps a tab title for use in A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

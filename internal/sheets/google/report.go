package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gsheet "google.golang.org/api/sheets/v4"
)

// WriteReport replaces the contents of the report tab for title with rows.
func (c *Client) WriteReport(ctx context.Context, title string, rows [][]string) error {
	if c.svc == nil {
		return fmt.Errorf("sheets service not initialized")
	}
	tab := c.reportTab(title)
	if _, _, err := c.sheetID(ctx, tab, true); err != nil {
		return err
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteSheet(tab),
		&gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = toValues(r)
	}
	rng := fmt.Sprintf("%s!A1", quoteSheet(tab))
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: values}).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Report written to sheet", "tab", tab, "rows", len(rows))
	return nil
}

// reportTab names the tab "<reports sheet> - <title>", cut to the Sheets limit.
func (c *Client) reportTab(title string) string {
	title = strings.TrimSpace(title)
	name := c.reportsSheet
	if title != "" {
		name = c.reportsSheet + " - " + title
	}
	if r := []rune(name); len(r) > maxSheetTitle {
		name = string(r[:maxSheetTitle])
	}
	return name
}

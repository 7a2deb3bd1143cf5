package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hairfolio/internal/core"

	gsheet "google.golang.org/api/sheets/v4"
)

var (
	transactionHeader = []string{"ID", "Date", "Service", "Price", "Notes"}
	expenseHeader     = []string{"ID", "Date", "Type", "Description", "Amount"}
)

func transactionRow(t core.Transaction) []string {
	return []string{t.ID, t.Date, t.Style, core.FormatAmount(t.Price), t.Notes}
}

func expenseRow(e core.Expense) []string {
	return []string{e.ID, e.Date, e.Type.String(), e.Description, core.FormatAmount(e.Amount)}
}

func (c *Client) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.upsert(ctx, c.transactionsSheet, transactionHeader, transactionRow(t))
}

func (c *Client) UpsertExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.upsert(ctx, c.expensesSheet, expenseHeader, expenseRow(e))
}

func (c *Client) RemoveTransaction(ctx context.Context, id string) error {
	return c.remove(ctx, c.transactionsSheet, id)
}

func (c *Client) RemoveExpense(ctx context.Context, id string) error {
	return c.remove(ctx, c.expensesSheet, id)
}

// upsert rewrites the row whose column A equals row[0], or appends it. An empty
// tab gets the header first.
func (c *Client) upsert(ctx context.Context, sheet string, header, row []string) error {
	if c.svc == nil {
		return fmt.Errorf("sheets service not initialized")
	}
	if _, _, err := c.sheetID(ctx, sheet, true); err != nil {
		return err
	}

	ids, err := c.readIDs(ctx, sheet)
	if err != nil {
		return err
	}
	lastCol := columnLetter(len(row))

	if n := rowOf(ids, row[0]); n > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), n, lastCol, n)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
			&gsheet.ValueRange{Values: [][]interface{}{toValues(row)}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		slog.DebugContext(ctx, "Updated mirrored row", "sheet", sheet, "id", row[0], "row", n)
		return nil
	}

	values := [][]interface{}{toValues(row)}
	if len(ids) == 0 {
		values = [][]interface{}{toValues(header), toValues(row)}
	}
	rng := fmt.Sprintf("%s!A:%s", quoteSheet(sheet), lastCol)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	slog.DebugContext(ctx, "Appended mirrored row", "sheet", sheet, "id", row[0])
	return nil
}

// remove deletes the row holding id. A missing row is not an error, so
// replayed deletions are harmless.
func (c *Client) remove(ctx context.Context, sheet, id string) error {
	if c.svc == nil {
		return fmt.Errorf("sheets service not initialized")
	}
	sheetID, ok, err := c.sheetID(ctx, sheet, false)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	ids, err := c.readIDs(ctx, sheet)
	if err != nil {
		return err
	}
	n := rowOf(ids, id)
	if n == 0 {
		slog.DebugContext(ctx, "Row already absent from mirror", "sheet", sheet, "id", id)
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(n - 1),
					EndIndex:        int64(n),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete row %d from %s: %w", n, sheet, err)
	}
	slog.DebugContext(ctx, "Removed mirrored row", "sheet", sheet, "id", id, "row", n)
	return nil
}

func (c *Client) readIDs(ctx context.Context, sheet string) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", quoteSheet(sheet))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	ids := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			ids[i] = toStrings(row[:1])[0]
		}
	}
	return ids, nil
}

// rowOf returns the 1-based row holding id, or 0.
func rowOf(ids []string, id string) int {
	id = strings.TrimSpace(id)
	for i, v := range ids {
		if v == id {
			return i + 1
		}
	}
	return 0
}

// columnLetter maps 1..26 to A..Z.
func columnLetter(n int) string {
	if n < 1 {
		n = 1
	}
	if n > 26 {
		n = 26
	}
	return string(rune('A' + n - 1))
}

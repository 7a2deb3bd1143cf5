package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"hairfolio/internal/core"
	"hairfolio/internal/settings"
	"hairfolio/internal/sheets"
)

// BackupVersion is written into every export and accepted on import.
const BackupVersion = 1

var ErrInvalidBackup = errors.New("invalid backup")

// Backup is the JSON document produced by Export and read by Import.
type Backup struct {
	Version    int        `json:"version"`
	ExportDate time.Time  `json:"export_date"`
	Data       BackupData `json:"data"`
}

type BackupData struct {
	Transactions []core.Transaction `json:"transactions"`
	Expenses     []core.Expense     `json:"expenses"`
	Settings     *settings.Settings `json:"settings,omitempty"`
}

// Backups exports and restores the whole ledger plus settings.
type Backups struct {
	ledger   *Ledger
	settings *settings.Store
	now      func() time.Time
}

func NewBackups(ledger *Ledger, st *settings.Store) *Backups {
	return &Backups{ledger: ledger, settings: st, now: time.Now}
}

// Export collects every record and the current settings.
func (b *Backups) Export(ctx context.Context) (Backup, error) {
	txns, err := b.ledger.ListTransactions(ctx, sheets.ListFilter{})
	if err != nil {
		return Backup{}, fmt.Errorf("export transactions: %w", err)
	}
	exps, err := b.ledger.ListExpenses(ctx, sheets.ListFilter{})
	if err != nil {
		return Backup{}, fmt.Errorf("export expenses: %w", err)
	}

	out := Backup{
		Version:    BackupVersion,
		ExportDate: b.now().UTC(),
		Data: BackupData{
			Transactions: txns,
			Expenses:     exps,
		},
	}
	if b.settings != nil {
		s := b.settings.Get()
		out.Data.Settings = &s
	}
	return out, nil
}

// WriteJSON encodes the current export to w.
func (b *Backups) WriteJSON(ctx context.Context, w io.Writer) error {
	backup, err := b.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}

// ReadBackup decodes a backup document, rejecting unknown versions.
func ReadBackup(r io.Reader) (Backup, error) {
	var backup Backup
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if backup.Version != 0 && backup.Version != BackupVersion {
		return Backup{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, backup.Version)
	}
	return backup, nil
}

// Import replaces the ledger with the backup contents. Settings are applied
// only when present in the document, and only after the ledger swap
// succeeded; a rejected backup leaves both untouched.
func (b *Backups) Import(ctx context.Context, backup Backup) error {
	var next *settings.Settings
	if backup.Data.Settings != nil && b.settings != nil {
		s := backup.Data.Settings.Normalize()
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: settings: %w", ErrInvalidBackup, err)
		}
		next = &s
	}
	if err := b.ledger.ReplaceAll(ctx, backup.Data.Transactions, backup.Data.Expenses); err != nil {
		return err
	}
	if next != nil {
		if _, err := b.settings.Update(*next); err != nil {
			return fmt.Errorf("save imported settings: %w", err)
		}
	}
	return nil
}

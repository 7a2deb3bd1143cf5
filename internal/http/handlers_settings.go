package http

import (
	"fmt"
	"net/http"

	"hairfolio/internal/services"
	"hairfolio/internal/settings"
)

var (
	errSettingsDisabled = fmt.Errorf("settings: %w", errNotConfigured)
	errBackupsDisabled  = fmt.Errorf("backups: %w", errNotConfigured)
)

type settingsResponse struct {
	settings.Settings
	Currencies []string `json:"currencies"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Settings == nil {
		writeError(w, r, errSettingsDisabled)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: s.deps.Settings.Get(), Currencies: settings.Currencies})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Settings == nil {
		writeError(w, r, errSettingsDisabled)
		return
	}
	var in settings.Settings
	if err := decodeJSON(w, r, maxBodyBytes, &in); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.deps.Settings.Update(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: saved, Currencies: settings.Currencies})
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	if s.deps.Backups == nil {
		writeError(w, r, errBackupsDisabled)
		return
	}
	backup, err := s.deps.Backups.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("hairfolio-backup-%s.json", s.deps.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	writeJSON(w, http.StatusOK, backup)
}

func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	if s.deps.Backups == nil {
		writeError(w, r, errBackupsDisabled)
		return
	}
	backup, err := services.ReadBackup(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Backups.Import(r.Context(), backup); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"transactions": len(backup.Data.Transactions),
		"expenses":     len(backup.Data.Expenses),
	})
}

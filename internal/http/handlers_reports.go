package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hairfolio/internal/export"
	applog "hairfolio/internal/log"
	"hairfolio/internal/report"
)

type catalogResponse struct {
	Reports []report.Config `json:"reports"`
	Ranges  []string        `json:"ranges"`
	Formats []string        `json:"formats"`
}

type reportResponse struct {
	Kind   report.Kind   `json:"kind"`
	Range  string        `json:"range"`
	Report report.Report `json:"report"`
}

func (s *Server) handleReportCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Reports: report.Catalog(),
		Ranges:  report.Presets(),
		Formats: export.Formats(),
	})
}

// generate resolves the kind, range and params of r and runs the report
// under the configured timeout.
func (s *Server) generate(r *http.Request) (report.Report, string, reportQuery, error) {
	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		return nil, "", reportQuery{}, err
	}
	q, err := parseReportQuery(r.URL.Query())
	if err != nil {
		return nil, "", reportQuery{}, err
	}
	dr, rangeName, err := s.deps.Reports.ResolveRange(q.RangeName, q.Start, q.End)
	if err != nil {
		return nil, "", reportQuery{}, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.deps.ReportTimeout)
	defer cancel()
	rep, err := s.deps.Reports.Generate(ctx, kind, dr, q.Params)
	if err != nil {
		return nil, "", reportQuery{}, err
	}
	return rep, rangeName, q, nil
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	rep, rangeName, _, err := s.generate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Kind: rep.Kind(), Range: rangeName, Report: rep})
}

// handleExportReport streams the report as a download. The body is rendered
// into memory first so a failed render still gets a JSON error.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rep, rangeName, q, err := s.generate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if q.Format == "" {
		q.Format = report.FormatCSV
	}
	format, err := export.ParseFormat(q.Format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Reports.Export(&buf, format, rep); err != nil {
		writeError(w, r, fmt.Errorf("render %s report: %w", format, err))
		return
	}

	name := export.FileName(rep.Kind(), rangeName, format, s.deps.Now())
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogReportGenerated(r.Context(), string(rep.Kind()), rangeName, format, time.Since(start).Milliseconds())
}

func (s *Server) handlePublishReport(w http.ResponseWriter, r *http.Request) {
	rep, rangeName, _, err := s.generate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Reports.PublishToSheets(r.Context(), rep); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"kind":   string(rep.Kind()),
		"range":  rangeName,
		"status": "published",
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query(), s.deps.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.deps.Reports.Monthly(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query(), s.deps.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	k, err := s.deps.Reports.KPI(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, k)
}

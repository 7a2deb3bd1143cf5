package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hairfolio/internal/core"
	"hairfolio/internal/report"
	"hairfolio/internal/sheets"
)

// reportQuery is the parsed query string of the report endpoints.
type reportQuery struct {
	RangeName string
	Start     string
	End       string
	Params    report.Params
	Format    string
}

func parseReportQuery(q url.Values) (reportQuery, error) {
	rq := reportQuery{
		RangeName: strings.TrimSpace(q.Get("range")),
		Start:     strings.TrimSpace(q.Get("start")),
		End:       strings.TrimSpace(q.Get("end")),
		Format:    strings.TrimSpace(q.Get("format")),
	}

	if v := strings.TrimSpace(q.Get("threshold")); v != "" {
		threshold, err := core.ParseAmount(v)
		if err != nil {
			return reportQuery{}, badRequest("invalid threshold %q", v)
		}
		rq.Params = rq.Params.WithThreshold(threshold)
	}
	if v := strings.TrimSpace(q.Get("inactive_days")); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return reportQuery{}, badRequest("invalid inactive_days %q", v)
		}
		rq.Params = rq.Params.WithInactiveDays(days)
	}
	return rq, nil
}

// parseMonth reads ?month=YYYY-MM, defaulting to the month containing now.
func parseMonth(q url.Values, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(q.Get("month"))
	if v == "" {
		return now, nil
	}
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return time.Time{}, badRequest("invalid month %q, want YYYY-MM", v)
	}
	return t, nil
}

// parseListFilter reads optional ?start= and ?end= dates.
func parseListFilter(q url.Values) (sheets.ListFilter, error) {
	f := sheets.ListFilter{
		Start: strings.TrimSpace(q.Get("start")),
		End:   strings.TrimSpace(q.Get("end")),
	}
	for _, d := range []string{f.Start, f.End} {
		if d == "" {
			continue
		}
		if _, err := core.ParseDate(d); err != nil {
			return sheets.ListFilter{}, badRequest("invalid date %q, want YYYY-MM-DD", d)
		}
	}
	return f, nil
}

// pathID returns the {id} wildcard, trimmed.
func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" || len(id) > 128 {
		return "", badRequest("invalid id")
	}
	return id, nil
}

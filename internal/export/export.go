package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"hairfolio/internal/report"
)

// FormatTable renders a terminal table; the remaining formats come from report.
const FormatTable = "table"

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Formats lists every format Write accepts.
func Formats() []string {
	return []string{report.FormatCSV, report.FormatXLSX, report.FormatJSON, FormatTable}
}

// ParseFormat normalizes s and checks it against Formats.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Write renders r in format to w.
func Write(w io.Writer, format string, r report.Report, opts Options) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if format == report.FormatJSON {
		return WriteJSON(w, r)
	}

	doc, err := Build(r, opts)
	if err != nil {
		return err
	}
	switch format {
	case report.FormatCSV:
		return WriteCSV(w, doc)
	case report.FormatXLSX:
		return WriteXLSX(w, doc)
	default:
		RenderTable(w, doc)
		return nil
	}
}

// Envelope is the JSON shape shared with the HTTP API.
type Envelope struct {
	Kind   report.Kind   `json:"kind"`
	Report report.Report `json:"report"`
}

func WriteJSON(w io.Writer, r report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Envelope{Kind: r.Kind(), Report: r}); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteCSV writes the data rows only: header, rows and footer per section,
// with a section-name row when there is more than one section.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	for i, s := range doc.Sections {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		if len(doc.Sections) > 1 {
			if err := cw.Write([]string{s.Name}); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		if err := cw.Write(s.Header); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := cw.WriteAll(s.Rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if len(s.Footer) > 0 {
			if err := cw.Write(s.Footer); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	switch format {
	case report.FormatCSV:
		return "text/csv; charset=utf-8"
	case report.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case report.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName builds "<Report_Name>_<range>_<YYYY-MM-DD>.<ext>".
func FileName(kind report.Kind, rangeName, format string, now time.Time) string {
	name := whitespace.ReplaceAllString(kind.Title(), "_")
	if rangeName == "" {
		rangeName = report.PresetCustom
	}
	ext := format
	if format == FormatTable {
		ext = "txt"
	}
	return fmt.Sprintf("%s_%s_%s.%s", name, rangeName, now.Format("2006-01-02"), ext)
}

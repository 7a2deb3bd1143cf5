package export

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable prints each section as a rounded table, with the title and
// period above and the notes as the caption of the last table.
func RenderTable(w io.Writer, doc Document) {
	io.WriteString(w, text.Bold.Sprint(doc.Title)+"\n")
	io.WriteString(w, "Period: "+doc.Period+"\n")

	for i, s := range doc.Sections {
		io.WriteString(w, "\n")
		t := table.NewWriter()
		t.SetOutputMirror(w)
		if len(doc.Sections) > 1 {
			t.SetTitle(s.Name)
		}

		t.AppendHeader(toRow(s.Header))
		for _, r := range s.Rows {
			t.AppendRow(toRow(r))
		}
		if len(s.Footer) > 0 {
			t.AppendSeparator()
			footer := make(table.Row, len(s.Footer))
			for j, v := range s.Footer {
				footer[j] = text.Bold.Sprint(v)
			}
			t.AppendFooter(footer)
		}
		if i == len(doc.Sections)-1 && len(doc.Notes) > 0 {
			t.SetCaption(strings.Join(doc.Notes, "\n"))
		}

		t.SetStyle(table.StyleRounded)
		t.Style().Format.Header = text.FormatDefault
		t.Style().Format.Footer = text.FormatDefault
		t.SetColumnConfigs(numericAlign(s))
		t.Render()
	}
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// numericAlign right-aligns columns whose first data cell looks like an amount, count or percentage.
func numericAlign(s Section) []table.ColumnConfig {
	if len(s.Rows) == 0 {
		return nil
	}
	var cfgs []table.ColumnConfig
	for i, v := range s.Rows[0] {
		if looksNumeric(v) {
			cfgs = append(cfgs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignFooter: text.AlignRight})
		}
	}
	return cfgs
}

func looksNumeric(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	digits := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(".,%-$€£¥ ", r):
		default:
			return false
		}
	}
	return digits > 0
}

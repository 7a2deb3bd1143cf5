package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteXLSX writes one worksheet per section. Cells that parse as numbers are
// stored as numbers.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	used := map[string]bool{}
	for i, s := range doc.Sections {
		name := uniqueSheetName(sheetName(s.Name), used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}

		row := 1
		setRow := func(values []string, style int) error {
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return err
				}
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					err = f.SetCellValue(name, cell, n)
				} else {
					err = f.SetCellValue(name, cell, v)
				}
				if err != nil {
					return err
				}
				if style != 0 {
					if err := f.SetCellStyle(name, cell, cell, style); err != nil {
						return err
					}
				}
			}
			row++
			return nil
		}

		if err := setRow([]string{doc.Title}, bold); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
		if err := setRow([]string{"Period", doc.Period}, 0); err != nil {
			return fmt.Errorf("write period: %w", err)
		}
		for _, n := range doc.Notes {
			if err := setRow([]string{n}, 0); err != nil {
				return fmt.Errorf("write note: %w", err)
			}
		}
		row++
		if err := setRow(s.Header, bold); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, r := range s.Rows {
			if err := setRow(r, 0); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
		if len(s.Footer) > 0 {
			if err := setRow(s.Footer, bold); err != nil {
				return fmt.Errorf("write footer: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// sheetName strips characters Excel forbids in sheet names and applies the length limit.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, s)
	s = strings.Trim(strings.TrimSpace(s), "'")
	if s == "" {
		s = "Report"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

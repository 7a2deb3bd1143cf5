package report

import (
	"errors"
	"fmt"
	"time"

	"hairfolio/internal/core"
)

// MaxRangeDays bounds the span accepted by DateRange.Validate. DailyOperations
// materializes one bucket per day, so callers at a network boundary must cap it.
const MaxRangeDays = 3660

// ErrInvalidRange is returned by DateRange.Validate.
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is an inclusive pair of ISO calendar dates (YYYY-MM-DD).
type DateRange struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

// Label renders the human readable period attached to every report.
func (r DateRange) Label() string {
	return r.Start + " to " + r.End
}

// Contains reports whether date falls inside the range. Comparison is
// lexicographic, which is correct for zero-padded ISO dates. Empty dates never match.
func (r DateRange) Contains(date string) bool {
	return date != "" && date >= r.Start && date <= r.End
}

// Validate checks that both bounds parse, that Start <= End and that the span
// does not exceed MaxRangeDays. The engine itself never calls it.
func (r DateRange) Validate() error {
	start, err := core.ParseDate(r.Start)
	if err != nil {
		return fmt.Errorf("%w: start date %q", ErrInvalidRange, r.Start)
	}
	end, err := core.ParseDate(r.End)
	if err != nil {
		return fmt.Errorf("%w: end date %q", ErrInvalidRange, r.End)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start, r.End)
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxRangeDays {
		return fmt.Errorf("%w: span of %d days exceeds %d", ErrInvalidRange, days, MaxRangeDays)
	}
	return nil
}

// days enumerates every calendar day in the range, inclusive. An unparseable
// or inverted range yields nil.
func (r DateRange) days() []string {
	start, err := core.ParseDate(r.Start)
	if err != nil {
		return nil
	}
	end, err := core.ParseDate(r.End)
	if err != nil || end.Before(start) {
		return nil
	}
	out := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, core.FormatDate(d))
	}
	return out
}

// Date range presets understood by PresetRange.
const (
	PresetLast7Days  = "last7days"
	PresetLast30Days = "last30days"
	PresetLast90Days = "last90days"
	PresetThisMonth  = "thisMonth"
	PresetLastYear   = "lastYear"
	PresetCustom     = "custom"
)

// Presets lists the named ranges in the order they are offered to users.
func Presets() []string {
	return []string{PresetLast7Days, PresetLast30Days, PresetLast90Days, PresetThisMonth, PresetLastYear}
}

// PresetRange resolves a named preset relative to now. Unknown names fall back
// to the last 30 days. thisMonth spans the whole calendar month; lastYear is
// the trailing 365 days, not the previous calendar year.
func PresetRange(name string, now time.Time) DateRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := core.FormatDate(today)

	back := func(days int) DateRange {
		return DateRange{Start: core.FormatDate(today.AddDate(0, 0, -days)), End: end}
	}

	switch name {
	case PresetLast7Days:
		return back(7)
	case PresetLast90Days:
		return back(90)
	case PresetThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return DateRange{Start: core.FormatDate(first), End: core.FormatDate(last)}
	case PresetLastYear:
		return back(365)
	default:
		return back(30)
	}
}

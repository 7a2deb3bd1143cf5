package report

import "math"

const (
	unknownLabel = "Unknown"
	noneLabel    = "None"
)

// coerceAmount is the single zero-default policy for numeric record fields:
// NaN and infinities count as 0.
func coerceAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// orDefault returns def when s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// percent returns num/den*100, or 0 when den is 0.
func percent(num, den float64) float64 {
	return ratio(num, den) * 100
}

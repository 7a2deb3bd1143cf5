package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"valid", DateRange{"2024-01-01", "2024-01-31"}, false},
		{"single day", DateRange{"2024-01-01", "2024-01-01"}, false},
		{"inverted", DateRange{"2024-02-01", "2024-01-31"}, true},
		{"bad start", DateRange{"2024-13-01", "2024-01-31"}, true},
		{"empty end", DateRange{"2024-01-01", ""}, true},
		{"too long", DateRange{"1900-01-01", "2024-01-01"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{"2024-01-01", "2024-01-31"}
	assert.True(t, r.Contains("2024-01-01"))
	assert.True(t, r.Contains("2024-01-31"))
	assert.False(t, r.Contains("2023-12-31"))
	assert.False(t, r.Contains("2024-02-01"))
	assert.False(t, r.Contains(""))
}

func TestPresetRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		preset string
		want   DateRange
	}{
		{PresetLast7Days, DateRange{"2024-03-08", "2024-03-15"}},
		{PresetLast30Days, DateRange{"2024-02-14", "2024-03-15"}},
		{PresetLast90Days, DateRange{"2023-12-16", "2024-03-15"}},
		{PresetThisMonth, DateRange{"2024-03-01", "2024-03-31"}},
		{PresetLastYear, DateRange{"2023-03-16", "2024-03-15"}},
		{"", DateRange{"2024-02-14", "2024-03-15"}},
		{"nextDecade", DateRange{"2024-02-14", "2024-03-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			assert.Equal(t, tt.want, PresetRange(tt.preset, now))
		})
	}
}

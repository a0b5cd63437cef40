package calculator

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDays(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{400, "1 Y"},
		{366, "1 Y"},
		{365, "12 M"},
		{800, "2 Y"},
		{45, "1 M"},
		{31, "1 M"},
		{30, "30 D"},
		{10, "10 D"},
		{1, "1 D"},
		{0, "0 D"},
		{-3, "0 D"},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, FromDays(tt.days).String(), "FromDays(%d)", tt.days)
	}
}

func TestFromDays_AllCounts(t *testing.T) {
	for d := 0; d <= 2000; d++ {
		got := FromDays(d)
		switch {
		case d > 365:
			require.Equal(t, Duration{N: d / 365, Unit: Years}, got, d)
		case d > 30:
			require.Equal(t, Duration{N: d / 30, Unit: Months}, got, d)
		default:
			require.Equal(t, Duration{N: d, Unit: Days}, got, d)
		}
	}
}

func TestFromSpan(t *testing.T) {
	end := time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		start time.Time
		want  string
	}{
		{"years", end.AddDate(-2, 0, -1), "2 Y"},
		{"months", end.AddDate(0, 0, -95), "3 M"},
		{"days", end.AddDate(0, 0, -30), "30 D"},
		{"one day and change", end.Add(-26 * time.Hour), "1 D"},
		{"hours", end.Add(-5*time.Hour - 10*time.Minute), "5 H"},
		{"exactly one hour is minutes", end.Add(-time.Hour), "60 min"},
		{"minutes", end.Add(-10 * time.Minute), "10 min"},
		{"exactly one minute is seconds", end.Add(-time.Minute), "60 S"},
		{"seconds", end.Add(-42 * time.Second), "42 S"},
		{"zero", end, "0 S"},
		{"negative", end.Add(time.Hour), "0 S"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromSpan(tt.start, end).String())
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := ParseTimestamp("20240105 09:30:00", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 9, 30, 0, 0, ny), got)

	got, err = ParseTimestamp("20240105", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"2024-01-05", "yesterday", "20241305 00:00:00", ""} {
		_, err := ParseTimestamp(bad, nil)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrParse), bad)
	}
}

func TestLookback(t *testing.T) {
	now := time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)
	days := 45

	d, err := Lookback(&days, "20200101 00:00:00", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "1 M", d.String())

	d, err = Lookback(nil, "", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "30 D", d.String())

	d, err = Lookback(nil, "20240315 10:00:00", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "6 H", d.String())

	_, err = Lookback(nil, "not a date", now, time.UTC)
	assert.True(t, errors.Is(err, ErrParse))
}

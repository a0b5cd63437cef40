package collector

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IBDownloader/internal/calculator"
	"IBDownloader/internal/model"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCollector_Fetch(t *testing.T) {
	start := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	gw := &MockGateway{Bars: map[string][]RawBar{
		"AAPL": GenerateMockBars(start, 30*time.Minute, 185.5, 3),
		"HM.B": GenerateMockBars(start, 24*time.Hour, 160, 2),
	}}
	col := NewCollector(gw, Options{WhatToShow: "MIDPOINT", UseRTH: true}, quietLogger())

	bars, err := col.Fetch(context.Background(), "AAPL", calculator.FromDays(2), model.BarSize30Min)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, start, bars[0].Time)
	assert.Equal(t, start.Add(time.Hour), bars[2].Time)
	assert.True(t, decimal.RequireFromString("185.52").Equal(bars[2].Open))
	assert.Equal(t, int64(1002), bars[2].Volume)

	_, err = col.Fetch(context.Background(), "HM.B-SEK", calculator.FromDays(400), model.BarSize1Day)
	require.NoError(t, err)

	require.Len(t, gw.Requests, 2)
	assert.Equal(t, HistoricalRequest{
		Contract:   model.Contract{Symbol: "AAPL", SecType: model.SecTypeStock, Exchange: "SMART", Currency: "USD"},
		Duration:   calculator.Duration{N: 2, Unit: calculator.Days},
		BarSize:    model.BarSize30Min,
		WhatToShow: "MIDPOINT",
		UseRTH:     true,
	}, gw.Requests[0])
	assert.Equal(t, model.Contract{Symbol: "HM.B", SecType: model.SecTypeStock, Exchange: "SFB", Currency: "SEK"}, gw.Requests[1].Contract)
	assert.Equal(t, "1 Y", gw.Requests[1].Duration.String())
}

func TestCollector_Fetch_NoData(t *testing.T) {
	col := NewCollector(&MockGateway{}, Options{}, quietLogger())
	bars, err := col.Fetch(context.Background(), "XYZ", calculator.FromDays(5), model.BarSize1Day)
	assert.Nil(t, bars)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestCollector_Fetch_GatewayError(t *testing.T) {
	boom := errors.New("connection reset")
	col := NewCollector(&MockGateway{FetchErr: boom}, Options{}, quietLogger())
	_, err := col.Fetch(context.Background(), "SPY", calculator.FromDays(5), model.BarSize1Day)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrNoData))
}

func TestNormalize(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	raw := []RawBar{{
		Time:     time.Date(2024, 1, 2, 9, 30, 0, 0, ny),
		Open:     decimal.RequireFromString("1.5"),
		High:     decimal.RequireFromString("2.25"),
		Low:      decimal.RequireFromString("1.25"),
		Close:    decimal.RequireFromString("2"),
		Volume:   decimal.RequireFromString("1234.9"),
		Average:  decimal.RequireFromString("1.75"),
		BarCount: 77,
	}}
	got := Normalize(raw)
	require.Len(t, got, 1)
	assert.Equal(t, ny, got[0].Time.Location())
	assert.Equal(t, 9, got[0].Time.Hour())
	assert.Equal(t, int64(1234), got[0].Volume)
	assert.Equal(t, "2.25", got[0].High.String())
}

package collector

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"IBDownloader/internal/calculator"
	"IBDownloader/internal/model"
)

// ErrNoData is returned when the gateway has no bars for a request.
var ErrNoData = errors.New("no data")

// MockGateway returns fixed bars per symbol for development and testing.
type MockGateway struct {
	Bars       map[string][]RawBar
	ConnectErr error
	FetchErr   error

	Connected bool
	Closed    bool
	Requests  []HistoricalRequest
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) Connect(_ context.Context) error {
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.Connected = true
	return nil
}

func (m *MockGateway) HistoricalBars(_ context.Context, req HistoricalRequest) ([]RawBar, error) {
	m.Requests = append(m.Requests, req)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Bars[req.Contract.Symbol], nil
}

func (m *MockGateway) Close() error {
	m.Closed = true
	return nil
}

// GenerateMockBars builds count consecutive bars of the given spacing.
func GenerateMockBars(start time.Time, step time.Duration, basePrice float64, count int) []RawBar {
	bars := make([]RawBar, count)
	for i := 0; i < count; i++ {
		p := decimal.NewFromFloat(basePrice).Add(decimal.New(int64(i), -2))
		bars[i] = RawBar{
			Time:     start.Add(time.Duration(i) * step),
			Open:     p,
			High:     p.Add(decimal.New(5, -2)),
			Low:      p.Sub(decimal.New(5, -2)),
			Close:    p.Add(decimal.New(1, -2)),
			Volume:   decimal.NewFromInt(int64(1000 + i)),
			Average:  p,
			BarCount: 10,
		}
	}
	return bars
}

// Options are the per-request settings shared by every symbol of a run.
type Options struct {
	WhatToShow string
	UseRTH     bool
}

// Collector turns symbol tokens into historical-data requests and
// normalizes the gateway's answer.
type Collector struct {
	Gateway Gateway
	Options Options
	Log     logrus.FieldLogger
}

// NewCollector creates a new Collector.
func NewCollector(gw Gateway, opts Options, log logrus.FieldLogger) *Collector {
	return &Collector{Gateway: gw, Options: opts, Log: log}
}

// Fetch requests bars for one symbol. An empty answer is ErrNoData.
func (c *Collector) Fetch(ctx context.Context, symbol string, duration calculator.Duration, barSize model.BarSize) ([]model.Bar, error) {
	contract := model.ParseSymbol(symbol).Contract()
	req := HistoricalRequest{
		Contract:   contract,
		Duration:   duration,
		BarSize:    barSize,
		WhatToShow: c.Options.WhatToShow,
		UseRTH:     c.Options.UseRTH,
	}
	c.Log.WithFields(logrus.Fields{
		"contract": contract.String(),
		"duration": duration.String(),
		"bar_size": string(barSize),
	}).Debug("requesting historical data")

	raw, err := c.Gateway.HistoricalBars(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "historical data for %s", symbol)
	}
	if len(raw) == 0 {
		return nil, ErrNoData
	}
	return Normalize(raw), nil
}

// Normalize keeps time, OHLC and volume of each bar, in order. Bar times
// stay in the location the gateway reported.
func Normalize(raw []RawBar) []model.Bar {
	bars := make([]model.Bar, len(raw))
	for i, r := range raw {
		bars[i] = model.Bar{
			Time:   r.Time,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume.IntPart(),
		}
	}
	return bars
}

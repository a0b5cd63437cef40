package collector

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"IBDownloader/internal/calculator"
	"IBDownloader/internal/model"
)

// HistoricalRequest is one historical-data request against the gateway.
type HistoricalRequest struct {
	Contract   model.Contract
	Duration   calculator.Duration
	BarSize    model.BarSize
	WhatToShow string
	UseRTH     bool
}

// RawBar is a bar as the gateway reports it, extra columns included.
type RawBar struct {
	Time     time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
	Average  decimal.Decimal
	BarCount int
}

// Gateway is a session with the broker gateway.
type Gateway interface {
	Connect(ctx context.Context) error
	HistoricalBars(ctx context.Context, req HistoricalRequest) ([]RawBar, error)
	Close() error
	Name() string
}

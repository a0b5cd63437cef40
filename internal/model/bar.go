package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents a single OHLCV bar returned by the gateway. Time keeps the
// location the gateway reported, the exchange's zone.
type Bar struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

package model

import (
	"sort"

	"github.com/pkg/errors"
)

// BarSize is a bar size in the broker's historical-data vocabulary.
type BarSize string

const (
	BarSize1Min   BarSize = "1 min"
	BarSize5Min   BarSize = "5 mins"
	BarSize15Min  BarSize = "15 mins"
	BarSize30Min  BarSize = "30 mins"
	BarSize1Hour  BarSize = "1 hour"
	BarSize1Day   BarSize = "1 day"
	BarSize1Week  BarSize = "1 week"
	BarSize1Month BarSize = "1 month"
)

// ErrUnknownBarSize is returned for timeframe codes outside the fixed table.
var ErrUnknownBarSize = errors.New("unknown bar size")

var barSizes = map[string]BarSize{
	"1min":  BarSize1Min,
	"5min":  BarSize5Min,
	"15min": BarSize15Min,
	"30min": BarSize30Min,
	"60min": BarSize1Hour,
	"day":   BarSize1Day,
	"week":  BarSize1Week,
	"month": BarSize1Month,
}

// LookupBarSize translates a timeframe code such as "5min" or "day".
func LookupBarSize(code string) (BarSize, error) {
	if bs, ok := barSizes[code]; ok {
		return bs, nil
	}
	return "", errors.Wrapf(ErrUnknownBarSize, "timeframe %q (available: %v)", code, TimeframeCodes())
}

// TimeframeCodes returns the accepted timeframe codes, sorted.
func TimeframeCodes() []string {
	codes := make([]string, 0, len(barSizes))
	for c := range barSizes {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Daily reports whether bars of this size span at least one trading day.
func (b BarSize) Daily() bool {
	switch b {
	case BarSize1Day, BarSize1Week, BarSize1Month:
		return true
	}
	return false
}

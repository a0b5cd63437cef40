package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		token string
		want  Instrument
		c     Contract
	}{
		{
			token: "AAPL",
			want:  DefaultUSDStock{Symbol: "AAPL"},
			c:     Contract{Symbol: "AAPL", SecType: SecTypeStock, Exchange: "SMART", Currency: "USD"},
		},
		{
			token: " SPY ",
			want:  DefaultUSDStock{Symbol: "SPY"},
			c:     Contract{Symbol: "SPY", SecType: SecTypeStock, Exchange: "SMART", Currency: "USD"},
		},
		{
			token: "HM.B-SEK",
			want:  AlternateCurrencyStock{Symbol: "HM.B", Exchange: "SFB", Currency: "SEK"},
			c:     Contract{Symbol: "HM.B", SecType: SecTypeStock, Exchange: "SFB", Currency: "SEK"},
		},
		{
			token: "VOLV.B-sek",
			want:  AlternateCurrencyStock{Symbol: "VOLV.B", Exchange: "SFB", Currency: "SEK"},
			c:     Contract{Symbol: "VOLV.B", SecType: SecTypeStock, Exchange: "SFB", Currency: "SEK"},
		},
		{
			token: "BRK-B",
			want:  DefaultUSDStock{Symbol: "BRK-B"},
			c:     Contract{Symbol: "BRK-B", SecType: SecTypeStock, Exchange: "SMART", Currency: "USD"},
		},
		{
			token: "-SEK",
			want:  DefaultUSDStock{Symbol: "-SEK"},
			c:     Contract{Symbol: "-SEK", SecType: SecTypeStock, Exchange: "SMART", Currency: "USD"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got := ParseSymbol(tt.token)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.c, got.Contract())
		})
	}
}

func TestLookupBarSize(t *testing.T) {
	want := map[string]BarSize{
		"1min":  "1 min",
		"5min":  "5 mins",
		"15min": "15 mins",
		"30min": "30 mins",
		"60min": "1 hour",
		"day":   "1 day",
		"week":  "1 week",
		"month": "1 month",
	}
	for code, bs := range want {
		got, err := LookupBarSize(code)
		require.NoError(t, err, code)
		assert.Equal(t, bs, got, code)
	}
	assert.Len(t, TimeframeCodes(), len(want))

	for _, bad := range []string{"99min", "", "1h", "DAY"} {
		_, err := LookupBarSize(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrUnknownBarSize), bad)
	}
}

func TestBarSize_Daily(t *testing.T) {
	assert.True(t, BarSize1Day.Daily())
	assert.True(t, BarSize1Month.Daily())
	assert.False(t, BarSize1Hour.Daily())
	assert.False(t, BarSize5Min.Daily())
}

func TestContract_Location(t *testing.T) {
	assert.Equal(t, "Europe/Stockholm", ParseSymbol("HM.B-SEK").Contract().Location().String())
	assert.Equal(t, "America/New_York", ParseSymbol("AAPL").Contract().Location().String())
	assert.Equal(t, "America/New_York", Contract{Symbol: "X", Exchange: "NYSE"}.Location().String())
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// SecType is the broker's instrument classification.
type SecType string

const (
	SecTypeStock  SecType = "STK"
	SecTypeCFD    SecType = "CFD"
	SecTypeIndex  SecType = "IND"
	SecTypeFuture SecType = "FUT"
	SecTypeOption SecType = "OPT"
	SecTypeFOP    SecType = "FOP"
	SecTypeForex  SecType = "CASH"
)

const (
	SmartExchange = "SMART"
	USD           = "USD"
)

// Contract describes the instrument sent with a historical-data request.
type Contract struct {
	Symbol   string
	SecType  SecType
	Exchange string
	Currency string
}

func (c Contract) String() string {
	return fmt.Sprintf("%s %s@%s %s", c.SecType, c.Symbol, c.Exchange, c.Currency)
}

// exchangeZones maps non-US exchanges to their time zone.
var exchangeZones = map[string]string{
	"SFB": "Europe/Stockholm",
}

const usZone = "America/New_York"

// Location returns the time zone the contract's exchange trades in. Unknown
// exchanges and SMART use New York.
func (c Contract) Location() *time.Location {
	name, ok := exchangeZones[c.Exchange]
	if !ok {
		name = usZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Instrument is one of DefaultUSDStock or AlternateCurrencyStock.
type Instrument interface {
	Contract() Contract
	isInstrument()
}

// DefaultUSDStock is a plain ticker routed through SMART in USD.
type DefaultUSDStock struct {
	Symbol string
}

func (s DefaultUSDStock) Contract() Contract {
	return Contract{Symbol: s.Symbol, SecType: SecTypeStock, Exchange: SmartExchange, Currency: USD}
}

func (DefaultUSDStock) isInstrument() {}

// AlternateCurrencyStock is a stock listed on a non-US exchange.
type AlternateCurrencyStock struct {
	Symbol   string
	Exchange string
	Currency string
}

func (s AlternateCurrencyStock) Contract() Contract {
	return Contract{Symbol: s.Symbol, SecType: SecTypeStock, Exchange: s.Exchange, Currency: s.Currency}
}

func (AlternateCurrencyStock) isInstrument() {}

// alternateMarkets maps a currency suffix to the exchange it trades on.
var alternateMarkets = map[string]string{
	"SEK": "SFB",
}

// ParseSymbol turns a symbol token into an instrument. "HM.B-SEK" selects
// the Stockholm listing; any other token is a US stock.
func ParseSymbol(token string) Instrument {
	token = strings.TrimSpace(token)
	if i := strings.LastIndex(token, "-"); i > 0 {
		currency := strings.ToUpper(token[i+1:])
		if exchange, ok := alternateMarkets[currency]; ok {
			return AlternateCurrencyStock{Symbol: token[:i], Exchange: exchange, Currency: currency}
		}
	}
	return DefaultUSDStock{Symbol: token}
}

package collector

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"IBDownloader/internal/calculator"
	"IBDownloader/internal/model"
)

const (
	pathAuthStatus = "/iserver/auth/status"
	pathStocks     = "/trsrv/stocks"
	pathHistory    = "/iserver/marketdata/history"
)

// GatewayConfig locates the gateway and tunes the HTTP session.
type GatewayConfig struct {
	Host               string
	Port               int
	ClientID           int // logged only; the REST session has no client id
	BasePath           string
	TLS                bool
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// BaseURL returns the REST root of the gateway.
func (c GatewayConfig) BaseURL() string {
	scheme := "http"
	if c.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, c.Host, c.Port, c.BasePath)
}

// IBGateway implements Gateway against the broker's REST gateway.
type IBGateway struct {
	cfg    GatewayConfig
	client *resty.Client
	log    logrus.FieldLogger
	conids map[string]int64

	warnedBarType bool
}

// NewIBGateway creates a gateway session. Nothing is sent until Connect.
func NewIBGateway(cfg GatewayConfig, log logrus.FieldLogger) *IBGateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL()).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ibdl")
	if cfg.TLS {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify})
	}
	return &IBGateway{
		cfg:    cfg,
		client: client,
		log:    log.WithField("component", "gateway"),
		conids: make(map[string]int64),
	}
}

func (g *IBGateway) Name() string { return "ib-gateway" }

type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	Connected     bool   `json:"connected"`
	Competing     bool   `json:"competing"`
	Message       string `json:"message"`
}

// Connect checks that the gateway is reachable and its brokerage session
// is authenticated.
func (g *IBGateway) Connect(ctx context.Context) error {
	g.log.Infof("connecting %s with id %d", g.cfg.BaseURL(), g.cfg.ClientID)
	var status authStatus
	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&status).
		Post(pathAuthStatus)
	if err != nil {
		return errors.Wrapf(err, "connect %s", g.cfg.BaseURL())
	}
	if resp.IsError() {
		return statusError(resp)
	}
	if !status.Authenticated {
		return errors.Errorf("connect %s: brokerage session not authenticated (connected=%v competing=%v %s)",
			g.cfg.BaseURL(), status.Connected, status.Competing, status.Message)
	}
	return nil
}

type stockListing struct {
	Name      string `json:"name"`
	AssetType string `json:"assetClass"`
	Contracts []struct {
		ConID    int64  `json:"conid"`
		Exchange string `json:"exchange"`
		IsUS     bool   `json:"isUS"`
	} `json:"contracts"`
}

// conid resolves the gateway's contract id for c.
func (g *IBGateway) conid(ctx context.Context, c model.Contract) (int64, error) {
	key := c.Symbol + "@" + c.Exchange
	if id, ok := g.conids[key]; ok {
		return id, nil
	}
	var listings map[string][]stockListing
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", c.Symbol).
		SetResult(&listings).
		Get(pathStocks)
	if err != nil {
		return 0, errors.Wrapf(err, "resolve contract %s", c)
	}
	if resp.IsError() {
		return 0, statusError(resp)
	}
	for _, l := range listings[c.Symbol] {
		for _, ct := range l.Contracts {
			if matchListing(c, ct.Exchange, ct.IsUS) {
				g.conids[key] = ct.ConID
				return ct.ConID, nil
			}
		}
	}
	return 0, errors.Errorf("resolve contract %s: no matching listing", c)
}

func matchListing(c model.Contract, exchange string, isUS bool) bool {
	if c.Exchange == model.SmartExchange {
		return isUS
	}
	return strings.EqualFold(c.Exchange, exchange)
}

type historyBar struct {
	T int64           `json:"t"`
	O decimal.Decimal `json:"o"`
	H decimal.Decimal `json:"h"`
	L decimal.Decimal `json:"l"`
	C decimal.Decimal `json:"c"`
	V decimal.Decimal `json:"v"`
}

type historyResponse struct {
	Symbol     string       `json:"symbol"`
	TimePeriod string       `json:"timePeriod"`
	BarLength  int          `json:"barLength"`
	Points     int          `json:"points"`
	Data       []historyBar `json:"data"`
}

// HistoricalBars requests bars for req.Contract. One round trip, no retry.
func (g *IBGateway) HistoricalBars(ctx context.Context, req HistoricalRequest) ([]RawBar, error) {
	bar, err := restBar(req.BarSize)
	if err != nil {
		return nil, err
	}
	conid, err := g.conid(ctx, req.Contract)
	if err != nil {
		return nil, err
	}
	g.checkBarType(req.WhatToShow)

	var hist historyResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"conid":      strconv.FormatInt(conid, 10),
			"exchange":   req.Contract.Exchange,
			"period":     restPeriod(req.Duration),
			"bar":        bar,
			"outsideRth": strconv.FormatBool(!req.UseRTH),
		}).
		SetResult(&hist).
		Get(pathHistory)
	if err != nil {
		return nil, errors.Wrapf(err, "history %s", req.Contract)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	g.log.WithFields(logrus.Fields{
		"symbol": req.Contract.Symbol,
		"period": hist.TimePeriod,
		"points": len(hist.Data),
	}).Debug("history received")

	loc := req.Contract.Location()
	bars := make([]RawBar, len(hist.Data))
	for i, b := range hist.Data {
		bars[i] = RawBar{
			Time:   time.UnixMilli(b.T).In(loc),
			Open:   b.O,
			High:   b.H,
			Low:    b.L,
			Close:  b.C,
			Volume: b.V,
		}
	}
	return bars, nil
}

// Close releases idle connections of the session.
func (g *IBGateway) Close() error {
	g.client.GetClient().CloseIdleConnections()
	return nil
}

var restBars = map[model.BarSize]string{
	model.BarSize1Min:   "1min",
	model.BarSize5Min:   "5min",
	model.BarSize15Min:  "15min",
	model.BarSize30Min:  "30min",
	model.BarSize1Hour:  "1h",
	model.BarSize1Day:   "1d",
	model.BarSize1Week:  "1w",
	model.BarSize1Month: "1m",
}

func restBar(bs model.BarSize) (string, error) {
	if b, ok := restBars[bs]; ok {
		return b, nil
	}
	return "", errors.Wrapf(model.ErrUnknownBarSize, "%q", bs)
}

// Largest counts the history endpoint accepts per period unit.
const (
	maxPeriodMinutes = 30
	maxPeriodHours   = 8
	maxPeriodYears   = 15
)

// restPeriod renders d in the REST period grammar. Counts the endpoint
// would reject round up into the next larger unit; years are capped.
func restPeriod(d calculator.Duration) string {
	n, unit := d.N, d.Unit
	if n < 1 {
		n = 1
	}
	if unit == calculator.Seconds {
		n, unit = ceilDiv(n, 60), calculator.Minutes
	}
	if unit == calculator.Minutes && n > maxPeriodMinutes {
		n, unit = ceilDiv(n, 60), calculator.Hours
	}
	if unit == calculator.Hours && n > maxPeriodHours {
		n, unit = ceilDiv(n, 24), calculator.Days
	}
	if unit == calculator.Years && n > maxPeriodYears {
		n = maxPeriodYears
	}

	switch unit {
	case calculator.Years:
		return fmt.Sprintf("%dy", n)
	case calculator.Months:
		return fmt.Sprintf("%dm", n)
	case calculator.Days:
		return fmt.Sprintf("%dd", n)
	case calculator.Hours:
		return fmt.Sprintf("%dh", n)
	default:
		return fmt.Sprintf("%dmin", n)
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// checkBarType warns once per session when a bar type other than trades is
// asked for. The history endpoint has no bar type parameter.
func (g *IBGateway) checkBarType(whatToShow string) {
	if g.warnedBarType || whatToShow == "" || strings.EqualFold(whatToShow, "TRADES") {
		return
	}
	g.warnedBarType = true
	g.log.Warnf("what_to_show %s has no effect, the history endpoint picks the bar type", whatToShow)
}

func statusError(resp *resty.Response) error {
	return errors.Errorf("%s %s: status %d, body: %s",
		resp.Request.Method, resp.Request.URL, resp.StatusCode(), strings.TrimSpace(resp.String()))
}

var _ Gateway = (*IBGateway)(nil)
var _ Gateway = (*MockGateway)(nil)

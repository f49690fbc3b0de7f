package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // exchange timezones must resolve on minimal images

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"finboard/internal/logger"
	"finboard/internal/metrics"
)

const (
	yahooBaseURL   = "https://query2.finance.yahoo.com"
	yahooCookieURL = "https://fc.yahoo.com"

	quoteSummaryPath = "/v10/finance/quoteSummary/{symbol}"
	chartPath        = "/v8/finance/chart/{symbol}"

	// dividendRange must cover the trailing twelve months with margin.
	dividendRange = "2y"
)

// summaryModules are flattened in this order; the first module carrying a
// key wins.
var summaryModules = []string{
	"financialData",
	"price",
	"summaryDetail",
	"defaultKeyStatistics",
	"assetProfile",
}

// YahooOptions configures the Yahoo Finance client.
type YahooOptions struct {
	BaseURL         string
	CookieURL       string
	Timeout         time.Duration
	RateLimit       float64 // requests per second
	Burst           int
	MaxRetries      int
	RetryInterval   time.Duration // initial backoff interval
	BreakerFailures int
	BreakerCooldown time.Duration
	UserAgents      []string
}

func (o *YahooOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = yahooBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 2
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 300 * time.Millisecond
	}
	if o.BreakerFailures <= 0 {
		o.BreakerFailures = 5
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 30 * time.Second
	}
}

// Yahoo fetches snapshots, dividends and history from Yahoo Finance.
// It is safe for concurrent use.
type Yahoo struct {
	opts    YahooOptions
	client  *resty.Client
	session *session
	agents  *userAgents
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

var _ Provider = (*Yahoo)(nil)

// NewYahoo creates a Yahoo Finance provider. m may be nil.
func NewYahoo(opts YahooOptions, m *metrics.Metrics) (*Yahoo, error) {
	opts.defaults()

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json")

	agents := newUserAgents(opts.UserAgents)
	log := logger.Named("yahoo")

	y := &Yahoo{
		opts:    opts,
		client:  client,
		session: &session{client: client, cookieURL: opts.CookieURL, agents: agents},
		agents:  agents,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		metrics: m,
		log:     log,
	}

	failures := uint32(opts.BreakerFailures)
	y.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "yahoo",
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Neither a missing symbol nor a caller giving up is an
			// upstream outage.
			return err == nil || errors.Is(err, ErrSymbolNotFound) || errors.Is(err, ErrNoData) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return y, nil
}

// Name returns the provider's display name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// call describes one upstream request.
type call struct {
	endpoint string // metrics label
	path     string
	symbol   string
	query    map[string]string
	crumb    bool
}

// do runs c through the breaker, retrying transient failures, and decodes
// the JSON body into out.
func (y *Yahoo) do(ctx context.Context, c call, out any) error {
	start := time.Now()

	_, err := y.breaker.Execute(func() (interface{}, error) {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = y.opts.RetryInterval
		b.MaxInterval = 5 * time.Second

		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, y.attempt(ctx, c, out)
		}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(y.opts.MaxRetries+1)))
		return nil, err
	})

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrSymbolNotFound):
		outcome = "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "breaker_open"
	default:
		outcome = "error"
	}
	y.metrics.ObserveUpstream(c.endpoint, outcome, time.Since(start).Seconds())

	return err
}

// attempt performs a single HTTP exchange. Errors wrapped with
// backoff.Permanent are not retried.
func (y *Yahoo) attempt(ctx context.Context, c call, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
	}

	req := y.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", y.agents.next()).
		SetPathParam("symbol", c.symbol).
		SetQueryParams(c.query)

	if c.crumb {
		crumb, err := y.session.get(ctx)
		if err != nil {
			return err
		}
		req.SetQueryParam("crumb", crumb)
	}

	resp, err := req.Get(c.path)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("yahoo %s %s: %w", c.endpoint, c.symbol, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
	case code == http.StatusNotFound:
		return backoff.Permanent(fmt.Errorf("yahoo %s %s: %w", c.endpoint, c.symbol, ErrSymbolNotFound))
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		y.session.invalidate()
		return fmt.Errorf("yahoo %s %s: session rejected with status %d", c.endpoint, c.symbol, code)
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return fmt.Errorf("yahoo %s %s: status %d", c.endpoint, c.symbol, code)
	default:
		return backoff.Permanent(fmt.Errorf("yahoo %s %s: unexpected status %d", c.endpoint, c.symbol, code))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding yahoo %s response for %s: %w", c.endpoint, c.symbol, err))
	}
	return nil
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) err(symbol string) error {
	if e == nil {
		return nil
	}
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}
	return fmt.Errorf("%s: yahoo error %s: %s", symbol, e.Code, e.Description)
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yahooError                  `json:"error"`
	} `json:"quoteSummary"`
}

// Info fetches the quoteSummary modules for symbol and flattens them into a
// single map, unwrapping Yahoo's {raw, fmt} number objects.
func (y *Yahoo) Info(ctx context.Context, symbol string) (Info, error) {
	var resp quoteSummaryResponse
	err := y.do(ctx, call{
		endpoint: "quote_summary",
		path:     quoteSummaryPath,
		symbol:   symbol,
		query:    map[string]string{"modules": strings.Join(summaryModules, ",")},
		crumb:    true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.QuoteSummary.Error.err(symbol); err != nil {
		return nil, err
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	info := flattenSummary(resp.QuoteSummary.Result[0])
	if len(info) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	return info, nil
}

func flattenSummary(result map[string]json.RawMessage) Info {
	info := Info{}
	for _, module := range summaryModules {
		raw, ok := result[module]
		if !ok {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		for key, value := range fields {
			if _, taken := info[key]; taken || key == "maxAge" {
				continue
			}
			v, ok := unwrapValue(value)
			if !ok {
				continue
			}
			// The price module reports this change as a fraction; expose percent.
			if module == "price" && key == "regularMarketChangePercent" {
				if f, isNum := v.(float64); isNum {
					v = f * 100
				}
			}
			info[key] = v
		}
	}
	return info
}

// unwrapValue keeps scalars and the raw part of {raw, fmt} objects. Empty
// objects, nulls and nested structures are dropped.
func unwrapValue(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		raw, ok := v["raw"]
		if !ok || raw == nil {
			return nil, false
		}
		return raw, true
	case []any:
		return nil, false
	case string:
		if v == "" {
			return nil, false
		}
		return v, true
	default:
		return v, true
	}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		Currency             string `json:"currency"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp []int64 `json:"timestamp"`
	Events    struct {
		Dividends map[string]struct {
			Amount decimal.Decimal `json:"amount"`
			Date   int64           `json:"date"`
		} `json:"dividends"`
	} `json:"events"`
	Indicators struct {
		Quote []struct {
			Close []*decimal.Decimal `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (r *chartResult) location() *time.Location {
	if r.Meta.ExchangeTimezoneName == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Meta.ExchangeTimezoneName)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (y *Yahoo) chart(ctx context.Context, endpoint, symbol string, query map[string]string) (*chartResult, error) {
	var resp chartResponse
	if err := y.do(ctx, call{
		endpoint: endpoint,
		path:     chartPath,
		symbol:   symbol,
		query:    query,
	}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Chart.Error.err(symbol); err != nil {
		return nil, err
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	return &resp.Chart.Result[0], nil
}

// Dividends fetches recent dividend events for symbol. An instrument that
// never paid dividends yields an empty series, not an error.
func (y *Yahoo) Dividends(ctx context.Context, symbol string) (DividendSeries, error) {
	result, err := y.chart(ctx, "dividends", symbol, map[string]string{
		"range":    dividendRange,
		"interval": "1d",
		"events":   "div",
	})
	if err != nil {
		return DividendSeries{}, err
	}

	loc := result.location()
	series := DividendSeries{Location: loc}
	for _, d := range result.Events.Dividends {
		series.Payments = append(series.Payments, Dividend{
			Date:   time.Unix(d.Date, 0).In(loc),
			Amount: d.Amount,
		})
	}
	sort.Slice(series.Payments, func(i, j int) bool {
		return series.Payments[i].Date.Before(series.Payments[j].Date)
	})
	return series, nil
}

// History fetches closing prices for symbol. Intervals with no close are skipped.
func (y *Yahoo) History(ctx context.Context, symbol, period, interval string) (Series, error) {
	result, err := y.chart(ctx, "history", symbol, map[string]string{
		"range":          period,
		"interval":       interval,
		"includePrePost": "false",
	})
	if err != nil {
		return Series{}, err
	}

	loc := result.location()
	series := Series{Location: loc}
	if len(result.Indicators.Quote) == 0 {
		return series, nil
	}
	closes := result.Indicators.Quote[0].Close
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series.Bars = append(series.Bars, Bar{
			Time:  time.Unix(ts, 0).In(loc),
			Close: *closes[i],
		})
	}
	return series, nil
}

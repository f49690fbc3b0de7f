package market

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"finboard/internal/cache"
	"finboard/internal/logger"
	"finboard/internal/metrics"
	"finboard/internal/provider"
)

// Cache lifetimes. Failures are cached too, so a mistyped ticker does not
// hit the upstream on every request.
const (
	QuoteTTL          = 300 * time.Second
	QuoteFailureTTL   = 60 * time.Second
	HistoryTTL        = 600 * time.Second
	HistoryFailureTTL = 60 * time.Second
)

// fetchTimeout bounds a shared upstream lookup once it is detached from the
// request that started it.
const fetchTimeout = time.Minute

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for the dividend window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records cache hits and misses on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service resolves tickers and serves quotes and histories through the
// result cache.
type Service struct {
	provider provider.Provider
	cache    cache.Store
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
	group    singleflight.Group
}

// NewService creates a market data service over p, caching results in c.
func NewService(p provider.Provider, c cache.Store, opts ...Option) *Service {
	s := &Service{
		provider: p,
		cache:    c,
		now:      time.Now,
		log:      logger.Named("market"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func quoteKey(symbol string) string { return "quote:" + symbol }

func historyKey(symbol, period, interval string) string {
	return "history:" + symbol + ":" + period + ":" + interval
}

// Quote looks up raw, retrying once with the B3 suffix when the bare ticker
// has no data. It never fails; check Valid on the result.
func (s *Service) Quote(ctx context.Context, raw string) Quote {
	c := Resolve(raw)
	if c.Primary == "" {
		return Invalid("")
	}

	q := s.cachedQuote(ctx, c.Primary)
	if q.Valid || c.Fallback == "" {
		return q
	}
	return s.cachedQuote(ctx, c.Fallback)
}

func (s *Service) cachedQuote(ctx context.Context, symbol string) Quote {
	key := quoteKey(symbol)

	q, ok, err := cache.GetJSON[Quote](ctx, s.cache, key)
	if err != nil {
		s.log.Warnw("quote cache read failed", "key", key, "error", err)
	}
	s.metrics.CacheLookup("quote", ok)
	if ok {
		return q
	}

	// The lookup is shared with concurrent callers, so it must not die with
	// the request that happened to start it.
	v, _, _ := s.group.Do(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		q, err := s.fetchQuote(fctx, symbol)
		if aborted(fctx, err) {
			return q, nil
		}
		ttl := QuoteFailureTTL
		if q.Valid {
			ttl = QuoteTTL
		}
		if err := cache.SetJSON(fctx, s.cache, key, q, ttl); err != nil {
			s.log.Warnw("quote cache write failed", "key", key, "error", err)
		}
		return q, nil
	})
	return v.(Quote)
}

// FetchQuote performs one uncached lookup of symbol and corrects its
// dividend yield. Upstream errors are logged and yield an invalid quote.
func (s *Service) FetchQuote(ctx context.Context, symbol string) Quote {
	q, _ := s.fetchQuote(ctx, symbol)
	return q
}

// fetchQuote also returns the first upstream error it absorbed.
func (s *Service) fetchQuote(ctx context.Context, symbol string) (Quote, error) {
	info, err := s.provider.Info(ctx, symbol)
	if err != nil {
		s.log.Infow("quote lookup failed", "symbol", symbol, "provider", s.provider.Name(), "error", err)
		return Invalid(symbol), err
	}

	q, providerYield, ok := normalizeInfo(symbol, info)
	if !ok {
		s.log.Infow("quote has no price", "symbol", symbol)
		return q, nil
	}

	series, err := s.provider.Dividends(ctx, symbol)
	if err != nil {
		s.log.Warnw("dividend history unavailable, using provider yield", "symbol", symbol, "error", err)
		series = provider.DividendSeries{}
	}
	q.DividendYield, q.DividendYieldSource = CorrectYield(series, q.Price, providerYield, s.now())

	return q, err
}

// aborted reports whether a lookup ended because its context did, in which
// case the result says nothing about the symbol and is not cached.
func aborted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type historyEntry struct {
	Found  bool           `json:"found"`
	Points []HistoryPoint `json:"points,omitempty"`
}

// History returns the closes of raw over period. interval may be empty, in
// which case it is derived from period. The B3 suffix fallback applies as
// for quotes. ok is false when no data is available.
func (s *Service) History(ctx context.Context, raw, period, interval string) (History, bool) {
	if interval == "" {
		interval = IntervalFor(period)
	}
	c := Resolve(raw)
	if c.Primary == "" {
		return History{}, false
	}

	h := History{Ticker: c.Primary, Period: period, Interval: interval}
	points, ok := s.cachedHistory(ctx, c.Primary, period, interval)
	if !ok && c.Fallback != "" {
		h.Ticker = c.Fallback
		points, ok = s.cachedHistory(ctx, c.Fallback, period, interval)
	}
	if !ok {
		return History{}, false
	}
	h.Points = points
	return h, true
}

func (s *Service) cachedHistory(ctx context.Context, symbol, period, interval string) ([]HistoryPoint, bool) {
	key := historyKey(symbol, period, interval)

	entry, ok, err := cache.GetJSON[historyEntry](ctx, s.cache, key)
	if err != nil {
		s.log.Warnw("history cache read failed", "key", key, "error", err)
	}
	s.metrics.CacheLookup("history", ok)
	if ok {
		return entry.Points, entry.Found
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		points, found, err := s.fetchHistory(fctx, symbol, period, interval)
		entry := historyEntry{Found: found, Points: points}
		if aborted(fctx, err) {
			return entry, nil
		}
		ttl := HistoryFailureTTL
		if found {
			ttl = HistoryTTL
		}
		if err := cache.SetJSON(fctx, s.cache, key, entry, ttl); err != nil {
			s.log.Warnw("history cache write failed", "key", key, "error", err)
		}
		return entry, nil
	})
	entry = v.(historyEntry)
	return entry.Points, entry.Found
}

// FetchHistory performs one uncached history lookup. An empty series and an
// upstream error both report ok == false.
func (s *Service) FetchHistory(ctx context.Context, symbol, period, interval string) ([]HistoryPoint, bool) {
	points, found, _ := s.fetchHistory(ctx, symbol, period, interval)
	return points, found
}

func (s *Service) fetchHistory(ctx context.Context, symbol, period, interval string) ([]HistoryPoint, bool, error) {
	series, err := s.provider.History(ctx, symbol, period, interval)
	if err != nil {
		s.log.Infow("history lookup failed", "symbol", symbol, "period", period, "interval", interval, "error", err)
		return nil, false, err
	}
	if len(series.Bars) == 0 {
		return nil, false, nil
	}
	return pointsFromSeries(series, interval), true, nil
}

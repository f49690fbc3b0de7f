package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"finboard/internal/market"
	"finboard/internal/search"
)

// fakeMarket serves fixed quotes and histories keyed by normalized ticker.
type fakeMarket struct {
	mu        sync.Mutex
	quotes    map[string]market.Quote
	histories map[string]market.History
	calls     map[string]int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		quotes:    map[string]market.Quote{},
		histories: map[string]market.History{},
		calls:     map[string]int{},
	}
}

func (f *fakeMarket) withQuote(ticker, name, price, yield string) *fakeMarket {
	f.quotes[ticker] = market.Quote{
		Ticker:        ticker,
		Valid:         true,
		Name:          name,
		Currency:      "BRL",
		Price:         decimal.RequireFromString(price),
		DividendYield: decimal.RequireFromString(yield),
	}
	return f
}

func (f *fakeMarket) Quote(_ context.Context, ticker string) market.Quote {
	ticker = market.NormalizeTicker(ticker)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	if q, ok := f.quotes[ticker]; ok {
		return q
	}
	return market.Invalid(ticker)
}

func (f *fakeMarket) History(_ context.Context, ticker, period, interval string) (market.History, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.histories[market.NormalizeTicker(ticker)+":"+period]
	if !ok {
		return market.History{}, false
	}
	if interval == "" {
		interval = market.IntervalFor(period)
	}
	h.Period, h.Interval = period, interval
	return h, true
}

// fakeIndex records added entries.
type fakeIndex struct {
	mu      sync.Mutex
	entries []search.Entry
}

func (f *fakeIndex) Add(entries ...search.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeIndex) Suggest(q string, limit int) []search.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []search.Entry{}
	for _, e := range f.entries {
		if len(out) < limit && len(q) <= len(e.Ticker) && e.Ticker[:len(q)] == q {
			out = append(out, e)
		}
	}
	return out
}

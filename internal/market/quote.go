package market

import (
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/provider"
)

// YieldSource records where a quote's dividend yield came from.
type YieldSource string

const (
	YieldTTM      YieldSource = "ttm"
	YieldProvider YieldSource = "provider"
	YieldNone     YieldSource = "none"
)

const notAvailable = "N/A"

// Quote is the canonical snapshot of one instrument. When Valid is false only
// Ticker is meaningful.
type Quote struct {
	Ticker string `json:"ticker"`
	Valid  bool   `json:"valid"`

	Name        string `json:"name,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`

	Price               decimal.Decimal  `json:"price"`
	ChangePct           *decimal.Decimal `json:"change_pct,omitempty"`
	DividendYield       decimal.Decimal  `json:"dividend_yield"`
	DividendYieldSource YieldSource      `json:"dividend_yield_source,omitempty"`

	PERatio          *decimal.Decimal `json:"pe_ratio,omitempty"`
	PriceToBook      *decimal.Decimal `json:"price_to_book,omitempty"`
	EPS              *decimal.Decimal `json:"eps,omitempty"`
	BookValue        *decimal.Decimal `json:"book_value,omitempty"`
	FiftyTwoWeekHigh *decimal.Decimal `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *decimal.Decimal `json:"fifty_two_week_low,omitempty"`
	MarketCap        *decimal.Decimal `json:"market_cap_raw,omitempty"`
	AverageVolume    *decimal.Decimal `json:"average_volume_raw,omitempty"`
}

// Invalid returns the "no usable data" quote for ticker.
func Invalid(ticker string) Quote {
	return Quote{Ticker: ticker}
}

// normalizeInfo maps a provider snapshot onto a Quote. The dividend yield is
// the provider-reported one; correction happens afterwards. ok is false when
// no price field is present.
func normalizeInfo(ticker string, info provider.Info) (q Quote, providerYield *decimal.Decimal, ok bool) {
	if len(info) == 0 {
		return Invalid(ticker), nil, false
	}
	price, ok := firstNumber(info, priceKeys...)
	if !ok {
		return Invalid(ticker), nil, false
	}

	defaultCurrency := "USD"
	if strings.HasSuffix(ticker, LocalSuffix) {
		defaultCurrency = "BRL"
	}

	q = Quote{
		Ticker:      ticker,
		Valid:       true,
		Name:        stringOr(info, ticker, nameKeys...),
		Currency:    stringOr(info, defaultCurrency, currencyKeys...),
		Sector:      stringOr(info, notAvailable, sectorKeys...),
		Industry:    stringOr(info, notAvailable, industryKeys...),
		Description: stringOr(info, "", descriptionKeys...),

		Price:     price,
		ChangePct: optionalNumber(info, changePctKeys...),

		PERatio:          optionalNumber(info, peKeys...),
		PriceToBook:      optionalNumber(info, priceToBookKeys...),
		EPS:              optionalNumber(info, epsKeys...),
		BookValue:        optionalNumber(info, bookValueKeys...),
		FiftyTwoWeekHigh: optionalNumber(info, weekHighKeys...),
		FiftyTwoWeekLow:  optionalNumber(info, weekLowKeys...),
		MarketCap:        optionalNumber(info, marketCapKeys...),
		AverageVolume:    optionalNumber(info, averageVolumeKeys...),
	}

	return q, optionalNumber(info, yieldKeys...), true
}

// QuoteView is a Quote with presentation fields filled in.
type QuoteView struct {
	Quote
	DividendYieldPercent decimal.Decimal `json:"dividend_yield_percent"`
	MarketCapDisplay     string          `json:"market_cap,omitempty"`
	AverageVolumeDisplay string          `json:"average_volume,omitempty"`
}

// View formats the raw magnitudes of q for display.
func (q Quote) View() QuoteView {
	v := QuoteView{
		Quote:                q,
		DividendYieldPercent: q.DividendYield.Mul(decimal.NewFromInt(100)),
	}
	if q.MarketCap != nil {
		v.MarketCapDisplay = FormatMagnitude(*q.MarketCap, CurrencyPrefix(q.Currency))
	}
	if q.AverageVolume != nil {
		v.AverageVolumeDisplay = FormatMagnitude(*q.AverageVolume, "")
	}
	return v
}

package market

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/provider"
)

// ttmDays is the trailing window used to sum dividend payments.
const ttmDays = 365

// TrailingDividends sums the payments dated within ttmDays before now, with
// now taken in the series' own timezone. The window start is inclusive.
func TrailingDividends(series provider.DividendSeries, now time.Time) decimal.Decimal {
	loc := series.Location
	if loc == nil {
		loc = time.UTC
	}
	cutoff := now.In(loc).AddDate(0, 0, -ttmDays)

	total := decimal.Zero
	for _, p := range series.Payments {
		if !p.Date.Before(cutoff) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// CorrectYield returns the dividend yield to report for a quote. A positive
// trailing-twelve-month sum divided by price wins over whatever the provider
// reports; otherwise the provider's yield is used, and zero when that is
// missing too.
func CorrectYield(series provider.DividendSeries, price decimal.Decimal, providerYield *decimal.Decimal, now time.Time) (decimal.Decimal, YieldSource) {
	if price.IsPositive() {
		if ttm := TrailingDividends(series, now); ttm.IsPositive() {
			return ttm.Div(price), YieldTTM
		}
	}
	if providerYield != nil && !providerYield.IsNegative() {
		return *providerYield, YieldProvider
	}
	return decimal.Zero, YieldNone
}

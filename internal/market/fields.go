package market

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/provider"
)

// Accepted upstream keys per field, in order of preference.
var (
	priceKeys         = []string{"currentPrice", "regularMarketPrice"}
	nameKeys          = []string{"longName", "shortName"}
	currencyKeys      = []string{"currency"}
	changePctKeys     = []string{"regularMarketChangePercent"}
	yieldKeys         = []string{"dividendYield", "trailingAnnualDividendYield"}
	descriptionKeys   = []string{"longBusinessSummary", "description"}
	peKeys            = []string{"trailingPE", "forwardPE"}
	priceToBookKeys   = []string{"priceToBook"}
	epsKeys           = []string{"trailingEps"}
	bookValueKeys     = []string{"bookValue"}
	marketCapKeys     = []string{"marketCap"}
	weekHighKeys      = []string{"fiftyTwoWeekHigh"}
	weekLowKeys       = []string{"fiftyTwoWeekLow"}
	averageVolumeKeys = []string{"averageVolume", "regularMarketVolume"}
	sectorKeys        = []string{"sector"}
	industryKeys      = []string{"industry"}
)

// firstNumber returns the first key holding a usable number.
func firstNumber(info provider.Info, keys ...string) (decimal.Decimal, bool) {
	for _, k := range keys {
		if d, ok := toDecimal(info[k]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func optionalNumber(info provider.Info, keys ...string) *decimal.Decimal {
	d, ok := firstNumber(info, keys...)
	if !ok {
		return nil
	}
	return &d
}

// firstString returns the first key holding a non-blank string.
func firstString(info provider.Info, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := info[k].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func stringOr(info provider.Info, fallback string, keys ...string) string {
	if s, ok := firstString(info, keys...); ok {
		return s
	}
	return fallback
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		return toDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

package market

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	billion = decimal.NewFromInt(1_000_000_000)
	million = decimal.NewFromInt(1_000_000)
)

// FormatMagnitude renders v with two decimals, scaled to billions ("B") or
// millions ("M") when large enough, e.g. "R$ 1.23 B".
func FormatMagnitude(v decimal.Decimal, prefix string) string {
	switch {
	case v.GreaterThanOrEqual(billion):
		return prefix + v.Div(billion).StringFixed(2) + " B"
	case v.GreaterThanOrEqual(million):
		return prefix + v.Div(million).StringFixed(2) + " M"
	default:
		return prefix + v.StringFixed(2)
	}
}

// CurrencyPrefix returns the currency's symbol followed by a space, or the
// ISO code itself for currencies go-money does not know.
func CurrencyPrefix(code string) string {
	if code == "" {
		return ""
	}
	if c := money.New(0, code).Currency(); c.Grapheme != "" {
		return c.Grapheme + " "
	}
	return code + " "
}

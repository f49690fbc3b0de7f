package market

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/provider"
)

func TestNormalizeInfo(t *testing.T) {
	t.Run("missing_price_is_invalid", func(t *testing.T) {
		q, _, ok := normalizeInfo("AAPL", provider.Info{"longName": "Apple Inc.", "dividendYield": 0.01})
		assert.False(t, ok)
		assert.False(t, q.Valid)
		assert.Equal(t, "AAPL", q.Ticker)
	})

	t.Run("empty_payload_is_invalid", func(t *testing.T) {
		q, _, ok := normalizeInfo("AAPL", provider.Info{})
		assert.False(t, ok)
		assert.False(t, q.Valid)
	})

	t.Run("current_price_only_is_valid", func(t *testing.T) {
		q, yield, ok := normalizeInfo("AAPL", provider.Info{"currentPrice": 187.5})
		require.True(t, ok)
		assert.True(t, q.Valid)
		assert.True(t, q.Price.Equal(decimal.RequireFromString("187.5")))
		assert.Nil(t, yield)
		assert.Equal(t, "AAPL", q.Name)
		assert.Equal(t, "USD", q.Currency)
		assert.Equal(t, "N/A", q.Sector)
		assert.Equal(t, "N/A", q.Industry)
	})

	t.Run("synonym_fields", func(t *testing.T) {
		q, yield, ok := normalizeInfo("PETR4.SA", provider.Info{
			"regularMarketPrice":          38.12,
			"shortName":                   "PETROBRAS PN",
			"trailingAnnualDividendYield": 0.14,
			"forwardPE":                   4.2,
		})
		require.True(t, ok)
		assert.True(t, q.Price.Equal(decimal.RequireFromString("38.12")))
		assert.Equal(t, "PETROBRAS PN", q.Name)
		assert.Equal(t, "BRL", q.Currency)
		require.NotNil(t, yield)
		assert.True(t, yield.Equal(decimal.RequireFromString("0.14")))
		require.NotNil(t, q.PERatio)
		assert.True(t, q.PERatio.Equal(decimal.RequireFromString("4.2")))
	})

	t.Run("preferred_synonym_wins", func(t *testing.T) {
		q, _, ok := normalizeInfo("AAPL", provider.Info{
			"currentPrice":       10.0,
			"regularMarketPrice": 11.0,
			"longName":           "Long",
			"shortName":          "Short",
		})
		require.True(t, ok)
		assert.True(t, q.Price.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "Long", q.Name)
	})

	t.Run("blank_name_falls_through", func(t *testing.T) {
		q, _, _ := normalizeInfo("AAPL", provider.Info{"currentPrice": 1.0, "longName": "  ", "shortName": "Apple"})
		assert.Equal(t, "Apple", q.Name)
	})

	t.Run("non_finite_price_is_ignored", func(t *testing.T) {
		_, _, ok := normalizeInfo("AAPL", provider.Info{"currentPrice": math.NaN()})
		assert.False(t, ok)
	})

	t.Run("json_numbers_and_strings", func(t *testing.T) {
		q, _, ok := normalizeInfo("AAPL", provider.Info{"currentPrice": json.Number("12.5"), "marketCap": "3000000000"})
		require.True(t, ok)
		assert.True(t, q.Price.Equal(decimal.RequireFromString("12.5")))
		require.NotNil(t, q.MarketCap)
		assert.True(t, q.MarketCap.Equal(decimal.NewFromInt(3_000_000_000)))
	})
}

func TestQuoteView(t *testing.T) {
	mc := decimal.NewFromInt(2_500_000_000)
	vol := decimal.NewFromInt(12_345_678)
	q := Quote{
		Ticker:        "PETR4.SA",
		Valid:         true,
		Currency:      "BRL",
		Price:         decimal.NewFromInt(38),
		DividendYield: decimal.RequireFromString("0.125"),
		MarketCap:     &mc,
		AverageVolume: &vol,
	}

	v := q.View()
	assert.True(t, v.DividendYieldPercent.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "R$ 2.50 B", v.MarketCapDisplay)
	assert.Equal(t, "12.35 M", v.AverageVolumeDisplay)
}

func TestFormatMagnitude(t *testing.T) {
	assert.Equal(t, "$ 1.00 B", FormatMagnitude(decimal.NewFromInt(1_000_000_000), "$ "))
	assert.Equal(t, "999.99", FormatMagnitude(decimal.RequireFromString("999.99"), ""))
	assert.Equal(t, "1.50 M", FormatMagnitude(decimal.NewFromInt(1_500_000), ""))
}

func TestCurrencyPrefix(t *testing.T) {
	assert.Equal(t, "R$ ", CurrencyPrefix("BRL"))
	assert.Equal(t, "$ ", CurrencyPrefix("USD"))
	assert.Equal(t, "", CurrencyPrefix(""))
}

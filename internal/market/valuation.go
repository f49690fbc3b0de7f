package market

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// QuoteSource looks up quotes by user-entered ticker.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) Quote
}

// Holding is one portfolio line to value.
type Holding struct {
	Ticker   string
	Quantity decimal.Decimal
}

// Position is a valued holding.
type Position struct {
	Ticker        string          `json:"ticker"`
	Name          string          `json:"name"`
	Currency      string          `json:"currency"`
	Quantity      decimal.Decimal `json:"quantity"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	TotalValue    decimal.Decimal `json:"total_value"`
	DividendYield decimal.Decimal `json:"dividend_yield"`
	DYPercent     decimal.Decimal `json:"dy_percent"`
	AnnualIncome  decimal.Decimal `json:"annual_income"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

// Valuation summarizes a portfolio. Holdings without a valid quote are left
// out of every total and listed in Skipped.
type Valuation struct {
	WithDividends    []Position      `json:"items_with_dividends"`
	WithoutDividends []Position      `json:"items_without_dividends"`
	Skipped          []string        `json:"skipped"`
	HasItems         bool            `json:"has_items"`
	TotalValue       decimal.Decimal `json:"total_value"`
	IncomeAnnual     decimal.Decimal `json:"income_annual"`
	IncomeSemiannual decimal.Decimal `json:"income_semiannual"`
	IncomeQuarterly  decimal.Decimal `json:"income_quarterly"`
	IncomeMonthly    decimal.Decimal `json:"income_monthly"`
}

var (
	two     = decimal.NewFromInt(2)
	four    = decimal.NewFromInt(4)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Valuate prices every holding through src, at most concurrency lookups at a
// time, and aggregates value and projected dividend income. Output order
// follows the input order.
func Valuate(ctx context.Context, holdings []Holding, src QuoteSource, concurrency int) Valuation {
	if concurrency < 1 {
		concurrency = 1
	}

	quotes := make([]Quote, len(holdings))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, h := range holdings {
		g.Go(func() error {
			quotes[i] = src.Quote(ctx, h.Ticker)
			return nil
		})
	}
	_ = g.Wait()

	v := Valuation{
		WithDividends:    []Position{},
		WithoutDividends: []Position{},
		Skipped:          []string{},
	}
	annual := decimal.Zero
	for i, h := range holdings {
		q := quotes[i]
		if !q.Valid {
			v.Skipped = append(v.Skipped, h.Ticker)
			continue
		}

		value := h.Quantity.Mul(q.Price)
		income := value.Mul(q.DividendYield)
		p := Position{
			Ticker:        h.Ticker,
			Name:          q.Name,
			Currency:      q.Currency,
			Quantity:      h.Quantity,
			CurrentPrice:  q.Price,
			TotalValue:    value,
			DividendYield: q.DividendYield,
			DYPercent:     q.DividendYield.Mul(hundred),
			AnnualIncome:  income,
			MonthlyIncome: income.Div(twelve),
		}

		v.TotalValue = v.TotalValue.Add(value)
		annual = annual.Add(income)

		if q.DividendYield.IsPositive() {
			v.WithDividends = append(v.WithDividends, p)
		} else {
			v.WithoutDividends = append(v.WithoutDividends, p)
		}
	}

	v.HasItems = len(v.WithDividends)+len(v.WithoutDividends) > 0
	v.IncomeAnnual = annual
	v.IncomeSemiannual = annual.Div(two)
	v.IncomeQuarterly = annual.Div(four)
	v.IncomeMonthly = annual.Div(twelve)
	return v
}

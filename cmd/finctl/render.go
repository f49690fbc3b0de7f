package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/market"
)

func orDash(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func quotesMarkdown(views []market.QuoteView, missing []string) string {
	var b strings.Builder
	b.WriteString("| Ticker | Name | Price | Change % | DY % | P/E | Market cap |\n")
	b.WriteString("|:---|:---|---:|---:|---:|---:|---:|\n")
	for _, v := range views {
		marketCap := v.MarketCapDisplay
		if marketCap == "" {
			marketCap = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s%s | %s | %s | %s | %s |\n",
			v.Ticker, v.Name, market.CurrencyPrefix(v.Currency), v.Price.StringFixed(2),
			orDash(v.ChangePct), v.DividendYieldPercent.StringFixed(2), orDash(v.PERatio), marketCap)
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "\nNo quote for: %s\n", strings.Join(missing, ", "))
	}
	return b.String()
}

func historyMarkdown(h market.History) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s, %s (%s)\n\n", h.Ticker, h.Period, h.Interval)
	if len(h.Points) == 0 {
		b.WriteString("No data.\n")
		return b.String()
	}

	first, last := h.Points[0].Close, h.Points[len(h.Points)-1].Close
	low, high := first, first
	for _, p := range h.Points {
		low = decimal.Min(low, p.Close)
		high = decimal.Max(high, p.Close)
	}
	fmt.Fprintf(&b, "| Points | First | Last | Low | High | Change %% |\n|---:|---:|---:|---:|---:|---:|\n")
	change := "-"
	if first.IsPositive() {
		change = last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).StringFixed(2)
	}
	fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n\n",
		len(h.Points), first.StringFixed(2), last.StringFixed(2), low.StringFixed(2), high.StringFixed(2), change)

	b.WriteString("| Date | Close |\n|:---|---:|\n")
	for _, p := range h.Points {
		date := p.Date
		if p.Time != nil {
			date = p.Time.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "| %s | %s |\n", date, p.Close.StringFixed(2))
	}
	return b.String()
}

func valuationMarkdown(v market.Valuation) string {
	var b strings.Builder
	if !v.HasItems {
		b.WriteString("Nothing to value.\n")
	}
	section := func(title string, items []market.Position) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		b.WriteString("| Ticker | Quantity | Price | Value | DY % | Annual | Monthly |\n")
		b.WriteString("|:---|---:|---:|---:|---:|---:|---:|\n")
		for _, p := range items {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				p.Ticker, p.Quantity.String(), p.CurrentPrice.StringFixed(2), p.TotalValue.StringFixed(2),
				p.DYPercent.StringFixed(2), p.AnnualIncome.StringFixed(2), p.MonthlyIncome.StringFixed(2))
		}
		b.WriteString("\n")
	}
	section("Dividend payers", v.WithDividends)
	section("Other holdings", v.WithoutDividends)

	if v.HasItems {
		b.WriteString("## Totals\n\n| Value | Annual | Semiannual | Quarterly | Monthly |\n|---:|---:|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			v.TotalValue.StringFixed(2), v.IncomeAnnual.StringFixed(2), v.IncomeSemiannual.StringFixed(2),
			v.IncomeQuarterly.StringFixed(2), v.IncomeMonthly.StringFixed(2))
	}
	if len(v.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped, no quote: %s\n", strings.Join(v.Skipped, ", "))
	}
	return b.String()
}

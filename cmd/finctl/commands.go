package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"finboard/internal/market"
	"finboard/internal/middleware"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "display current quotes" }
func (*quoteCmd) Usage() string {
	return `finctl quote <ticker>...

  Looks up each ticker. Bare B3 tickers such as PETR4 are retried as PETR4.SA.
`
}

func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	svc, err := newMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var views []market.QuoteView
	var missing []string
	for _, t := range f.Args() {
		q := svc.Quote(ctx, t)
		if !q.Valid {
			missing = append(missing, market.NormalizeTicker(t))
			continue
		}
		views = append(views, q.View())
	}
	printMarkdown(quotesMarkdown(views, missing))
	if len(views) == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type historyCmd struct {
	period string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display closing prices over a period" }
func (*historyCmd) Usage() string {
	return `finctl history [-p <period>] <ticker>

  Periods: 1d, 5d, 1mo, 3mo, 6mo, ytd, 1y, 5y, max.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", market.DefaultPeriod, "history period")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	svc, err := newMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	h, ok := svc.History(ctx, f.Arg(0), market.CoercePeriod(c.period), "")
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no history for %s\n", market.NormalizeTicker(f.Arg(0)))
		return subcommands.ExitFailure
	}
	printMarkdown(historyMarkdown(h))
	return subcommands.ExitSuccess
}

type valueCmd struct {
	concurrency int
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value a set of holdings and project dividend income" }
func (*valueCmd) Usage() string {
	return `finctl value [-c n] <ticker>=<quantity>...

  Example: finctl value PETR4=100 ITSA4=250.5 AAPL=3
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.concurrency, "c", 4, "concurrent quote lookups")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	holdings, err := parseHoldings(f.Args())
	if err != nil || len(holdings) == 0 {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		f.Usage()
		return subcommands.ExitUsageError
	}
	svc, err := newMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(valuationMarkdown(market.Valuate(ctx, holdings, svc, c.concurrency)))
	return subcommands.ExitSuccess
}

// parseHoldings reads TICKER=QUANTITY pairs.
func parseHoldings(args []string) ([]market.Holding, error) {
	holdings := make([]market.Holding, 0, len(args))
	for _, arg := range args {
		ticker, qty, ok := strings.Cut(arg, "=")
		ticker = market.NormalizeTicker(ticker)
		if !ok || ticker == "" {
			return nil, fmt.Errorf("expected TICKER=QUANTITY, got %q", arg)
		}
		q, err := decimal.NewFromString(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for %s: %w", ticker, err)
		}
		if !q.IsPositive() {
			return nil, fmt.Errorf("quantity for %s must be positive", ticker)
		}
		holdings = append(holdings, market.Holding{Ticker: ticker, Quantity: q})
	}
	return holdings, nil
}

type tokenCmd struct {
	email string
	ttl   time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "sign an access token for local testing" }
func (*tokenCmd) Usage() string {
	return `finctl token [-email <email>] [-ttl <duration>] <user-id>

  Signs an access token with JWT_SECRET.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "email claim")
	f.DurationVar(&c.ttl, "ttl", 24*time.Hour, "token lifetime")
}

func (c *tokenCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	id, err := strconv.ParseUint(f.Arg(0), 10, 32)
	if err != nil || id == 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid user id %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}

	token, err := middleware.GenerateAccessToken(uint(id), c.email, c.ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"

	"finboard/internal/cache"
	"finboard/internal/config"
	"finboard/internal/market"
	"finboard/internal/provider"
)

// newMarket builds a market service over Yahoo with a per-process cache.
func newMarket() (*market.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	yahoo, err := provider.NewYahoo(provider.YahooOptions{
		BaseURL:         cfg.YahooBaseURL,
		CookieURL:       cfg.YahooCookieURL,
		Timeout:         cfg.YahooTimeout,
		RateLimit:       cfg.YahooRateLimit,
		Burst:           cfg.YahooBurst,
		MaxRetries:      cfg.YahooMaxRetries,
		BreakerFailures: cfg.YahooBreakerFailures,
		BreakerCooldown: cfg.YahooBreakerCooldown,
	}, nil)
	if err != nil {
		return nil, err
	}
	return market.NewService(yahoo, cache.NewMemory()), nil
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "render: %v\n", err)
	fmt.Print(md)
}

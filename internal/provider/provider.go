// Package provider fetches raw market data from upstream quote services.
// Payloads are returned as loosely typed snapshots and time series; turning
// them into canonical records is the market package's job.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrSymbolNotFound is returned when the upstream does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoData is returned when the upstream answered without usable content.
	ErrNoData = errors.New("no data returned")
)

// Info is the flattened snapshot payload for one symbol. Field availability
// varies by instrument and market.
type Info map[string]any

// Dividend is a single cash distribution.
type Dividend struct {
	Date   time.Time
	Amount decimal.Decimal
}

// DividendSeries holds dividend payments in the exchange's timezone, oldest first.
type DividendSeries struct {
	Location *time.Location
	Payments []Dividend
}

// Bar is one closing price observation.
type Bar struct {
	Time  time.Time
	Close decimal.Decimal
}

// Series is a price history in the exchange's timezone, oldest first.
type Series struct {
	Location *time.Location
	Bars     []Bar
}

//go:generate mockgen -source=provider.go -destination=mocks/provider_mock.go -package=mocks

// Provider is an upstream source of quote snapshots, dividends and price history.
type Provider interface {
	// Name returns the provider's display name (e.g., "Yahoo Finance").
	Name() string

	// Info fetches the snapshot payload for symbol.
	Info(ctx context.Context, symbol string) (Info, error)

	// Dividends fetches the dividend payment history for symbol.
	Dividends(ctx context.Context, symbol string) (DividendSeries, error)

	// History fetches closing prices for symbol over period at interval.
	History(ctx context.Context, symbol, period, interval string) (Series, error)
}

package services

import (
	"context"

	"github.com/shopspring/decimal"

	"finboard/internal/market"
	"finboard/internal/models"
	"finboard/internal/pagination"
	"finboard/internal/search"
)

// MarketData is the quote and history source used by the services.
// *market.Service satisfies it.
type MarketData interface {
	Quote(ctx context.Context, ticker string) market.Quote
	History(ctx context.Context, ticker, period, interval string) (market.History, bool)
}

// TickerIndex records tickers seen by the service and suggests them back.
// *search.Index satisfies it.
type TickerIndex interface {
	Add(entries ...search.Entry) error
	Suggest(q string, limit int) []search.Entry
}

// StockResult is a quote as returned by search.
type StockResult struct {
	market.QuoteView
	IsFavorite bool `json:"is_favorite"`
}

// StockDetail is a quote with a one-month chart and the caller's relation to it.
type StockDetail struct {
	market.QuoteView
	History           []market.HistoryPoint `json:"history"`
	IsFavorite        bool                  `json:"is_favorite"`
	PortfolioQuantity decimal.Decimal       `json:"portfolio_quantity"`
}

// StockServicer defines the contract for quote lookups.
type StockServicer interface {
	Search(ctx context.Context, userID uint, ticker string) (*StockResult, error)
	GetStock(ctx context.Context, userID uint, ticker string) (*StockDetail, error)
	GetHistory(ctx context.Context, ticker, period string) (*market.History, error)
	Suggest(q string, limit int) []search.Entry
}

// ToggleResult reports what a favorite toggle did.
type ToggleResult struct {
	Action   string           `json:"action"`
	Favorite *models.Favorite `json:"favorite,omitempty"`
}

// Favorite toggle actions.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// DashboardItem is a favorite with its current quote and chart color.
type DashboardItem struct {
	market.QuoteView
	Color string `json:"color"`
}

// Dashboard is the favorites overview. Favorites without a valid quote are
// listed in Unavailable.
type Dashboard struct {
	Favorites   []DashboardItem `json:"favorites"`
	Unavailable []string        `json:"unavailable"`
}

// FavoriteServicer defines the contract for favorite-related business logic.
type FavoriteServicer interface {
	ToggleFavorite(userID uint, ticker, name string) (*ToggleResult, error)
	GetUserFavorites(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Favorite], error)
	IsFavorite(userID uint, ticker string) (bool, error)
	GetDashboard(ctx context.Context, userID uint) (*Dashboard, error)
}

// PortfolioChange reports the result of adding to a position.
type PortfolioChange struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Removed  bool            `json:"removed"`
	Message  string          `json:"message"`
	ItemID   string          `json:"-"`
}

// PortfolioServicer defines the contract for portfolio-related business logic.
type PortfolioServicer interface {
	AddToPortfolio(ctx context.Context, userID uint, ticker string, quantity decimal.Decimal) (*PortfolioChange, error)
	GetPortfolio(ctx context.Context, userID uint) (*market.Valuation, error)
	GetHolding(userID uint, ticker string) (*models.PortfolioItem, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

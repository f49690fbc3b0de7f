package models

import "github.com/shopspring/decimal"

// PortfolioItem is a user's position in one ticker. Quantity is always
// positive; a position that drops to zero or below is deleted.
type PortfolioItem struct {
	Base
	UserID   uint            `gorm:"not null;uniqueIndex:idx_portfolio_items_user_ticker" json:"user_id"`
	Ticker   string          `gorm:"not null;size:20;uniqueIndex:idx_portfolio_items_user_ticker" json:"ticker"`
	Name     string          `gorm:"size:255" json:"name"`
	Quantity decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"quantity"`
}

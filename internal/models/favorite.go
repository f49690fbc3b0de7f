package models

// Favorite is a ticker a user follows on the dashboard.
type Favorite struct {
	Base
	UserID uint   `gorm:"not null;uniqueIndex:idx_favorites_user_ticker" json:"user_id"`
	Ticker string `gorm:"not null;size:20;uniqueIndex:idx_favorites_user_ticker" json:"ticker"`
	Name   string `gorm:"size:255" json:"name"`
}

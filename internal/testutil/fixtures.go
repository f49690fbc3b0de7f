package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finboard/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a user ID not used by any other fixture in this run.
func NewUserID() uint {
	return uint(nextID())
}

// CreateTestFavorite stores a favorite for userID.
func CreateTestFavorite(t *testing.T, db *gorm.DB, userID uint, ticker string) *models.Favorite {
	t.Helper()

	fav := &models.Favorite{
		UserID: userID,
		Ticker: ticker,
		Name:   fmt.Sprintf("Test Company %d", nextID()),
	}
	if err := db.Create(fav).Error; err != nil {
		t.Fatalf("failed to create test favorite: %v", err)
	}
	return fav
}

// CreateTestPortfolioItem stores a position of quantity in ticker for userID.
func CreateTestPortfolioItem(t *testing.T, db *gorm.DB, userID uint, ticker, quantity string) *models.PortfolioItem {
	t.Helper()

	item := &models.PortfolioItem{
		UserID:   userID,
		Ticker:   ticker,
		Quantity: decimal.RequireFromString(quantity),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test portfolio item: %v", err)
	}
	return item
}

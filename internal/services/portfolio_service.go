package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
	"finboard/internal/market"
	"finboard/internal/metrics"
	"finboard/internal/models"
)

// portfolioService handles portfolio-related business logic.
type portfolioService struct {
	db          *gorm.DB
	market      MarketData
	metrics     *metrics.Metrics
	concurrency int
}

// NewPortfolioService creates a new PortfolioServicer. concurrency bounds the
// parallel quote lookups of a valuation; m may be nil.
func NewPortfolioService(db *gorm.DB, md MarketData, m *metrics.Metrics, concurrency int) PortfolioServicer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &portfolioService{db: db, market: md, metrics: m, concurrency: concurrency}
}

// AddToPortfolio adds quantity (which may be negative) to the user's position
// in ticker. A position that ends at zero or below is deleted.
func (s *portfolioService) AddToPortfolio(ctx context.Context, userID uint, ticker string, quantity decimal.Decimal) (*PortfolioChange, error) {
	ticker = market.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, apperrors.ErrTickerRequired
	}

	if quantity.IsZero() {
		return nil, apperrors.ErrZeroQuantity
	}

	q := s.market.Quote(ctx, ticker)
	if !q.Valid {
		return nil, apperrors.ErrQuoteUnavailable
	}

	change := &PortfolioChange{Ticker: ticker}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ? AND ticker = ?", userID, ticker)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var item models.PortfolioItem
		err := query.First(&item).Error
		exists := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		total := item.Quantity.Add(quantity)
		if !total.IsPositive() {
			if exists {
				if err := tx.Delete(&item).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
			change.Removed = true
			change.Quantity = decimal.Zero
			change.ItemID = item.ID
			change.Message = "Asset removed from portfolio."
			return nil
		}

		if exists {
			item.Quantity = total
			if err := tx.Save(&item).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else {
			item = models.PortfolioItem{UserID: userID, Ticker: ticker, Name: q.Name, Quantity: total}
			if err := tx.Create(&item).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		verb := "added to"
		if quantity.IsNegative() {
			verb = "subtracted from"
		}
		change.Quantity = total
		change.ItemID = item.ID
		change.Message = fmt.Sprintf("%s shares %s portfolio.", quantity.Abs().String(), verb)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// GetPortfolio values the user's positions, most recently added first.
func (s *portfolioService) GetPortfolio(ctx context.Context, userID uint) (*market.Valuation, error) {
	var items []models.PortfolioItem
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	holdings := make([]market.Holding, 0, len(items))
	for _, item := range items {
		holdings = append(holdings, market.Holding{Ticker: item.Ticker, Quantity: item.Quantity})
	}

	v := market.Valuate(ctx, holdings, s.market, s.concurrency)
	if len(v.Skipped) > 0 {
		s.metrics.SkippedHolding(len(v.Skipped))
		logger.Get().Infow("holdings without a valid quote left out of valuation",
			"user_id", userID,
			"tickers", v.Skipped,
		)
	}
	return &v, nil
}

// GetHolding returns the user's position in ticker.
func (s *portfolioService) GetHolding(userID uint, ticker string) (*models.PortfolioItem, error) {
	var item models.PortfolioItem
	err := s.db.Where("user_id = ? AND ticker = ?", userID, market.NormalizeTicker(ticker)).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPortfolioItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

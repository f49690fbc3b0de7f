package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
	"finboard/internal/market"
	"finboard/internal/models"
	"finboard/internal/search"
)

// stockService handles quote lookups for the HTTP surface.
type stockService struct {
	market    MarketData
	index     TickerIndex
	favorites FavoriteServicer
	portfolio PortfolioServicer
}

// NewStockService creates a new StockServicer.
func NewStockService(md MarketData, index TickerIndex, favorites FavoriteServicer, portfolio PortfolioServicer) StockServicer {
	return &stockService{market: md, index: index, favorites: favorites, portfolio: portfolio}
}

// lookup resolves ticker to a valid quote and remembers it for suggestions.
func (s *stockService) lookup(ctx context.Context, ticker string) (market.Quote, error) {
	ticker = market.NormalizeTicker(ticker)
	if ticker == "" {
		return market.Quote{}, apperrors.ErrTickerRequired
	}

	q := s.market.Quote(ctx, ticker)
	if !q.Valid {
		return market.Quote{}, apperrors.ErrQuoteUnavailable
	}

	if err := s.index.Add(search.Entry{Ticker: q.Ticker, Name: q.Name}); err != nil {
		logger.Get().Warnw("failed to index ticker", "ticker", q.Ticker, "error", err)
	}
	return q, nil
}

// isFavorite checks the ticker as typed and as resolved, since favorites
// keep whatever the user saved.
func (s *stockService) isFavorite(userID uint, typed, resolved string) bool {
	if userID == 0 {
		return false
	}
	for _, t := range []string{market.NormalizeTicker(typed), resolved} {
		ok, err := s.favorites.IsFavorite(userID, t)
		if err != nil {
			logger.Get().Warnw("favorite lookup failed", "user_id", userID, "ticker", t, "error", err)
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

// Search looks up a single ticker. userID is zero for anonymous callers.
func (s *stockService) Search(ctx context.Context, userID uint, ticker string) (*StockResult, error) {
	q, err := s.lookup(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &StockResult{
		QuoteView:  q.View(),
		IsFavorite: s.isFavorite(userID, ticker, q.Ticker),
	}, nil
}

// GetStock returns the quote of ticker with a one-month chart. A missing
// chart is not an error; the detail is returned without history.
func (s *stockService) GetStock(ctx context.Context, userID uint, ticker string) (*StockDetail, error) {
	q, err := s.lookup(ctx, ticker)
	if err != nil {
		return nil, err
	}

	detail := &StockDetail{
		QuoteView:         q.View(),
		History:           []market.HistoryPoint{},
		PortfolioQuantity: decimal.Zero,
	}
	if h, ok := s.market.History(ctx, ticker, market.DefaultPeriod, ""); ok {
		detail.History = h.Points
	}

	if userID != 0 {
		detail.IsFavorite = s.isFavorite(userID, ticker, q.Ticker)
		item, err := s.portfolio.GetHolding(userID, market.NormalizeTicker(ticker))
		switch {
		case err == nil:
			detail.PortfolioQuantity = item.Quantity
		case !errors.Is(err, apperrors.ErrPortfolioItemNotFound):
			logger.Get().Warnw("portfolio lookup failed", "user_id", userID, "ticker", ticker, "error", err)
		}
	}
	return detail, nil
}

// GetHistory returns the chart of ticker over period. Unsupported periods
// fall back to market.DefaultPeriod.
func (s *stockService) GetHistory(ctx context.Context, ticker, period string) (*market.History, error) {
	if market.NormalizeTicker(ticker) == "" {
		return nil, apperrors.ErrTickerRequired
	}
	h, ok := s.market.History(ctx, ticker, market.CoercePeriod(period), "")
	if !ok {
		return nil, apperrors.ErrHistoryUnavailable
	}
	return &h, nil
}

// Suggest returns indexed tickers matching q.
func (s *stockService) Suggest(q string, limit int) []search.Entry {
	return s.index.Suggest(q, limit)
}

// SeedTickerIndex adds every stored favorite and portfolio ticker to index.
func SeedTickerIndex(db *gorm.DB, index TickerIndex) error {
	var entries []search.Entry
	if err := db.Model(&models.Favorite{}).Distinct("ticker", "name").Find(&entries).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var held []search.Entry
	if err := db.Model(&models.PortfolioItem{}).Distinct("ticker", "name").Find(&held).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	entries = append(entries, held...)
	if len(entries) == 0 {
		return nil
	}
	return index.Add(entries...)
}

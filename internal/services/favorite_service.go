package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/market"
	"finboard/internal/models"
	"finboard/internal/pagination"
)

// Palette holds the dashboard chart colors, assigned by favorite position.
var Palette = []string{
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#ec4899",
	"#06b6d4",
}

// favoriteService handles favorite-related business logic.
type favoriteService struct {
	db          *gorm.DB
	market      MarketData
	concurrency int
}

// NewFavoriteService creates a new FavoriteServicer. concurrency bounds the
// parallel quote lookups of the dashboard.
func NewFavoriteService(db *gorm.DB, md MarketData, concurrency int) FavoriteServicer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &favoriteService{db: db, market: md, concurrency: concurrency}
}

// ToggleFavorite removes ticker from the user's favorites when present and
// adds it otherwise.
func (s *favoriteService) ToggleFavorite(userID uint, ticker, name string) (*ToggleResult, error) {
	ticker = market.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, apperrors.ErrTickerRequired
	}

	var result *ToggleResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Favorite
		err := tx.Where("user_id = ? AND ticker = ?", userID, ticker).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result = &ToggleResult{Action: FavoriteRemoved, Favorite: &existing}
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		fav := &models.Favorite{UserID: userID, Ticker: ticker, Name: name}
		if err := tx.Create(fav).Error; err != nil {
			return err
		}
		result = &ToggleResult{Action: FavoriteAdded, Favorite: fav}
		return nil
	})
	if err != nil {
		// A concurrent toggle inserted the same row first; the favorite exists.
		if isUniqueConstraintError(err) {
			return &ToggleResult{Action: FavoriteAdded}, nil
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetUserFavorites returns a page of the user's favorites, oldest first.
func (s *favoriteService) GetUserFavorites(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Favorite], error) {
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var favorites []models.Favorite
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Scopes(pagination.Paginate(page)).
		Find(&favorites).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(favorites, page.Page, page.PageSize, total)
	return &resp, nil
}

// IsFavorite reports whether ticker is among the user's favorites.
func (s *favoriteService) IsFavorite(userID uint, ticker string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Favorite{}).
		Where("user_id = ? AND ticker = ?", userID, market.NormalizeTicker(ticker)).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetDashboard quotes every favorite of the user. Colors are assigned by the
// favorite's position among all favorites, so a favorite keeps its color
// when another one is temporarily unavailable.
func (s *favoriteService) GetDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	var favorites []models.Favorite
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&favorites).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	quotes := make([]market.Quote, len(favorites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, fav := range favorites {
		g.Go(func() error {
			quotes[i] = s.market.Quote(gctx, fav.Ticker)
			return nil
		})
	}
	_ = g.Wait()

	dash := &Dashboard{Favorites: []DashboardItem{}, Unavailable: []string{}}
	for i, q := range quotes {
		if !q.Valid {
			dash.Unavailable = append(dash.Unavailable, favorites[i].Ticker)
			continue
		}
		dash.Favorites = append(dash.Favorites, DashboardItem{
			QuoteView: q.View(),
			Color:     Palette[i%len(Palette)],
		})
	}
	return dash, nil
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}

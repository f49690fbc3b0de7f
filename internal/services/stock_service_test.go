package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"finboard/internal/market"
	"finboard/internal/search"
	"finboard/internal/testutil"
)

func newStockFixture(t *testing.T) (StockServicer, *fakeMarket, *fakeIndex, *stockDeps) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	md := newFakeMarket().withQuote("PETR4.SA", "Petrobras", "38.5", "0.12")
	// The fake resolves nothing itself; map the bare ticker to the suffixed quote.
	md.quotes["PETR4"] = md.quotes["PETR4.SA"]
	md.histories["PETR4:1mo"] = market.History{
		Ticker: "PETR4.SA",
		Points: []market.HistoryPoint{{Date: "2024-05-02", Close: decimal.RequireFromString("37.25")}},
	}
	idx := &fakeIndex{}
	favorites := NewFavoriteService(db, md, 2)
	portfolio := NewPortfolioService(db, md, nil, 2)
	return NewStockService(md, idx, favorites, portfolio), md, idx, &stockDeps{favorites: favorites, portfolio: portfolio}
}

type stockDeps struct {
	favorites FavoriteServicer
	portfolio PortfolioServicer
}

func TestStockSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		svc, _, idx, _ := newStockFixture(t)

		res, err := svc.Search(ctx, 0, "petr4")
		testutil.AssertNoError(t, err)
		if res.Ticker != "PETR4.SA" {
			t.Errorf("expected resolved ticker, got %s", res.Ticker)
		}
		if res.IsFavorite {
			t.Error("anonymous callers have no favorites")
		}
		if !res.DividendYieldPercent.Equal(decimal.NewFromInt(12)) {
			t.Errorf("expected 12%%, got %s", res.DividendYieldPercent)
		}
		if len(idx.entries) != 1 || idx.entries[0].Ticker != "PETR4.SA" {
			t.Errorf("expected ticker indexed, got %+v", idx.entries)
		}
	})

	t.Run("favorite_saved_as_typed", func(t *testing.T) {
		svc, _, _, deps := newStockFixture(t)
		userID := testutil.NewUserID()
		_, err := deps.favorites.ToggleFavorite(userID, "PETR4", "Petrobras")
		testutil.AssertNoError(t, err)

		res, err := svc.Search(ctx, userID, "petr4")
		testutil.AssertNoError(t, err)
		if !res.IsFavorite {
			t.Error("expected is_favorite")
		}
	})

	t.Run("empty_ticker", func(t *testing.T) {
		svc, _, _, _ := newStockFixture(t)
		_, err := svc.Search(ctx, 0, "  ")
		testutil.AssertAppError(t, err, "TICKER_REQUIRED")
	})

	t.Run("unknown_ticker", func(t *testing.T) {
		svc, _, idx, _ := newStockFixture(t)
		_, err := svc.Search(ctx, 0, "NOPE")
		testutil.AssertAppError(t, err, "QUOTE_UNAVAILABLE")
		if len(idx.entries) != 0 {
			t.Error("invalid quotes must not be indexed")
		}
	})
}

func TestGetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("with_history_and_position", func(t *testing.T) {
		svc, _, _, deps := newStockFixture(t)
		userID := testutil.NewUserID()
		_, err := deps.portfolio.AddToPortfolio(ctx, userID, "PETR4", decimal.NewFromInt(7))
		testutil.AssertNoError(t, err)

		detail, err := svc.GetStock(ctx, userID, "PETR4")
		testutil.AssertNoError(t, err)
		if len(detail.History) != 1 {
			t.Errorf("expected 1 history point, got %d", len(detail.History))
		}
		if !detail.PortfolioQuantity.Equal(decimal.NewFromInt(7)) {
			t.Errorf("expected quantity 7, got %s", detail.PortfolioQuantity)
		}
	})

	t.Run("missing_history_is_empty", func(t *testing.T) {
		svc, md, _, _ := newStockFixture(t)
		delete(md.histories, "PETR4:1mo")

		detail, err := svc.GetStock(ctx, 0, "PETR4")
		testutil.AssertNoError(t, err)
		if detail.History == nil || len(detail.History) != 0 {
			t.Errorf("expected empty history, got %v", detail.History)
		}
		if !detail.PortfolioQuantity.IsZero() {
			t.Error("expected zero quantity for anonymous caller")
		}
	})
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newStockFixture(t)

	h, err := svc.GetHistory(ctx, "PETR4", "10y")
	testutil.AssertNoError(t, err)
	if h.Period != "1mo" || h.Interval != "1d" {
		t.Errorf("expected coerced 1mo/1d, got %s/%s", h.Period, h.Interval)
	}

	_, err = svc.GetHistory(ctx, "PETR4", "5y")
	testutil.AssertAppError(t, err, "HISTORY_UNAVAILABLE")
}

func TestSeedTickerIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.NewUserID()
	testutil.CreateTestFavorite(t, db, userID, "AAPL")
	testutil.CreateTestPortfolioItem(t, db, userID, "PETR4", "1")

	idx, err := search.NewIndex()
	testutil.AssertNoError(t, err)
	defer idx.Close()

	testutil.AssertNoError(t, SeedTickerIndex(db, idx))
	if idx.Count() != 2 {
		t.Errorf("expected 2 indexed tickers, got %d", idx.Count())
	}
}

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finboard/internal/errors"
	"finboard/internal/market"
	"finboard/internal/search"
	"finboard/internal/services"
)

// --- mock stock service ---

type mockStockService struct {
	searchFn     func(ctx context.Context, userID uint, ticker string) (*services.StockResult, error)
	getStockFn   func(ctx context.Context, userID uint, ticker string) (*services.StockDetail, error)
	getHistoryFn func(ctx context.Context, ticker, period string) (*market.History, error)
	suggestFn    func(q string, limit int) []search.Entry
}

func (m *mockStockService) Search(ctx context.Context, userID uint, ticker string) (*services.StockResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, userID, ticker)
	}
	return &services.StockResult{}, nil
}

func (m *mockStockService) GetStock(ctx context.Context, userID uint, ticker string) (*services.StockDetail, error) {
	if m.getStockFn != nil {
		return m.getStockFn(ctx, userID, ticker)
	}
	return &services.StockDetail{}, nil
}

func (m *mockStockService) GetHistory(ctx context.Context, ticker, period string) (*market.History, error) {
	if m.getHistoryFn != nil {
		return m.getHistoryFn(ctx, ticker, period)
	}
	return &market.History{}, nil
}

func (m *mockStockService) Suggest(q string, limit int) []search.Entry {
	if m.suggestFn != nil {
		return m.suggestFn(q, limit)
	}
	return []search.Entry{}
}

// verify interface compliance
var _ services.StockServicer = (*mockStockService)(nil)

func setupStockRouter(handler *StockHandler, uid uint) *gin.Engine {
	r := gin.New()
	g := r.Group("")
	if uid != 0 {
		g.Use(injectUserID(uid))
	}
	g.GET("/stocks/search", handler.Search)
	g.GET("/stocks/suggest", handler.Suggest)
	g.GET("/stocks/:ticker", handler.GetStock)
	g.GET("/stocks/:ticker/history", handler.GetHistory)
	return r
}

func validQuote(ticker string, price string) market.Quote {
	return market.Quote{
		Ticker:        ticker,
		Valid:         true,
		Name:          "Petrobras",
		Currency:      "BRL",
		Price:         decimal.RequireFromString(price),
		DividendYield: decimal.RequireFromString("0.1"),
	}
}

func TestStockHandler_Search(t *testing.T) {
	t.Run("returns quote for anonymous caller", func(t *testing.T) {
		var gotUser uint = 99
		svc := &mockStockService{
			searchFn: func(_ context.Context, userID uint, ticker string) (*services.StockResult, error) {
				gotUser = userID
				if ticker != "petr4" {
					t.Errorf("expected raw ticker petr4, got %q", ticker)
				}
				return &services.StockResult{QuoteView: validQuote("PETR4.SA", "37.25").View()}, nil
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 0)

		rec := doRequest(r, "GET", "/stocks/search?q=petr4", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUser != 0 {
			t.Errorf("expected anonymous user 0, got %d", gotUser)
		}
		result := parseJSON(t, rec)
		if result["ticker"] != "PETR4.SA" {
			t.Errorf("expected ticker PETR4.SA, got %v", result["ticker"])
		}
		if result["is_favorite"] != false {
			t.Errorf("expected is_favorite false, got %v", result["is_favorite"])
		}
	})

	t.Run("passes authenticated user", func(t *testing.T) {
		var gotUser uint
		svc := &mockStockService{
			searchFn: func(_ context.Context, userID uint, _ string) (*services.StockResult, error) {
				gotUser = userID
				return &services.StockResult{QuoteView: validQuote("AAPL", "190").View(), IsFavorite: true}, nil
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 7)

		rec := doRequest(r, "GET", "/stocks/search?q=AAPL", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUser != 7 {
			t.Errorf("expected user 7, got %d", gotUser)
		}
	})

	t.Run("returns 404 when quote unavailable", func(t *testing.T) {
		svc := &mockStockService{
			searchFn: func(context.Context, uint, string) (*services.StockResult, error) {
				return nil, apperrors.ErrQuoteUnavailable
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 0)

		rec := doRequest(r, "GET", "/stocks/search?q=ZZZZ", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "QUOTE_UNAVAILABLE")
	})

	t.Run("returns 400 when ticker missing", func(t *testing.T) {
		svc := &mockStockService{
			searchFn: func(context.Context, uint, string) (*services.StockResult, error) {
				return nil, apperrors.ErrTickerRequired
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 0)

		rec := doRequest(r, "GET", "/stocks/search", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TICKER_REQUIRED")
	})
}

func TestStockHandler_Suggest(t *testing.T) {
	t.Run("returns suggestions", func(t *testing.T) {
		var gotLimit int
		svc := &mockStockService{
			suggestFn: func(q string, limit int) []search.Entry {
				gotLimit = limit
				return []search.Entry{{Ticker: "PETR4.SA", Name: "Petrobras"}}
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 0)

		rec := doRequest(r, "GET", "/stocks/suggest?q=pe&limit=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotLimit != 5 {
			t.Errorf("expected limit 5, got %d", gotLimit)
		}
		results := parseJSON(t, rec)["results"].([]interface{})
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
	})

	t.Run("returns 400 for limit out of range", func(t *testing.T) {
		r := setupStockRouter(NewStockHandler(&mockStockService{}), 0)

		rec := doRequest(r, "GET", "/stocks/suggest?q=pe&limit=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestStockHandler_GetStock(t *testing.T) {
	t.Run("returns detail with history", func(t *testing.T) {
		svc := &mockStockService{
			getStockFn: func(_ context.Context, _ uint, ticker string) (*services.StockDetail, error) {
				return &services.StockDetail{
					QuoteView:         validQuote("PETR4.SA", "37.25").View(),
					History:           []market.HistoryPoint{{Date: "2026-10-16", Close: decimal.RequireFromString("37.25")}},
					PortfolioQuantity: decimal.NewFromInt(100),
				}, nil
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 3)

		rec := doRequest(r, "GET", "/stocks/PETR4", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		history := result["history"].([]interface{})
		if len(history) != 1 {
			t.Fatalf("expected 1 history point, got %d", len(history))
		}
		point := history[0].(map[string]interface{})
		if point["Close"] != 37.25 {
			t.Errorf("expected Close 37.25, got %v", point["Close"])
		}
		if result["portfolio_quantity"] != "100" {
			t.Errorf("expected portfolio_quantity 100, got %v", result["portfolio_quantity"])
		}
	})

	t.Run("returns 404 when quote unavailable", func(t *testing.T) {
		svc := &mockStockService{
			getStockFn: func(context.Context, uint, string) (*services.StockDetail, error) {
				return nil, apperrors.ErrQuoteUnavailable
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 0)

		rec := doRequest(r, "GET", "/stocks/NOPE", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "QUOTE_UNAVAILABLE")
	})
}

func TestStockHandler_GetHistory(t *testing.T) {
	t.Run("returns series", func(t *testing.T) {
		var gotPeriod string
		svc := &mockStockService{
			getHistoryFn: func(_ context.Context, ticker, period string) (*market.History, error) {
				gotPeriod = period
				return &market.History{
					Ticker:   "PETR4.SA",
					Period:   "5y",
					Interval: market.IntervalWeekly,
					Points: []market.HistoryPoint{
						{Date: "2026-10-09", Close: decimal.RequireFromString("36.10")},
						{Date: "2026-10-16", Close: decimal.RequireFromString("37.25")},
					},
				}, nil
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 0)

		rec := doRequest(r, "GET", "/stocks/PETR4/history?period=5y", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPeriod != "5y" {
			t.Errorf("expected period 5y, got %q", gotPeriod)
		}
		result := parseJSON(t, rec)
		if result["interval"] != "1wk" {
			t.Errorf("expected interval 1wk, got %v", result["interval"])
		}
		if len(result["data"].([]interface{})) != 2 {
			t.Errorf("expected 2 points, got %v", result["data"])
		}
	})

	t.Run("returns 400 when no data", func(t *testing.T) {
		svc := &mockStockService{
			getHistoryFn: func(context.Context, string, string) (*market.History, error) {
				return nil, apperrors.ErrHistoryUnavailable
			},
		}
		r := setupStockRouter(NewStockHandler(svc), 0)

		rec := doRequest(r, "GET", "/stocks/NOPE/history", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "HISTORY_UNAVAILABLE")
		if result["error"].(map[string]interface{})["message"] != "Failed to fetch data" {
			t.Errorf("unexpected message: %v", result["error"])
		}
	})
}

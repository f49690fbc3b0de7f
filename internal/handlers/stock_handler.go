package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/market"
	"finboard/internal/search"
	"finboard/internal/services"
)

// StockHandler handles quote, chart and ticker suggestion requests.
type StockHandler struct {
	stockService services.StockServicer
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService services.StockServicer) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// SearchQuery is the query string of a ticker search.
type SearchQuery struct {
	Q string `form:"q"`
}

// SuggestQuery is the query string of a suggestion request.
type SuggestQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// HistoryQuery is the query string of a chart request. Unsupported periods
// are replaced by the default one rather than rejected.
type HistoryQuery struct {
	Period string `form:"period"`
}

// HistoryResponse is a chart series.
type HistoryResponse struct {
	Ticker   string                `json:"ticker"`
	Data     []market.HistoryPoint `json:"data"`
	Period   string                `json:"period"`
	Interval string                `json:"interval"`
}

// SuggestResponse lists ticker suggestions.
type SuggestResponse struct {
	Results []search.Entry `json:"results"`
}

// Search handles a ticker lookup.
// @Summary     Search ticker
// @Description Look up a quote by ticker. Bare B3 tickers (e.g. PETR4) are retried with the .SA suffix.
// @Tags        stocks
// @Produce     json
// @Param       q query string true "Ticker"
// @Success     200 {object} services.StockResult
// @Failure     400 {object} ErrorResponse "Ticker missing"
// @Failure     404 {object} ErrorResponse "Quote not available"
// @Router      /stocks/search [get]
func (h *StockHandler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.stockService.Search(c.Request.Context(), optionalUserID(c), q.Q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Suggest handles ticker autocomplete.
// @Summary     Suggest tickers
// @Description Suggest previously seen tickers matching a prefix or company name
// @Tags        stocks
// @Produce     json
// @Param       q     query string false "Prefix or name"
// @Param       limit query int    false "Maximum results (1-50)"
// @Success     200 {object} SuggestResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /stocks/suggest [get]
func (h *StockHandler) Suggest(c *gin.Context) {
	var q SuggestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	c.JSON(http.StatusOK, SuggestResponse{Results: h.stockService.Suggest(q.Q, q.Limit)})
}

// GetStock handles the stock detail page data.
// @Summary     Stock detail
// @Description Quote, fundamentals and a one-month chart for a ticker
// @Tags        stocks
// @Produce     json
// @Param       ticker path string true "Ticker"
// @Success     200 {object} services.StockDetail
// @Failure     404 {object} ErrorResponse "Quote not available"
// @Router      /stocks/{ticker} [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	detail, err := h.stockService.GetStock(c.Request.Context(), optionalUserID(c), c.Param("ticker"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetHistory handles chart requests.
// @Summary     Price history
// @Description Closing prices over a period. The sampling interval is derived from the period.
// @Tags        stocks
// @Produce     json
// @Param       ticker path  string true  "Ticker"
// @Param       period query string false "1d, 5d, 1mo, 3mo, 6mo, ytd, 1y, 5y or max"
// @Success     200 {object} HistoryResponse
// @Failure     400 {object} ErrorResponse "Failed to fetch data"
// @Router      /stocks/{ticker}/history [get]
func (h *StockHandler) GetHistory(c *gin.Context) {
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	history, err := h.stockService.GetHistory(c.Request.Context(), c.Param("ticker"), q.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Ticker:   history.Ticker,
		Data:     history.Points,
		Period:   history.Period,
		Interval: history.Interval,
	})
}

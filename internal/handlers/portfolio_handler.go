package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finboard/internal/errors"
	"finboard/internal/services"
)

// PortfolioHandler handles portfolio requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	auditService     services.AuditServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer, auditService services.AuditServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, auditService: auditService}
}

// AddToPortfolioRequest represents the request payload for changing a
// position. Quantity is added to the current one and may be negative; it is
// accepted as a JSON number or a numeric string.
type AddToPortfolioRequest struct {
	Ticker   string      `json:"ticker" binding:"omitempty,ticker"`
	Quantity json.Number `json:"quantity" binding:"omitempty,decimal"`
}

// AddToPortfolioResponse reports the resulting position.
type AddToPortfolioResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Removed  bool            `json:"removed"`
}

// AddToPortfolio handles adding to or subtracting from a position.
// @Summary     Change position
// @Description Add quantity to the user's position in ticker. A position that reaches zero or below is removed.
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddToPortfolioRequest true "Ticker and quantity delta"
// @Success     200 {object} AddToPortfolioResponse
// @Failure     400 {object} ErrorResponse "Invalid input or zero quantity"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Quote not available"
// @Router      /portfolio [post]
func (h *PortfolioHandler) AddToPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddToPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	quantity := decimal.Zero
	if req.Quantity != "" {
		quantity, err = decimal.NewFromString(req.Quantity.String())
		if err != nil {
			respondWithError(c, apperrors.ErrInvalidQuantity)
			return
		}
	}

	change, err := h.portfolioService.AddToPortfolio(c.Request.Context(), userID, req.Ticker, quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PORTFOLIO", "portfolio_item", change.ItemID, c.ClientIP(),
		map[string]interface{}{
			"ticker":   change.Ticker,
			"delta":    quantity.String(),
			"quantity": change.Quantity.String(),
			"removed":  change.Removed,
		})

	c.JSON(http.StatusOK, AddToPortfolioResponse{
		Status:   "success",
		Message:  change.Message,
		Ticker:   change.Ticker,
		Quantity: change.Quantity,
		Removed:  change.Removed,
	})
}

// GetPortfolio handles the portfolio valuation.
// @Summary     Portfolio valuation
// @Description Value of each position and projected dividend income. Positions without a quote are listed in skipped.
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} market.Valuation
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	valuation, err := h.portfolioService.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, valuation)
}

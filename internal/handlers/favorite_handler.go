package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/pagination"
	"finboard/internal/services"
)

// FavoriteHandler handles favorites and the dashboard.
type FavoriteHandler struct {
	favoriteService services.FavoriteServicer
	auditService    services.AuditServicer
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService services.FavoriteServicer, auditService services.AuditServicer) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, auditService: auditService}
}

// ToggleFavoriteRequest represents the request payload for toggling a favorite.
type ToggleFavoriteRequest struct {
	Ticker string `json:"ticker" binding:"omitempty,ticker"`
	Name   string `json:"name" binding:"max=255"`
}

// ToggleFavoriteResponse reports whether the favorite was added or removed.
type ToggleFavoriteResponse struct {
	Status string `json:"status"`
	Action string `json:"action"`
}

// ToggleFavorite handles adding or removing a favorite.
// @Summary     Toggle favorite
// @Description Add the ticker to the user's favorites, or remove it when already present
// @Tags        favorites
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ToggleFavoriteRequest true "Ticker and display name"
// @Success     200 {object} ToggleFavoriteResponse
// @Failure     400 {object} ErrorResponse "Ticker missing"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /favorites/toggle [post]
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.favoriteService.ToggleFavorite(userID, req.Ticker, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var resourceID string
	if result.Favorite != nil {
		resourceID = result.Favorite.ID
	}
	h.auditService.Log(userID, "TOGGLE_FAVORITE", "favorite", resourceID, c.ClientIP(),
		map[string]interface{}{"ticker": req.Ticker, "action": result.Action})

	c.JSON(http.StatusOK, ToggleFavoriteResponse{Status: "success", Action: result.Action})
}

// ListFavorites handles listing the user's favorites.
// @Summary     List favorites
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Items per page (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Favorite]
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /favorites [get]
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.favoriteService.GetUserFavorites(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Dashboard handles the favorites overview.
// @Summary     Dashboard
// @Description Current quotes of the user's favorites, each with a chart color
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Dashboard
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard [get]
func (h *FavoriteHandler) Dashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dash, err := h.favoriteService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

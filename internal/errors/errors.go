// Package errors provides the application error type used by services and handlers.
// Service-layer failures surface as AppError so responses carry a stable code
// and never leak upstream or database details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrRouteNotFound  = &AppError{Code: "ROUTE_NOT_FOUND", Message: "Route not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Market data errors.
var (
	ErrTickerRequired     = &AppError{Code: "TICKER_REQUIRED", Message: "Ticker is required", StatusCode: http.StatusBadRequest}
	ErrQuoteUnavailable   = &AppError{Code: "QUOTE_UNAVAILABLE", Message: "Quote not available for this ticker", StatusCode: http.StatusNotFound}
	ErrHistoryUnavailable = &AppError{Code: "HISTORY_UNAVAILABLE", Message: "Failed to fetch data", StatusCode: http.StatusBadRequest}
)

// Favorite errors.
var (
	ErrFavoriteNotFound = &AppError{Code: "FAVORITE_NOT_FOUND", Message: "Favorite not found", StatusCode: http.StatusNotFound}
)

// Portfolio errors.
var (
	ErrPortfolioItemNotFound = &AppError{Code: "PORTFOLIO_ITEM_NOT_FOUND", Message: "Portfolio item not found", StatusCode: http.StatusNotFound}
	ErrInvalidQuantity       = &AppError{Code: "INVALID_QUANTITY", Message: "Quantity must be a decimal number", StatusCode: http.StatusBadRequest}
	ErrZeroQuantity          = &AppError{Code: "ZERO_QUANTITY", Message: "Quantity must be different from zero", StatusCode: http.StatusBadRequest}
)

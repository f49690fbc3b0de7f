package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
)

// ErrorHandler renders the last error attached with c.Error in the API's
// {"error":{code,message}} envelope. Handlers that already wrote their own
// response are left alone; the attached error still reaches the request log.
func ErrorHandler() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		fields := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		}

		appErr := asAppError(last)
		switch {
		case appErr == nil:
			log.Errorw("unhandled error", append(fields, "error", last.Err.Error())...)
			appErr = apperrors.ErrInternalServer
		case appErr.Internal != nil && appErr.StatusCode >= 500:
			log.Errorw("request failed", append(fields, "code", appErr.Code, "internal", appErr.Internal.Error())...)
		case appErr.Internal != nil:
			log.Debugw("request rejected", append(fields, "code", appErr.Code, "internal", appErr.Internal.Error())...)
		}

		c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}

// asAppError maps an attached error to the AppError it is rendered as, or
// nil when it must be hidden behind INTERNAL_ERROR.
func asAppError(e *gin.Error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(e.Err, &appErr) {
		return appErr
	}
	if e.IsType(gin.ErrorTypeBind) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, e.Err)
	}
	return nil
}

// NoRoute answers unknown paths with ROUTE_NOT_FOUND, rendered by
// ErrorHandler.
func NoRoute(c *gin.Context) {
	_ = c.Error(apperrors.ErrRouteNotFound)
}

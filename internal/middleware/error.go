package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/logger"
)

// WriteError renders err as {"error":{"code","message"}}. Causes wrapped in
// an AppError are logged, never returned. Errors that are not AppErrors
// become INTERNAL_ERROR.
func WriteError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if appErr.Internal != nil {
		fields := []interface{}{
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(RequestIDKey),
		}
		// Rate feed outages are expected; keep them out of the error stream.
		if appErr.StatusCode == http.StatusServiceUnavailable {
			logger.Get().Warnw("dependency unavailable", fields...)
		} else {
			logger.Get().Errorw("request failed", fields...)
		}
	}

	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// ErrorHandler renders the last error attached to the gin context when the
// handler chain did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

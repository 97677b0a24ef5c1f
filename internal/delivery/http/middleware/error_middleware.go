package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"status", appErr.Code,
					"path", c.FullPath(),
					"request_id", c.GetString(response.RequestIDKey),
					"error", appErr.Error(),
				)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Internal details stay in the log.
		logger.Log.Error("unhandled error",
			"path", c.FullPath(),
			"request_id", c.GetString(response.RequestIDKey),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

package middleware

import (
	"errors"
	"net/http"

	"hirematrix-backend/internal/delivery/http/response"
	"hirematrix-backend/pkg/apperror"
	"hirematrix-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}

		if appErr != nil && appErr.Code != http.StatusInternalServerError {
			// Upstream failures keep their message; the cause stays in the logs.
			logger.Log.Error("upstream error",
				"request_id", GetRequestID(c),
				"path", c.FullPath(),
				"status", appErr.Code,
				"error", err,
			)
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Internal details never reach the client.
		logger.Log.Error("internal server error",
			"request_id", GetRequestID(c),
			"path", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

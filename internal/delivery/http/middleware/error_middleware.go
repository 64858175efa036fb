package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"resume-ledger-backend/internal/delivery/http/response"
	"resume-ledger-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				log.Error("Request failed", "path", c.FullPath(), "status", appErr.Code, "request_id", requestID(c), "error", appErr.Err)
			}
			// Internal errors keep their generic message
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// SECURITY: Never expose internal error details to clients.
		log.Error("Internal Server Error", "path", c.FullPath(), "request_id", requestID(c), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

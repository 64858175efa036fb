package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"resume-ledger-backend/internal/delivery/http/response"
	"resume-ledger-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// UploadLimit applies the per-IP and per-owner upload windows. The owner is
// read from the :owner path param when the route has one.
func UploadLimit(limiter *security.UploadLimiter, securityLogger *security.SecurityLogger, log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		allowed, retryAfter, err := limiter.AllowUpload(c.Request.Context(), c.ClientIP(), c.Param("owner"))
		if err != nil {
			log.Warn("Upload limiter degraded", "request_id", requestID(c), "error", err)
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			securityLogger.LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				requestID(c),
				c.FullPath(),
			)
			response.Error(c, http.StatusTooManyRequests, "Upload limit reached. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

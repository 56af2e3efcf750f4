package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/delivery/http/dto"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/ratelimit"
)

// Admission applies the per-class request limit before any handler work.
// Throttled requests get 429 with Retry-After in whole seconds.
func Admission(guard *ratelimit.Guard, class ratelimit.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Allow(c.Request.Context(), AdmissionKey(c), class)
		if !decision.Allowed {
			seconds := int(decision.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Code:    "throttled",
				Message: domain.ErrThrottled.Error(),
			})
			return
		}
		c.Next()
	}
}

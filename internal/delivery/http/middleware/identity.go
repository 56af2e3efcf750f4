package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/domain"
)

const (
	apiKeyHeader = "X-API-Key"

	identityKey = "identity"
)

// Identity resolves the caller from the API key header and stores it in the
// request context. Requests without a resolvable key proceed anonymously; the
// admission guard then keys them by client IP.
func Identity(resolver domain.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(apiKeyHeader)
		if apiKey != "" {
			if identity, ok := resolver.Resolve(c.Request.Context(), apiKey); ok {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// AdmissionKey returns the stable key the guard buckets this request under.
func AdmissionKey(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(domain.Identity); ok {
			return identity.ClientID
		}
	}
	return c.ClientIP()
}

// README: Identity middleware; resolves the acting user's display name for order logs.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"cakeline/internal/infra"
)

// ActorKey is the gin context key holding the acting user's display name.
const ActorKey = "actor"

// Identity verifies a Bearer token when a verifier is configured and stores
// the resolved display name. Verification failures do not reject the
// request: the core records the sentinel actor instead, and access control
// lives outside this service.
func Identity(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier != nil {
			header := c.GetHeader("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
				if id, err := verifier.VerifyIDToken(c.Request.Context(), token); err == nil && id.DisplayName != "" {
					c.Set(ActorKey, id.DisplayName)
				}
			}
		}
		c.Next()
	}
}

// Actor returns the resolved display name, or empty when unknown.
func Actor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

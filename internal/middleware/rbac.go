package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
	"github.com/noah-isme/faculty-realloc-api/pkg/response"
)

// RequireRoles only lets callers whose token carries one of roles through.
// Must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireRole allows the request only for one of the given roles. Requests
// that were not authenticated (JWT disabled) pass through.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if GetJWTClaims(c) == nil {
			c.Next()
			return
		}
		if !allowed[GetJWTRole(c)] {
			abortWithError(c, dto.ErrCodeForbidden, "Insufficient role for this operation")
			return
		}
		c.Next()
	}
}

package middleware

import (
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantIDKey holds the resolved tenant id (string) in gin.Context
const TenantIDKey = "tenant_id"

// DevelopmentTenantID is used when neither a token nor a header names a tenant
var DevelopmentTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// tenantUUIDKey holds the parsed tenant id
const tenantUUIDKey = "tenant_uuid"

// Tenant resolves the request's tenant: JWT claim, then X-Tenant-ID, then
// fallback. The header is ignored for authenticated requests.
func Tenant(fallback uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := fallback
		if claimed := c.GetString(JWTTenantIDKey); claimed != "" {
			parsed, err := uuid.Parse(claimed)
			if err != nil {
				abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid tenant in token")
				return
			}
			tenantID = parsed
		} else if header := c.GetHeader(TenantHeader); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				abortWithError(c, dto.ErrCodeBadRequest, "X-Tenant-ID must be a UUID")
				return
			}
			tenantID = parsed
		}

		c.Set(tenantUUIDKey, tenantID)
		c.Set(TenantIDKey, tenantID.String())
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
		c.Next()
	}
}

// GetTenantUUID returns the tenant resolved by Tenant
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(tenantUUIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

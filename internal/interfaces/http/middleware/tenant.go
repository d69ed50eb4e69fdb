package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/cashdesk/internal/infrastructure/logger"
	"github.com/erp/cashdesk/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TenantIDKey is the gin context key of the resolved tenant
	TenantIDKey = "tenant_id"
	// TenantHeaderKey carries the tenant of a request
	TenantHeaderKey = "X-Tenant-ID"
)

// DefaultDevelopmentTenantID is used when no tenant is configured or sent
var DefaultDevelopmentTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// TenantConfig holds configuration for tenant resolution
type TenantConfig struct {
	// DefaultTenantID applies to requests without X-Tenant-ID; uuid.Nil makes the header mandatory
	DefaultTenantID uuid.UUID
	// SkipPaths never need a tenant
	SkipPaths []string
}

// DefaultTenantConfig returns default tenant configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		DefaultTenantID: DefaultDevelopmentTenantID,
		SkipPaths:       []string{"/health", "/api/v1/system"},
	}
}

// Tenant resolves the tenant of each request from X-Tenant-ID
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if header := c.GetHeader(TenantHeaderKey); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil || parsed == uuid.Nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInvalidTenant, "Invalid tenant ID format", GetRequestID(c)))
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInvalidTenant, "Tenant identification required", GetRequestID(c)))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/platform/logger"
)

const tenantKey = "tenant"

// DefaultTenant is used when a request carries no X-Tenant header. Single
// tenant deployments never need to set the header at all.
const DefaultTenant = "root"

type TenantMiddleware struct {
	log *logger.Logger
}

func NewTenantMiddleware(log *logger.Logger) *TenantMiddleware {
	return &TenantMiddleware{log: log.With("Middleware", "TenantMiddleware")}
}

// Resolve pins the tenant for the request from the X-Tenant header.
func (tm *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := c.GetHeader("X-Tenant")
		if tenant == "" {
			tenant = DefaultTenant
		}
		c.Set(tenantKey, tenant)
		c.Next()
	}
}

// Tenant reads the tenant resolved for this request.
func Tenant(c *gin.Context) string {
	if t := c.GetString(tenantKey); t != "" {
		return t
	}
	return DefaultTenant
}

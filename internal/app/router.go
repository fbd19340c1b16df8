package app

import (
	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		UserHandler:       handlers.User,
		AppHandler:        handlers.App,
		LeaseHandler:      handlers.Lease,
		TransferHandler:   handlers.Transfer,
		TenantMiddleware:  middleware.Tenant,
		CATokenMiddleware: middleware.CAToken,
	})
}

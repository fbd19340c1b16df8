package app

import (
	"github.com/calyptra/units-backend/internal/middleware"
	"github.com/calyptra/units-backend/internal/platform/catoken"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type Middleware struct {
	Tenant  *middleware.TenantMiddleware
	CAToken *middleware.CATokenMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Tenant:  middleware.NewTenantMiddleware(log),
		CAToken: middleware.NewCATokenMiddleware(log, catoken.NewVerifier(cfg.CATokenSecret)),
	}
}

package app

import (
	"github.com/calyptra/units-backend/internal/handlers"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type Handlers struct {
	User     *handlers.UserHandler
	App      *handlers.AppHandler
	Lease    *handlers.LeaseHandler
	Transfer *handlers.TransferHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		User:     handlers.NewUserHandler(services.Ledger),
		App:      handlers.NewAppHandler(services.App, services.Usage),
		Lease:    handlers.NewLeaseHandler(services.Lease),
		Transfer: handlers.NewTransferHandler(services.Transfer),
	}
}

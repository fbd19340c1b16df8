package app

import (
	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/jobs/usagejob"
	"github.com/calyptra/units-backend/internal/platform/logger"
	"github.com/calyptra/units-backend/internal/services"
)

type Services struct {
	Ledger   services.LedgerService
	App      services.AppService
	Lease    services.LeaseService
	Transfer services.TransferService
	Usage    services.UsageService

	UsageWorker *usagejob.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) Services {
	log.Info("Wiring services...")
	usageService := services.NewUsageService(log, db, repos.App, repos.Lease, repos.Usage)
	return Services{
		Ledger:   services.NewLedgerService(log, db, cfg.Engine, repos.Ledger, repos.Nonce, repos.Reputation, repos.App, repos.Lease, repos.Transfer),
		App:      services.NewAppService(log, db, cfg.Engine, repos.Ledger, repos.App, repos.Usage),
		Lease:    services.NewLeaseService(log, db, cfg.Engine, repos.Ledger, repos.App, repos.Lease),
		Transfer: services.NewTransferService(log, db, cfg.Engine, repos.Ledger, repos.Nonce, repos.Reputation, repos.Transfer),
		Usage:    usageService,

		UsageWorker: usagejob.NewWorker(log, cfg.UsageInterval, usageService, repos.Ledger),
	}
}

package app

import (
	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/data/repos/apps"
	"github.com/calyptra/units-backend/internal/data/repos/leases"
	"github.com/calyptra/units-backend/internal/data/repos/ledger"
	"github.com/calyptra/units-backend/internal/data/repos/transfers"
	"github.com/calyptra/units-backend/internal/data/repos/usage"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type Repos struct {
	Ledger     ledger.LedgerRepo
	Nonce      ledger.NonceRepo
	Reputation ledger.ReputationRepo
	App        apps.AppRepo
	Lease      leases.LeaseRepo
	Transfer   transfers.TransferRepo
	Usage      usage.UsageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Ledger:     ledger.NewLedgerRepo(db, log),
		Nonce:      ledger.NewNonceRepo(db, log),
		Reputation: ledger.NewReputationRepo(db, log),
		App:        apps.NewAppRepo(db, log),
		Lease:      leases.NewLeaseRepo(db, log),
		Transfer:   transfers.NewTransferRepo(db, log),
		Usage:      usage.NewUsageRepo(db, log),
	}
}

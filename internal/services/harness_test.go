package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/data/repos/apps"
	"github.com/calyptra/units-backend/internal/data/repos/leases"
	"github.com/calyptra/units-backend/internal/data/repos/ledger"
	"github.com/calyptra/units-backend/internal/data/repos/testutil"
	"github.com/calyptra/units-backend/internal/data/repos/transfers"
	"github.com/calyptra/units-backend/internal/data/repos/usage"
)

// harness wires the full service stack against the test database. Services
// commit their own transactions, so isolation comes from a throwaway tenant
// per test instead of a rolled-back tx.
type harness struct {
	db     *gorm.DB
	tenant string
	cfg    Config

	ledgerRepo ledger.LedgerRepo
	repRepo    ledger.ReputationRepo

	ledger    LedgerService
	apps      AppService
	leases    LeaseService
	transfers TransferService
	usage     UsageService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	cfg := DefaultConfig()

	ledgerRepo := ledger.NewLedgerRepo(db, log)
	nonceRepo := ledger.NewNonceRepo(db, log)
	repRepo := ledger.NewReputationRepo(db, log)
	appRepo := apps.NewAppRepo(db, log)
	leaseRepo := leases.NewLeaseRepo(db, log)
	transferRepo := transfers.NewTransferRepo(db, log)
	usageRepo := usage.NewUsageRepo(db, log)

	return &harness{
		db:         db,
		tenant:     "t-" + uuid.NewString(),
		cfg:        cfg,
		ledgerRepo: ledgerRepo,
		repRepo:    repRepo,
		ledger:     NewLedgerService(log, db, cfg, ledgerRepo, nonceRepo, repRepo, appRepo, leaseRepo, transferRepo),
		apps:       NewAppService(log, db, cfg, ledgerRepo, appRepo, usageRepo),
		leases:     NewLeaseService(log, db, cfg, ledgerRepo, appRepo, leaseRepo),
		transfers:  NewTransferService(log, db, cfg, ledgerRepo, nonceRepo, repRepo, transferRepo),
		usage:      NewUsageService(log, db, appRepo, leaseRepo, usageRepo),
	}
}

func (h *harness) balance(t *testing.T, user string) float64 {
	t.Helper()
	acct, err := h.ledgerRepo.GetAccount(context.Background(), nil, h.tenant, user)
	if err != nil {
		t.Fatalf("get account %s: %v", user, err)
	}
	if acct == nil {
		t.Fatalf("account %s does not exist", user)
	}
	return acct.Balance
}

func (h *harness) register(t *testing.T, users ...string) {
	t.Helper()
	for _, u := range users {
		if err := h.ledger.RegisterUser(context.Background(), h.tenant, u); err != nil {
			t.Fatalf("register user %s: %v", u, err)
		}
	}
}

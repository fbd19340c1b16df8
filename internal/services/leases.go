package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/data/repos/apps"
	"github.com/calyptra/units-backend/internal/data/repos/leases"
	"github.com/calyptra/units-backend/internal/data/repos/ledger"
	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/domain/names"
	"github.com/calyptra/units-backend/internal/domain/usererr"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

// renewFee is the flat price of one lease renewal, and also of one lapsed
// app-registration renewal. Always one unit.
const renewFee = 1

// LeaseService owns per-instance leases and their renewal billing.
type LeaseService interface {
	RegisterCA(ctx context.Context, tenant, fqn string) (float64, error)
	UnregisterCA(ctx context.Context, tenant, fqn string) error
	CheckCA(ctx context.Context, tenant, fqn string) (float64, error)
	DescribeCA(ctx context.Context, tenant, fqn string) (*domain.Lease, error)
	ListCAs(ctx context.Context, tenant, owner string) ([]*domain.Lease, error)
}

type leaseService struct {
	log        *logger.Logger
	db         *gorm.DB
	cfg        Config
	ledgerRepo ledger.LedgerRepo
	appRepo    apps.AppRepo
	leaseRepo  leases.LeaseRepo
}

func NewLeaseService(
	log *logger.Logger,
	db *gorm.DB,
	cfg Config,
	ledgerRepo ledger.LedgerRepo,
	appRepo apps.AppRepo,
	leaseRepo leases.LeaseRepo,
) LeaseService {
	return &leaseService{
		log:        log,
		db:         db,
		cfg:        cfg,
		ledgerRepo: ledgerRepo,
		appRepo:    appRepo,
		leaseRepo:  leaseRepo,
	}
}

// RegisterCA renews the lease for one app instance and returns its expiry in
// fractional days since the epoch. A still-current lease renews for free. An
// expired (or absent) lease costs the owner one unit, buys the app's
// days-per-unit worth of time, and credits the author their profit share.
//
// When the app's own registration has lapsed, the author is first charged a
// one-unit registration renewal. That charge runs in its own transaction and
// sticks even when the owner then turns out to have no balance: a lapsed app
// whose users cannot pay still bleeds its author until it is unregistered.
// Callers retrying after an error will not be double-charged beyond that,
// and concurrent renewals of the same lease settle to a single charge.
func (s *leaseService) RegisterCA(ctx context.Context, tenant, fqn string) (float64, error) {
	ln, err := names.SplitFQN(fqn)
	if err != nil {
		return 0, err
	}
	now := nowDays(time.Now())

	var (
		current float64
		renewed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lease, err := s.leaseRepo.GetForUpdate(ctx, tx, tenant, fqn)
		if err != nil {
			return err
		}
		if lease != nil && lease.Expiry >= now {
			current = lease.Expiry
			renewed = true
			return nil
		}
		app, err := s.appRepo.GetForUpdate(ctx, tx, tenant, ln.AppName())
		if err != nil {
			return err
		}
		if app == nil {
			return usererr.ErrAppNotFound
		}
		if app.RegistrationExpiry < now {
			if err := s.appRepo.UpdateFields(ctx, tx, tenant, app.FullName, map[string]interface{}{
				"registration_expiry": now + s.cfg.AppRegistrationDays,
			}); err != nil {
				return err
			}
			if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, app.Publisher, -renewFee, "renewAppRegistration"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if renewed {
		return current, nil
	}

	var expiry float64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check under lock: a concurrent call may have renewed (and paid)
		// between the two transactions. A current lease renews for free.
		lease, err := s.leaseRepo.GetForUpdate(ctx, tx, tenant, fqn)
		if err != nil {
			return err
		}
		if lease != nil && lease.Expiry >= now {
			expiry = lease.Expiry
			return nil
		}
		app, err := s.appRepo.GetForUpdate(ctx, tx, tenant, ln.AppName())
		if err != nil {
			return err
		}
		if app == nil {
			return usererr.ErrAppNotFound
		}
		owner, err := s.ledgerRepo.GetAccountForUpdate(ctx, tx, tenant, ln.CAOwner)
		if err != nil {
			return err
		}
		if owner == nil || owner.Balance < renewFee {
			return usererr.ErrInsufficientBalance
		}
		if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, ln.CAOwner, -renewFee, "renewCA"); err != nil {
			return err
		}
		share := app.ProfitShare
		if share <= 0 {
			share = s.cfg.WriterProfitFraction
		}
		if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, app.Publisher, renewFee*share, "renewCA"); err != nil {
			return err
		}
		expiry = now + app.CostPerUnit
		if lease == nil {
			return s.leaseRepo.Create(ctx, tx, &domain.Lease{
				Tenant:  tenant,
				FQN:     fqn,
				AppName: ln.AppName(),
				Owner:   ln.CAOwner,
				Expiry:  expiry,
			})
		}
		return s.leaseRepo.UpdateExpiry(ctx, tx, tenant, fqn, expiry)
	})
	if err != nil {
		return 0, err
	}
	return expiry, nil
}

// UnregisterCA drops the lease outright. No refund for remaining time.
func (s *leaseService) UnregisterCA(ctx context.Context, tenant, fqn string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.leaseRepo.Delete(ctx, tx, tenant, fqn)
	})
}

// CheckCA reports the lease expiry in days since the epoch, or -1 when the
// lease is missing or already past due.
func (s *leaseService) CheckCA(ctx context.Context, tenant, fqn string) (float64, error) {
	lease, err := s.leaseRepo.Get(ctx, nil, tenant, fqn)
	if err != nil {
		return 0, err
	}
	if lease == nil || lease.Expiry < nowDays(time.Now()) {
		return -1, nil
	}
	return lease.Expiry, nil
}

func (s *leaseService) DescribeCA(ctx context.Context, tenant, fqn string) (*domain.Lease, error) {
	return s.leaseRepo.Get(ctx, nil, tenant, fqn)
}

// ListCAs returns the leases owned by one user, or every lease in the tenant
// when owner is empty.
func (s *leaseService) ListCAs(ctx context.Context, tenant, owner string) ([]*domain.Lease, error) {
	if owner == "" {
		return s.leaseRepo.ListAll(ctx, nil, tenant)
	}
	return s.leaseRepo.ListByOwner(ctx, nil, tenant, owner)
}

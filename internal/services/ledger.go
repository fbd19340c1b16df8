package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/data/repos/apps"
	"github.com/calyptra/units-backend/internal/data/repos/leases"
	"github.com/calyptra/units-backend/internal/data/repos/ledger"
	"github.com/calyptra/units-backend/internal/data/repos/transfers"
	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/domain/usererr"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

// LedgerService owns user accounts and the unit supply.
type LedgerService interface {
	RegisterUser(ctx context.Context, tenant, user string) error
	AddUnits(ctx context.Context, tenant, nonce, user string, units float64) error
	RemoveUnits(ctx context.Context, tenant, nonce, user string, units float64) error
	ChangeUnits(ctx context.Context, tenant, nonce, user string, units float64) error
	DescribeUser(ctx context.Context, tenant, user string) (*domain.Account, error)
	ListUsers(ctx context.Context, tenant string) ([]string, error)
	DescribeAllocated(ctx context.Context, tenant string) (float64, error)
	DescribeReputation(ctx context.Context, tenant, user string) (*domain.Reputation, error)
	AuditTrail(ctx context.Context, tenant, user string) ([]*domain.AuditEntry, error)
	GetUserInfo(ctx context.Context, tenant, user string) (*domain.UserInfo, error)
}

type ledgerService struct {
	log          *logger.Logger
	db           *gorm.DB
	cfg          Config
	ledgerRepo   ledger.LedgerRepo
	nonceRepo    ledger.NonceRepo
	repRepo      ledger.ReputationRepo
	appRepo      apps.AppRepo
	leaseRepo    leases.LeaseRepo
	transferRepo transfers.TransferRepo
}

func NewLedgerService(
	log *logger.Logger,
	db *gorm.DB,
	cfg Config,
	ledgerRepo ledger.LedgerRepo,
	nonceRepo ledger.NonceRepo,
	repRepo ledger.ReputationRepo,
	appRepo apps.AppRepo,
	leaseRepo leases.LeaseRepo,
	transferRepo transfers.TransferRepo,
) LedgerService {
	return &ledgerService{
		log:          log,
		db:           db,
		cfg:          cfg,
		ledgerRepo:   ledgerRepo,
		nonceRepo:    nonceRepo,
		repRepo:      repRepo,
		appRepo:      appRepo,
		leaseRepo:    leaseRepo,
		transferRepo: transferRepo,
	}
}

// RegisterUser creates the account with the default balance grant. Calling it
// again for an existing user is a no-op, so clients may retry freely.
func (s *ledgerService) RegisterUser(ctx context.Context, tenant, user string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := s.ledgerRepo.GetAccountForUpdate(ctx, tx, tenant, user)
		if err != nil {
			return err
		}
		if acct == nil {
			if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, user, s.cfg.DefaultUnits, "newUser"); err != nil {
				return err
			}
		}
		return s.repRepo.EnsureExists(ctx, tx, tenant, user)
	})
}

// AddUnits mints units into a user's balance. The nonce makes retries safe:
// a replayed nonce is absorbed without a second credit.
func (s *ledgerService) AddUnits(ctx context.Context, tenant, nonce, user string, units float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := s.nonceRepo.Fresh(ctx, tx, tenant, user, nonce)
		if err != nil || !fresh {
			return err
		}
		_, _, err = s.ledgerRepo.ApplyDelta(ctx, tx, tenant, user, units, "addUnits")
		return err
	})
}

// RemoveUnits burns units from a user's balance, refusing to drive it
// negative.
func (s *ledgerService) RemoveUnits(ctx context.Context, tenant, nonce, user string, units float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := s.nonceRepo.Fresh(ctx, tx, tenant, user, nonce)
		if err != nil || !fresh {
			return err
		}
		acct, err := s.ledgerRepo.GetAccountForUpdate(ctx, tx, tenant, user)
		if err != nil {
			return err
		}
		if acct == nil {
			return usererr.ErrUserNotFound
		}
		if acct.Balance < units {
			return usererr.ErrInsufficientBalance
		}
		_, _, err = s.ledgerRepo.ApplyDelta(ctx, tx, tenant, user, -units, "removeUnits")
		return err
	})
}

// ChangeUnits dispatches on sign: a non-negative delta mints, a negative one
// burns.
func (s *ledgerService) ChangeUnits(ctx context.Context, tenant, nonce, user string, units float64) error {
	if units < 0 {
		return s.RemoveUnits(ctx, tenant, nonce, user, -units)
	}
	return s.AddUnits(ctx, tenant, nonce, user, units)
}

func (s *ledgerService) DescribeUser(ctx context.Context, tenant, user string) (*domain.Account, error) {
	return s.ledgerRepo.GetAccount(ctx, nil, tenant, user)
}

func (s *ledgerService) ListUsers(ctx context.Context, tenant string) ([]string, error) {
	return s.ledgerRepo.ListUsers(ctx, nil, tenant)
}

func (s *ledgerService) DescribeAllocated(ctx context.Context, tenant string) (float64, error) {
	return s.ledgerRepo.Allocated(ctx, nil, tenant)
}

func (s *ledgerService) DescribeReputation(ctx context.Context, tenant, user string) (*domain.Reputation, error) {
	return s.repRepo.Get(ctx, nil, tenant, user)
}

func (s *ledgerService) AuditTrail(ctx context.Context, tenant, user string) ([]*domain.AuditEntry, error) {
	return s.ledgerRepo.AuditTrail(ctx, nil, tenant, user)
}

// GetUserInfo assembles the full picture of a user in one call: balance,
// published apps with their registration expiry, owned leases with their
// expiry, pending transfers on both sides, and reputation. The reads fan out
// concurrently and are individually consistent, not a single snapshot.
func (s *ledgerService) GetUserInfo(ctx context.Context, tenant, user string) (*domain.UserInfo, error) {
	info := &domain.UserInfo{
		Apps:    map[string]float64{},
		CAs:     map[string]float64{},
		Offers:  map[string]*domain.Transfer{},
		Accepts: map[string]*domain.Transfer{},
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acct, err := s.ledgerRepo.GetAccount(gctx, nil, tenant, user)
		if err != nil {
			return err
		}
		if acct != nil {
			info.User = acct.Balance
		}
		return nil
	})
	g.Go(func() error {
		published, err := s.appRepo.ListByPublisher(gctx, nil, tenant, user)
		if err != nil {
			return err
		}
		for _, a := range published {
			info.Apps[a.FullName] = a.RegistrationExpiry
		}
		return nil
	})
	g.Go(func() error {
		owned, err := s.leaseRepo.ListByOwner(gctx, nil, tenant, user)
		if err != nil {
			return err
		}
		for _, l := range owned {
			info.CAs[l.FQN] = l.Expiry
		}
		return nil
	})
	g.Go(func() error {
		offers, err := s.transferRepo.ListFrom(gctx, nil, tenant, user)
		if err != nil {
			return err
		}
		for _, t := range offers {
			info.Offers[t.TID] = t
		}
		return nil
	})
	g.Go(func() error {
		accepts, err := s.transferRepo.ListTo(gctx, nil, tenant, user)
		if err != nil {
			return err
		}
		for _, t := range accepts {
			info.Accepts[t.TID] = t
		}
		return nil
	})
	g.Go(func() error {
		rep, err := s.repRepo.Get(gctx, nil, tenant, user)
		if err != nil {
			return err
		}
		info.Reputation = rep
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return info, nil
}

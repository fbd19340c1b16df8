package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/data/repos/ledger"
	"github.com/calyptra/units-backend/internal/data/repos/transfers"
	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/domain/usererr"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

// TransferService runs the escrow state machine between pairs of users.
// A transfer holds units out of circulation until it is accepted, disputed
// or reclaimed; terminal transfers leave no row behind, so every transition
// treats a missing record as already settled and does nothing.
type TransferService interface {
	TransferUnits(ctx context.Context, tenant, nonce, from, to string, units float64, tid string) error
	ReleaseTransfer(ctx context.Context, tenant, from, tid string) error
	AcceptTransfer(ctx context.Context, tenant, to, tid string) error
	DisputeTransfer(ctx context.Context, tenant, to, tid string) error
	ExpireTransfer(ctx context.Context, tenant, from, tid string, nowMs int64) error
	DescribeTransfer(ctx context.Context, tenant, tid string) (*domain.Transfer, error)
	ListOffers(ctx context.Context, tenant, from string) (map[string]*domain.Transfer, error)
	ListAccepts(ctx context.Context, tenant, to string) (map[string]*domain.Transfer, error)
}

type transferService struct {
	log          *logger.Logger
	db           *gorm.DB
	cfg          Config
	ledgerRepo   ledger.LedgerRepo
	nonceRepo    ledger.NonceRepo
	repRepo      ledger.ReputationRepo
	transferRepo transfers.TransferRepo
}

func NewTransferService(
	log *logger.Logger,
	db *gorm.DB,
	cfg Config,
	ledgerRepo ledger.LedgerRepo,
	nonceRepo ledger.NonceRepo,
	repRepo ledger.ReputationRepo,
	transferRepo transfers.TransferRepo,
) TransferService {
	return &transferService{
		log:          log,
		db:           db,
		cfg:          cfg,
		ledgerRepo:   ledgerRepo,
		nonceRepo:    nonceRepo,
		repRepo:      repRepo,
		transferRepo: transferRepo,
	}
}

// TransferUnits opens an escrow: the sender is debited immediately and the
// units sit in the transfer record until a terminal transition. The nonce is
// scoped to the sender, so a retried call is absorbed without a second debit.
func (s *transferService) TransferUnits(ctx context.Context, tenant, nonce, from, to string, units float64, tid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := s.nonceRepo.Fresh(ctx, tx, tenant, from, nonce)
		if err != nil || !fresh {
			return err
		}
		acct, err := s.ledgerRepo.GetAccountForUpdate(ctx, tx, tenant, from)
		if err != nil {
			return err
		}
		// An unregistered sender has no balance to escrow.
		if acct == nil || acct.Balance < units {
			return usererr.ErrInsufficientBalance
		}
		if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, from, -units, "transferUnits"); err != nil {
			return err
		}
		return s.transferRepo.Create(ctx, tx, &domain.Transfer{
			Tenant:    tenant,
			TID:       tid,
			FromUser:  from,
			ToUser:    to,
			Units:     units,
			ExpiresMs: time.Now().UnixMilli() + s.cfg.HoldTime.Milliseconds(),
			Released:  false,
		})
	})
}

// ReleaseTransfer marks the sender's side done, opening the window in which
// the recipient may accept.
func (s *transferService) ReleaseTransfer(ctx context.Context, tenant, from, tid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.transferRepo.GetForUpdate(ctx, tx, tenant, tid)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		if t.FromUser != from {
			return usererr.ErrUserMismatch
		}
		if t.Released {
			return nil
		}
		return s.transferRepo.SetReleased(ctx, tx, tenant, tid)
	})
}

// AcceptTransfer settles a released escrow in the recipient's favor: the
// held units are credited to the recipient and both parties gain a completed
// mark on their reputation.
func (s *transferService) AcceptTransfer(ctx context.Context, tenant, to, tid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.transferRepo.GetForUpdate(ctx, tx, tenant, tid)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		if t.ToUser != to {
			return usererr.ErrUserMismatch
		}
		if !t.Released {
			return usererr.ErrTransferNotReleased
		}
		if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, t.ToUser, t.Units, "acceptTransfer"); err != nil {
			return err
		}
		if err := s.bumpBoth(ctx, tx, tenant, t, ledger.RepCompleted); err != nil {
			return err
		}
		return s.transferRepo.Delete(ctx, tx, tenant, tid)
	})
}

// DisputeTransfer lets the recipient refuse an escrow that has not been
// released yet: the units flow back to the sender and both parties gain a
// disputed mark.
func (s *transferService) DisputeTransfer(ctx context.Context, tenant, to, tid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.transferRepo.GetForUpdate(ctx, tx, tenant, tid)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		if t.ToUser != to {
			return usererr.ErrUserMismatch
		}
		if t.Released {
			return usererr.ErrAlreadyReleased
		}
		if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, t.FromUser, t.Units, "disputeTransfer"); err != nil {
			return err
		}
		if err := s.bumpBoth(ctx, tx, tenant, t, ledger.RepDisputed); err != nil {
			return err
		}
		return s.transferRepo.Delete(ctx, tx, tenant, tid)
	})
}

// ExpireTransfer lets the sender reclaim an escrow whose hold window has
// passed. It deliberately ignores the released flag: a recipient who released
// nothing and vanished must not be able to strand the units. A zero nowMs
// means server time.
func (s *transferService) ExpireTransfer(ctx context.Context, tenant, from, tid string, nowMs int64) error {
	if nowMs == 0 {
		nowMs = time.Now().UnixMilli()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.transferRepo.GetForUpdate(ctx, tx, tenant, tid)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		if t.FromUser != from {
			return usererr.ErrUserMismatch
		}
		if nowMs < t.ExpiresMs {
			return usererr.ErrTransferNotExpired
		}
		if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, t.FromUser, t.Units, "expireTransfer"); err != nil {
			return err
		}
		if err := s.bumpBoth(ctx, tx, tenant, t, ledger.RepExpired); err != nil {
			return err
		}
		return s.transferRepo.Delete(ctx, tx, tenant, tid)
	})
}

func (s *transferService) bumpBoth(ctx context.Context, tx *gorm.DB, tenant string, t *domain.Transfer, counter string) error {
	if err := s.repRepo.Increment(ctx, tx, tenant, t.FromUser, counter); err != nil {
		return err
	}
	return s.repRepo.Increment(ctx, tx, tenant, t.ToUser, counter)
}

func (s *transferService) DescribeTransfer(ctx context.Context, tenant, tid string) (*domain.Transfer, error) {
	return s.transferRepo.Get(ctx, nil, tenant, tid)
}

func (s *transferService) ListOffers(ctx context.Context, tenant, from string) (map[string]*domain.Transfer, error) {
	list, err := s.transferRepo.ListFrom(ctx, nil, tenant, from)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Transfer, len(list))
	for _, t := range list {
		out[t.TID] = t
	}
	return out, nil
}

func (s *transferService) ListAccepts(ctx context.Context, tenant, to string) (map[string]*domain.Transfer, error) {
	list, err := s.transferRepo.ListTo(ctx, nil, tenant, to)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Transfer, len(list))
	for _, t := range list {
		out[t.TID] = t
	}
	return out, nil
}

package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

// Reputation counter columns.
const (
	RepCompleted = "completed"
	RepDisputed  = "disputed"
	RepExpired   = "expired"
)

type ReputationRepo interface {
	EnsureExists(ctx context.Context, tx *gorm.DB, tenant, user string) error
	Increment(ctx context.Context, tx *gorm.DB, tenant, user, counter string) error
	Get(ctx context.Context, tx *gorm.DB, tenant, user string) (*domain.Reputation, error)
}

type reputationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReputationRepo(db *gorm.DB, baseLog *logger.Logger) ReputationRepo {
	return &reputationRepo{db: db, log: baseLog.With("repo", "ReputationRepo")}
}

func (rr *reputationRepo) EnsureExists(ctx context.Context, tx *gorm.DB, tenant, user string) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var existing domain.Reputation
	err := transaction.WithContext(ctx).
		Where("tenant = ? AND user_name = ?", tenant, user).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return transaction.WithContext(ctx).
		Create(&domain.Reputation{Tenant: tenant, User: user}).Error
}

func (rr *reputationRepo) Increment(ctx context.Context, tx *gorm.DB, tenant, user, counter string) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	switch counter {
	case RepCompleted, RepDisputed, RepExpired:
	default:
		return errors.New("unknown reputation counter " + counter)
	}

	if err := rr.EnsureExists(ctx, transaction, tenant, user); err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Model(&domain.Reputation{}).
		Where("tenant = ? AND user_name = ?", tenant, user).
		Update(counter, gorm.Expr(counter+" + 1")).Error
}

func (rr *reputationRepo) Get(ctx context.Context, tx *gorm.DB, tenant, user string) (*domain.Reputation, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var rep domain.Reputation
	err := transaction.WithContext(ctx).
		Where("tenant = ? AND user_name = ?", tenant, user).
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

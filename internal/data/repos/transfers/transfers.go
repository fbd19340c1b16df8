// Package transfers stores pending escrow transfers. A transfer row only
// exists while the transfer is pending; deletion is the terminal-state
// transition.
package transfers

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type TransferRepo interface {
	Create(ctx context.Context, tx *gorm.DB, transfer *domain.Transfer) error
	Get(ctx context.Context, tx *gorm.DB, tenant, tid string) (*domain.Transfer, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, tenant, tid string) (*domain.Transfer, error)
	SetReleased(ctx context.Context, tx *gorm.DB, tenant, tid string) error
	Delete(ctx context.Context, tx *gorm.DB, tenant, tid string) error
	ListFrom(ctx context.Context, tx *gorm.DB, tenant, user string) ([]*domain.Transfer, error)
	ListTo(ctx context.Context, tx *gorm.DB, tenant, user string) ([]*domain.Transfer, error)
}

type transferRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransferRepo(db *gorm.DB, baseLog *logger.Logger) TransferRepo {
	return &transferRepo{db: db, log: baseLog.With("repo", "TransferRepo")}
}

func (tr *transferRepo) Create(ctx context.Context, tx *gorm.DB, transfer *domain.Transfer) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(ctx).Create(transfer).Error
}

func (tr *transferRepo) Get(ctx context.Context, tx *gorm.DB, tenant, tid string) (*domain.Transfer, error) {
	return tr.get(ctx, tx, tenant, tid, false)
}

func (tr *transferRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, tenant, tid string) (*domain.Transfer, error) {
	return tr.get(ctx, tx, tenant, tid, true)
}

func (tr *transferRepo) get(ctx context.Context, tx *gorm.DB, tenant, tid string, lock bool) (*domain.Transfer, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	q := transaction.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var transfer domain.Transfer
	err := q.Where("tenant = ? AND tid = ?", tenant, tid).First(&transfer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (tr *transferRepo) SetReleased(ctx context.Context, tx *gorm.DB, tenant, tid string) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Transfer{}).
		Where("tenant = ? AND tid = ?", tenant, tid).
		Update("released", true).Error
}

func (tr *transferRepo) Delete(ctx context.Context, tx *gorm.DB, tenant, tid string) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(ctx).
		Where("tenant = ? AND tid = ?", tenant, tid).
		Delete(&domain.Transfer{}).Error
}

func (tr *transferRepo) ListFrom(ctx context.Context, tx *gorm.DB, tenant, user string) ([]*domain.Transfer, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*domain.Transfer
	if err := transaction.WithContext(ctx).
		Where("tenant = ? AND from_user = ?", tenant, user).
		Order("tid").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *transferRepo) ListTo(ctx context.Context, tx *gorm.DB, tenant, user string) ([]*domain.Transfer, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*domain.Transfer
	if err := transaction.WithContext(ctx).
		Where("tenant = ? AND to_user = ?", tenant, user).
		Order("tid").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

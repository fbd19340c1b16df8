// Package leases stores per-instance leases keyed by FQN.
package leases

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type LeaseRepo interface {
	Get(ctx context.Context, tx *gorm.DB, tenant, fqn string) (*domain.Lease, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, tenant, fqn string) (*domain.Lease, error)
	Create(ctx context.Context, tx *gorm.DB, lease *domain.Lease) error
	UpdateExpiry(ctx context.Context, tx *gorm.DB, tenant, fqn string, expiry float64) error
	Delete(ctx context.Context, tx *gorm.DB, tenant, fqn string) error
	ListByOwner(ctx context.Context, tx *gorm.DB, tenant, owner string) ([]*domain.Lease, error)
	ListAll(ctx context.Context, tx *gorm.DB, tenant string) ([]*domain.Lease, error)
}

type leaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeaseRepo(db *gorm.DB, baseLog *logger.Logger) LeaseRepo {
	return &leaseRepo{db: db, log: baseLog.With("repo", "LeaseRepo")}
}

func (lr *leaseRepo) Get(ctx context.Context, tx *gorm.DB, tenant, fqn string) (*domain.Lease, error) {
	return lr.get(ctx, tx, tenant, fqn, false)
}

func (lr *leaseRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, tenant, fqn string) (*domain.Lease, error) {
	return lr.get(ctx, tx, tenant, fqn, true)
}

func (lr *leaseRepo) get(ctx context.Context, tx *gorm.DB, tenant, fqn string, lock bool) (*domain.Lease, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	q := transaction.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var lease domain.Lease
	err := q.Where("tenant = ? AND fqn = ?", tenant, fqn).First(&lease).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

func (lr *leaseRepo) Create(ctx context.Context, tx *gorm.DB, lease *domain.Lease) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).Create(lease).Error
}

func (lr *leaseRepo) UpdateExpiry(ctx context.Context, tx *gorm.DB, tenant, fqn string, expiry float64) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Lease{}).
		Where("tenant = ? AND fqn = ?", tenant, fqn).
		Update("expiry", expiry).Error
}

func (lr *leaseRepo) Delete(ctx context.Context, tx *gorm.DB, tenant, fqn string) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).
		Where("tenant = ? AND fqn = ?", tenant, fqn).
		Delete(&domain.Lease{}).Error
}

func (lr *leaseRepo) ListByOwner(ctx context.Context, tx *gorm.DB, tenant, owner string) ([]*domain.Lease, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*domain.Lease
	if err := transaction.WithContext(ctx).
		Where("tenant = ? AND owner = ?", tenant, owner).
		Order("fqn").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *leaseRepo) ListAll(ctx context.Context, tx *gorm.DB, tenant string) ([]*domain.Lease, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*domain.Lease
	if err := transaction.WithContext(ctx).
		Where("tenant = ?", tenant).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

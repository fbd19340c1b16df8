// Package usage stores append-only per-app usage samples.
package usage

import (
	"context"

	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type UsageRepo interface {
	Append(ctx context.Context, tx *gorm.DB, sample *domain.AppUsageSample) error
	ListByApp(ctx context.Context, tx *gorm.DB, tenant, appName string) ([]*domain.AppUsageSample, error)
	ListAll(ctx context.Context, tx *gorm.DB, tenant string) ([]*domain.AppUsageSample, error)
	DeleteForApp(ctx context.Context, tx *gorm.DB, tenant, appName string) error
}

type usageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageRepo(db *gorm.DB, baseLog *logger.Logger) UsageRepo {
	return &usageRepo{db: db, log: baseLog.With("repo", "UsageRepo")}
}

func (ur *usageRepo) Append(ctx context.Context, tx *gorm.DB, sample *domain.AppUsageSample) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).Create(sample).Error
}

func (ur *usageRepo) ListByApp(ctx context.Context, tx *gorm.DB, tenant, appName string) ([]*domain.AppUsageSample, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*domain.AppUsageSample
	if err := transaction.WithContext(ctx).
		Where("tenant = ? AND app_name = ?", tenant, appName).
		Order("timestamp_ms").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *usageRepo) ListAll(ctx context.Context, tx *gorm.DB, tenant string) ([]*domain.AppUsageSample, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*domain.AppUsageSample
	if err := transaction.WithContext(ctx).
		Where("tenant = ?", tenant).
		Order("app_name, timestamp_ms").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *usageRepo) DeleteForApp(ctx context.Context, tx *gorm.DB, tenant, appName string) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).
		Where("tenant = ? AND app_name = ?", tenant, appName).
		Delete(&domain.AppUsageSample{}).Error
}

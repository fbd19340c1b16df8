// Package apps is the registry of published applications.
package apps

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type AppRepo interface {
	Create(ctx context.Context, tx *gorm.DB, app *domain.App) error
	Get(ctx context.Context, tx *gorm.DB, tenant, fullName string) (*domain.App, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, tenant, fullName string) (*domain.App, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, tenant, fullName string, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, tenant, fullName string) error
	ListByPublisher(ctx context.Context, tx *gorm.DB, tenant, publisher string) ([]*domain.App, error)
	ListAll(ctx context.Context, tx *gorm.DB, tenant string) ([]*domain.App, error)
}

type appRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppRepo(db *gorm.DB, baseLog *logger.Logger) AppRepo {
	return &appRepo{db: db, log: baseLog.With("repo", "AppRepo")}
}

func (ar *appRepo) Create(ctx context.Context, tx *gorm.DB, app *domain.App) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).Create(app).Error
}

func (ar *appRepo) Get(ctx context.Context, tx *gorm.DB, tenant, fullName string) (*domain.App, error) {
	return ar.get(ctx, tx, tenant, fullName, false)
}

func (ar *appRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, tenant, fullName string) (*domain.App, error) {
	return ar.get(ctx, tx, tenant, fullName, true)
}

func (ar *appRepo) get(ctx context.Context, tx *gorm.DB, tenant, fullName string, lock bool) (*domain.App, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	q := transaction.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var app domain.App
	err := q.Where("tenant = ? AND full_name = ?", tenant, fullName).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (ar *appRepo) UpdateFields(ctx context.Context, tx *gorm.DB, tenant, fullName string, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.App{}).
		Where("tenant = ? AND full_name = ?", tenant, fullName).
		Updates(fields).Error
}

func (ar *appRepo) Delete(ctx context.Context, tx *gorm.DB, tenant, fullName string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Where("tenant = ? AND full_name = ?", tenant, fullName).
		Delete(&domain.App{}).Error
}

func (ar *appRepo) ListByPublisher(ctx context.Context, tx *gorm.DB, tenant, publisher string) ([]*domain.App, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*domain.App
	if err := transaction.WithContext(ctx).
		Where("tenant = ? AND publisher = ?", tenant, publisher).
		Order("full_name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *appRepo) ListAll(ctx context.Context, tx *gorm.DB, tenant string) ([]*domain.App, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*domain.App
	if err := transaction.WithContext(ctx).
		Where("tenant = ?", tenant).
		Order("full_name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

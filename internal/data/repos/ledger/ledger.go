// Package ledger is the balance store. ApplyDelta is the only write path
// for any account balance: it locks the account row, moves the balance,
// bumps the tenant's allocated counter and appends an audit entry, all
// inside the caller's transaction.
package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

type LedgerRepo interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, tenant, user string, delta float64, reason string) (old, new float64, err error)
	GetAccountForUpdate(ctx context.Context, tx *gorm.DB, tenant, user string) (*domain.Account, error)
	GetAccount(ctx context.Context, tx *gorm.DB, tenant, user string) (*domain.Account, error)
	CreateAccount(ctx context.Context, tx *gorm.DB, account *domain.Account) error
	ListUsers(ctx context.Context, tx *gorm.DB, tenant string) ([]string, error)
	ListTenants(ctx context.Context, tx *gorm.DB) ([]string, error)
	Allocated(ctx context.Context, tx *gorm.DB, tenant string) (float64, error)
	AuditTrail(ctx context.Context, tx *gorm.DB, tenant, user string) ([]*domain.AuditEntry, error)
}

type ledgerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLedgerRepo(db *gorm.DB, baseLog *logger.Logger) LedgerRepo {
	return &ledgerRepo{db: db, log: baseLog.With("repo", "LedgerRepo")}
}

func (lr *ledgerRepo) ApplyDelta(ctx context.Context, tx *gorm.DB, tenant, user string, delta float64, reason string) (float64, float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	account, err := lr.GetAccountForUpdate(ctx, transaction, tenant, user)
	if err != nil {
		return 0, 0, err
	}

	var old float64
	if account == nil {
		account = &domain.Account{Tenant: tenant, Name: user}
		if err := transaction.WithContext(ctx).Create(account).Error; err != nil {
			return 0, 0, err
		}
	} else {
		old = account.Balance
	}

	newBalance := old + delta
	if err := transaction.WithContext(ctx).
		Model(&domain.Account{}).
		Where("tenant = ? AND name = ?", tenant, user).
		Update("balance", newBalance).Error; err != nil {
		return 0, 0, err
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"allocated": gorm.Expr("global_stat.allocated + ?", delta)}),
		}).
		Create(&domain.GlobalStat{Tenant: tenant, Allocated: delta}).Error; err != nil {
		return 0, 0, err
	}

	entry := &domain.AuditEntry{
		Tenant:     tenant,
		User:       user,
		OldBalance: old,
		NewBalance: newBalance,
		Reason:     reason,
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return 0, 0, err
	}

	return old, newBalance, nil
}

func (lr *ledgerRepo) GetAccountForUpdate(ctx context.Context, tx *gorm.DB, tenant, user string) (*domain.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var account domain.Account
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant = ? AND name = ?", tenant, user).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (lr *ledgerRepo) GetAccount(ctx context.Context, tx *gorm.DB, tenant, user string) (*domain.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var account domain.Account
	err := transaction.WithContext(ctx).
		Where("tenant = ? AND name = ?", tenant, user).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (lr *ledgerRepo) CreateAccount(ctx context.Context, tx *gorm.DB, account *domain.Account) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).Create(account).Error
}

func (lr *ledgerRepo) ListUsers(ctx context.Context, tx *gorm.DB, tenant string) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var users []string
	if err := transaction.WithContext(ctx).
		Model(&domain.Account{}).
		Where("tenant = ?", tenant).
		Order("name").
		Pluck("name", &users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (lr *ledgerRepo) ListTenants(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var tenants []string
	if err := transaction.WithContext(ctx).
		Model(&domain.Account{}).
		Distinct().
		Order("tenant").
		Pluck("tenant", &tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (lr *ledgerRepo) Allocated(ctx context.Context, tx *gorm.DB, tenant string) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var stat domain.GlobalStat
	err := transaction.WithContext(ctx).
		Where("tenant = ?", tenant).
		First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stat.Allocated, nil
}

func (lr *ledgerRepo) AuditTrail(ctx context.Context, tx *gorm.DB, tenant, user string) ([]*domain.AuditEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var entries []*domain.AuditEntry
	if err := transaction.WithContext(ctx).
		Where("tenant = ? AND user_name = ?", tenant, user).
		Order("seq").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

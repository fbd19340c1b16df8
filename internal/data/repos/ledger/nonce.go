package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

// NonceRepo is the idempotency guard. Fresh compares-and-swaps the last
// nonce stored for a subject inside the caller's transaction; a stale
// nonce means the wrapping operation must not mutate anything.
type NonceRepo interface {
	Fresh(ctx context.Context, tx *gorm.DB, tenant, subject, nonce string) (bool, error)
}

type nonceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNonceRepo(db *gorm.DB, baseLog *logger.Logger) NonceRepo {
	return &nonceRepo{db: db, log: baseLog.With("repo", "NonceRepo")}
}

func (nr *nonceRepo) Fresh(ctx context.Context, tx *gorm.DB, tenant, subject, nonce string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var record domain.NonceRecord
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant = ? AND subject = ?", tenant, subject).
		First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = domain.NonceRecord{Tenant: tenant, Subject: subject, Nonce: nonce}
		if err := transaction.WithContext(ctx).Create(&record).Error; err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	if record.Nonce == nonce {
		return false, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&domain.NonceRecord{}).
		Where("tenant = ? AND subject = ?", tenant, subject).
		Update("nonce", nonce).Error; err != nil {
		return false, err
	}
	return true, nil
}

package services

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/data/repos/apps"
	"github.com/calyptra/units-backend/internal/data/repos/ledger"
	"github.com/calyptra/units-backend/internal/data/repos/usage"
	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/domain/names"
	"github.com/calyptra/units-backend/internal/domain/pricing"
	"github.com/calyptra/units-backend/internal/domain/usererr"
	"github.com/calyptra/units-backend/internal/platform/apierr"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

// AppService owns the app registry: publishing, pricing and teardown.
type AppService interface {
	RegisterApp(ctx context.Context, tenant, app string, costPerUnit float64, plan string, profit float64) error
	UpdateApp(ctx context.Context, tenant, app string, costPerUnit float64) (float64, error)
	UnregisterApp(ctx context.Context, tenant, app string) error
	DescribeApp(ctx context.Context, tenant, app string) (*domain.App, error)
	ListApps(ctx context.Context, tenant, publisher string) ([]*domain.App, error)
}

type appService struct {
	log        *logger.Logger
	db         *gorm.DB
	cfg        Config
	ledgerRepo ledger.LedgerRepo
	appRepo    apps.AppRepo
	usageRepo  usage.UsageRepo
}

func NewAppService(
	log *logger.Logger,
	db *gorm.DB,
	cfg Config,
	ledgerRepo ledger.LedgerRepo,
	appRepo apps.AppRepo,
	usageRepo usage.UsageRepo,
) AppService {
	return &appService{
		log:        log,
		db:         db,
		cfg:        cfg,
		ledgerRepo: ledgerRepo,
		appRepo:    appRepo,
		usageRepo:  usageRepo,
	}
}

// RegisterApp publishes an app under publisher-name, debiting the publisher
// the publish fee. Registering an app that already exists only refreshes its
// pricing, without charging again. A non-positive costPerUnit falls back to
// the deployment default, and the profit share is re-derived from the billing
// plan so the advertised price stays an integral number of days per unit.
func (s *appService) RegisterApp(ctx context.Context, tenant, app string, costPerUnit float64, plan string, profit float64) error {
	publisher, _, err := names.SplitPair(app)
	if err != nil {
		return err
	}
	if costPerUnit <= 0 {
		costPerUnit = s.cfg.DefaultCostPerUnit
	}
	share := profit
	if share <= 0 {
		share = s.cfg.WriterProfitFraction
	}
	if plan != "" {
		// A billing plan overrides the raw price: the plan's base cost and
		// the author's requested share are rounded together so a unit always
		// buys a whole number of days.
		adjusted, days, err := pricing.EstimateDaysPerUnit(plan, share)
		if err != nil {
			return apierr.New(http.StatusBadRequest, "invalid_plan", err)
		}
		share = adjusted
		costPerUnit = float64(days)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.appRepo.GetForUpdate(ctx, tx, tenant, app)
		if err != nil {
			return err
		}
		if existing != nil {
			return s.appRepo.UpdateFields(ctx, tx, tenant, app, map[string]interface{}{
				"cost_per_unit": costPerUnit,
				"plan":          plan,
				"profit_share":  share,
			})
		}
		acct, err := s.ledgerRepo.GetAccountForUpdate(ctx, tx, tenant, publisher)
		if err != nil {
			return err
		}
		// An unregistered publisher has no balance to publish with.
		if acct == nil || acct.Balance < s.cfg.PublishCost {
			return usererr.ErrInsufficientBalance
		}
		if _, _, err := s.ledgerRepo.ApplyDelta(ctx, tx, tenant, publisher, -s.cfg.PublishCost, "newApp"); err != nil {
			return err
		}
		return s.appRepo.Create(ctx, tx, &domain.App{
			Tenant:             tenant,
			FullName:           app,
			Publisher:          publisher,
			CostPerUnit:        costPerUnit,
			Plan:               plan,
			ProfitShare:        share,
			RegistrationExpiry: nowDays(time.Now()) + s.cfg.AppRegistrationDays,
		})
	})
}

// UpdateApp changes the days-per-unit price of an existing app and returns
// the previous price.
func (s *appService) UpdateApp(ctx context.Context, tenant, app string, costPerUnit float64) (float64, error) {
	var prev float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.appRepo.GetForUpdate(ctx, tx, tenant, app)
		if err != nil {
			return err
		}
		if existing == nil {
			return usererr.ErrAppNotFound
		}
		prev = existing.CostPerUnit
		return s.appRepo.UpdateFields(ctx, tx, tenant, app, map[string]interface{}{
			"cost_per_unit": costPerUnit,
		})
	})
	if err != nil {
		return 0, err
	}
	return prev, nil
}

// UnregisterApp withdraws an app and drops its usage history. Existing leases
// are left to run out on their own.
func (s *appService) UnregisterApp(ctx context.Context, tenant, app string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.appRepo.Delete(ctx, tx, tenant, app); err != nil {
			return err
		}
		return s.usageRepo.DeleteForApp(ctx, tx, tenant, app)
	})
}

func (s *appService) DescribeApp(ctx context.Context, tenant, app string) (*domain.App, error) {
	return s.appRepo.Get(ctx, nil, tenant, app)
}

// ListApps returns the apps published by one user, or every app in the tenant
// when publisher is empty.
func (s *appService) ListApps(ctx context.Context, tenant, publisher string) ([]*domain.App, error) {
	if publisher == "" {
		return s.appRepo.ListAll(ctx, nil, tenant)
	}
	return s.appRepo.ListByPublisher(ctx, nil, tenant, publisher)
}

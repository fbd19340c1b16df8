package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/calyptra/units-backend/internal/data/repos/apps"
	"github.com/calyptra/units-backend/internal/data/repos/leases"
	"github.com/calyptra/units-backend/internal/data/repos/usage"
	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

// UsageService samples how many live leases each app has and serves the
// accumulated series out of memory. Sampling is best effort: it reads
// without locks and a slightly stale count is fine.
type UsageService interface {
	ComputeAppUsage(ctx context.Context, tenant string) error
	ReloadAppUsage(ctx context.Context, tenant string) error
	GetAppUsage(tenant, app string) []*domain.AppUsageSample
	GetAllAppUsage(tenant string) map[string][]*domain.AppUsageSample
}

type usageService struct {
	log       *logger.Logger
	db        *gorm.DB
	appRepo   apps.AppRepo
	leaseRepo leases.LeaseRepo
	usageRepo usage.UsageRepo

	mu    sync.RWMutex
	cache map[string]map[string][]*domain.AppUsageSample
}

func NewUsageService(
	log *logger.Logger,
	db *gorm.DB,
	appRepo apps.AppRepo,
	leaseRepo leases.LeaseRepo,
	usageRepo usage.UsageRepo,
) UsageService {
	return &usageService{
		log:       log,
		db:        db,
		appRepo:   appRepo,
		leaseRepo: leaseRepo,
		usageRepo: usageRepo,
		cache:     map[string]map[string][]*domain.AppUsageSample{},
	}
}

// ComputeAppUsage takes one usage sample per app: the number of unexpired
// leases it currently has. Apps that disappeared since their leases were cut
// are skipped. The in-memory series is refreshed afterwards.
func (s *usageService) ComputeAppUsage(ctx context.Context, tenant string) error {
	all, err := s.leaseRepo.ListAll(ctx, nil, tenant)
	if err != nil {
		return err
	}
	now := nowDays(time.Now())
	counts := map[string]int64{}
	for _, l := range all {
		if l.Expiry >= now {
			counts[l.AppName]++
		}
	}
	ts := time.Now().UnixMilli()
	for appName, n := range counts {
		a, err := s.appRepo.Get(ctx, nil, tenant, appName)
		if err != nil {
			return err
		}
		if a == nil {
			continue
		}
		if err := s.usageRepo.Append(ctx, nil, &domain.AppUsageSample{
			Tenant:      tenant,
			AppName:     appName,
			TimestampMs: ts,
			Count:       n,
		}); err != nil {
			return err
		}
	}
	return s.ReloadAppUsage(ctx, tenant)
}

// ReloadAppUsage rebuilds the tenant's in-memory series from the store.
func (s *usageService) ReloadAppUsage(ctx context.Context, tenant string) error {
	all, err := s.usageRepo.ListAll(ctx, nil, tenant)
	if err != nil {
		return err
	}
	byApp := map[string][]*domain.AppUsageSample{}
	for _, sample := range all {
		byApp[sample.AppName] = append(byApp[sample.AppName], sample)
	}
	s.mu.Lock()
	s.cache[tenant] = byApp
	s.mu.Unlock()
	return nil
}

// GetAppUsage serves one app's series from memory. Nil until the first
// sample or reload for the tenant.
func (s *usageService) GetAppUsage(tenant, app string) []*domain.AppUsageSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[tenant][app]
}

// GetAllAppUsage serves every series of the tenant from memory.
func (s *usageService) GetAllAppUsage(tenant string) map[string][]*domain.AppUsageSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]*domain.AppUsageSample, len(s.cache[tenant]))
	for k, v := range s.cache[tenant] {
		out[k] = v
	}
	return out
}

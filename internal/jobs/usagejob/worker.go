// Package usagejob runs the periodic usage sampler: every interval it
// counts live leases per app, per tenant, and appends one sample per app.
package usagejob

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calyptra/units-backend/internal/data/repos/ledger"
	"github.com/calyptra/units-backend/internal/platform/logger"
	"github.com/calyptra/units-backend/internal/services"
)

type Worker struct {
	log        *logger.Logger
	interval   time.Duration
	usage      services.UsageService
	ledgerRepo ledger.LedgerRepo
}

func NewWorker(log *logger.Logger, interval time.Duration, usage services.UsageService, ledgerRepo ledger.LedgerRepo) *Worker {
	return &Worker{
		log:        log.With("worker", "usage"),
		interval:   interval,
		usage:      usage,
		ledgerRepo: ledgerRepo,
	}
}

// Start launches the sampling loop. It returns immediately; the loop stops
// when ctx is cancelled. A failed tick is logged and the loop keeps going.
func (w *Worker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("usage sampling disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.tick(ctx); err != nil {
					w.log.Warn("usage tick failed", "error", err)
				}
			}
		}
	}()
}

func (w *Worker) tick(ctx context.Context) error {
	tenants, err := w.ledgerRepo.ListTenants(ctx, nil)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, tenant := range tenants {
		g.Go(func() error {
			return w.usage.ComputeAppUsage(gctx, tenant)
		})
	}
	return g.Wait()
}

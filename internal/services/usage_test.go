package services

import (
	"context"
	"testing"

	"github.com/calyptra/units-backend/internal/domain"
)

func TestComputeAppUsageSamplesLiveLeases(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob", "carol")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	for _, fqn := range []string{"alice-blog#bob-x1", "alice-blog#carol-x1"} {
		if _, err := h.leases.RegisterCA(ctx, h.tenant, fqn); err != nil {
			t.Fatalf("RegisterCA %s: %v", fqn, err)
		}
	}

	if err := h.usage.ComputeAppUsage(ctx, h.tenant); err != nil {
		t.Fatalf("ComputeAppUsage: %v", err)
	}
	samples := h.usage.GetAppUsage(h.tenant, "alice-blog")
	if len(samples) != 1 || samples[0].Count != 2 {
		t.Fatalf("first sample: %+v", samples)
	}

	// An expired lease drops out of the next sample.
	if err := h.db.Model(&domain.Lease{}).
		Where("tenant = ? AND fqn = ?", h.tenant, "alice-blog#carol-x1").
		Update("expiry", 1.0).Error; err != nil {
		t.Fatalf("backdate lease: %v", err)
	}
	if err := h.usage.ComputeAppUsage(ctx, h.tenant); err != nil {
		t.Fatalf("ComputeAppUsage: %v", err)
	}
	samples = h.usage.GetAppUsage(h.tenant, "alice-blog")
	if len(samples) != 2 || samples[1].Count != 1 {
		t.Fatalf("second sample: %+v", samples)
	}
	if samples[0].TimestampMs > samples[1].TimestampMs {
		t.Fatalf("samples out of order: %v", samples)
	}
}

func TestComputeAppUsageSkipsUnknownApps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	if err := h.apps.UnregisterApp(ctx, h.tenant, "alice-blog"); err != nil {
		t.Fatalf("UnregisterApp: %v", err)
	}

	// The lease outlives the app, but no sample is cut for a gone app.
	if err := h.usage.ComputeAppUsage(ctx, h.tenant); err != nil {
		t.Fatalf("ComputeAppUsage: %v", err)
	}
	if samples := h.usage.GetAppUsage(h.tenant, "alice-blog"); len(samples) != 0 {
		t.Fatalf("sampled a gone app: %v", samples)
	}
}

func TestGetAllAppUsage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	for _, name := range []string{"alice-blog", "alice-wiki"} {
		if err := h.apps.RegisterApp(ctx, h.tenant, name, 10, "", 0); err != nil {
			t.Fatalf("RegisterApp %s: %v", name, err)
		}
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-wiki#bob-x1"); err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	if err := h.usage.ComputeAppUsage(ctx, h.tenant); err != nil {
		t.Fatalf("ComputeAppUsage: %v", err)
	}

	all := h.usage.GetAllAppUsage(h.tenant)
	if len(all) != 2 {
		t.Fatalf("series count: got %d, want 2", len(all))
	}

	// A cold instance serves nothing until it reloads from the store.
	if got := h.usage.GetAppUsage("other-tenant", "alice-blog"); got != nil {
		t.Fatalf("unexpected series for unknown tenant: %v", got)
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/calyptra/units-backend/internal/domain"
	"github.com/calyptra/units-backend/internal/domain/usererr"
)

func TestRegisterCAChargesOwnerAndCreditsAuthor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	aliceBefore := h.balance(t, "alice")
	bobBefore := h.balance(t, "bob")

	expiry, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1")
	if err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	now := float64(time.Now().UnixMilli()) / msPerDay
	if expiry < now+9.9 || expiry > now+10.1 {
		t.Fatalf("expiry: got %v, want about now+10 days (%v)", expiry, now+10)
	}
	if got := h.balance(t, "bob"); got != bobBefore-1 {
		t.Fatalf("owner balance: got %v, want %v", got, bobBefore-1)
	}
	if got := h.balance(t, "alice"); got != aliceBefore+h.cfg.WriterProfitFraction {
		t.Fatalf("author balance: got %v, want %v", got, aliceBefore+h.cfg.WriterProfitFraction)
	}

	// A still-current lease renews for free at the same expiry.
	again, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1")
	if err != nil {
		t.Fatalf("RegisterCA free renewal: %v", err)
	}
	if again != expiry {
		t.Fatalf("free renewal moved expiry: %v -> %v", expiry, again)
	}
	if got := h.balance(t, "bob"); got != bobBefore-1 {
		t.Fatalf("owner charged for a current lease: %v", got)
	}
}

func TestRegisterCAExpiredLeaseRenews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	// Push the lease into the past.
	if err := h.db.Model(&domain.Lease{}).
		Where("tenant = ? AND fqn = ?", h.tenant, "alice-blog#bob-x1").
		Update("expiry", 1.0).Error; err != nil {
		t.Fatalf("backdate lease: %v", err)
	}

	bobBefore := h.balance(t, "bob")
	expiry, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1")
	if err != nil {
		t.Fatalf("RegisterCA renewal: %v", err)
	}
	if expiry <= 1.0 {
		t.Fatalf("renewal did not move expiry forward: %v", expiry)
	}
	if got := h.balance(t, "bob"); got != bobBefore-1 {
		t.Fatalf("owner balance after renewal: got %v, want %v", got, bobBefore-1)
	}
}

// Concurrent renewals of the same expired lease must settle to a single
// charge: whichever call pays first renews the lease, and the rest see a
// current lease and return its expiry for free.
func TestRegisterCAConcurrentRenewalsChargeOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	if err := h.db.Model(&domain.Lease{}).
		Where("tenant = ? AND fqn = ?", h.tenant, "alice-blog#bob-x1").
		Update("expiry", 1.0).Error; err != nil {
		t.Fatalf("backdate lease: %v", err)
	}
	bobBefore := h.balance(t, "bob")
	aliceBefore := h.balance(t, "alice")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1")
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("RegisterCA %d: %v", i, err)
		}
	}
	if got := h.balance(t, "bob"); got != bobBefore-1 {
		t.Fatalf("owner balance: got %v, want %v (owner charged more than once)", got, bobBefore-1)
	}
	if got := h.balance(t, "alice"); got != aliceBefore+h.cfg.WriterProfitFraction {
		t.Fatalf("author balance: got %v, want %v (author credited more than once)", got, aliceBefore+h.cfg.WriterProfitFraction)
	}
}

func TestRegisterCAUnknownApp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "bob")

	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); !errors.Is(err, usererr.ErrAppNotFound) {
		t.Fatalf("unknown app: got %v, want ErrAppNotFound", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "garbage"); !errors.Is(err, usererr.ErrInvalidName) {
		t.Fatalf("malformed fqn: got %v, want ErrInvalidName", err)
	}
}

func TestRegisterCAInsufficientOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	if err := h.ledger.RemoveUnits(ctx, h.tenant, "n1", "bob", h.cfg.DefaultUnits); err != nil {
		t.Fatalf("RemoveUnits: %v", err)
	}

	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); !errors.Is(err, usererr.ErrInsufficientBalance) {
		t.Fatalf("broke owner: got %v, want ErrInsufficientBalance", err)
	}
	if lease, _ := h.leases.DescribeCA(ctx, h.tenant, "alice-blog#bob-x1"); lease != nil {
		t.Fatalf("lease created despite failed charge")
	}
}

// A lapsed app registration bills the author one unit even when the lease
// renewal itself then fails on the owner's balance. The charge is the price
// of keeping a lapsed app on the books.
func TestRegisterCALapsedRegistrationSoftCharge(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	if err := h.db.Model(&domain.App{}).
		Where("tenant = ? AND full_name = ?", h.tenant, "alice-blog").
		Update("registration_expiry", 1.0).Error; err != nil {
		t.Fatalf("backdate registration: %v", err)
	}
	if err := h.ledger.RemoveUnits(ctx, h.tenant, "n1", "bob", h.cfg.DefaultUnits); err != nil {
		t.Fatalf("RemoveUnits: %v", err)
	}
	aliceBefore := h.balance(t, "alice")

	_, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1")
	if !errors.Is(err, usererr.ErrInsufficientBalance) {
		t.Fatalf("broke owner: got %v, want ErrInsufficientBalance", err)
	}
	// The registration renewal stuck despite the failure.
	if got := h.balance(t, "alice"); got != aliceBefore-1 {
		t.Fatalf("author balance: got %v, want %v (registration fee must persist)", got, aliceBefore-1)
	}
	app, _ := h.apps.DescribeApp(ctx, h.tenant, "alice-blog")
	if app.RegistrationExpiry <= 1.0 {
		t.Fatalf("registration expiry not renewed: %v", app.RegistrationExpiry)
	}

	// Retrying after topping bob up charges no second registration fee.
	if err := h.ledger.AddUnits(ctx, h.tenant, "n2", "bob", 5); err != nil {
		t.Fatalf("AddUnits: %v", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("RegisterCA retry: %v", err)
	}
	want := aliceBefore - 1 + h.cfg.WriterProfitFraction
	if got := h.balance(t, "alice"); got != want {
		t.Fatalf("author balance after retry: got %v, want %v", got, want)
	}
}

func TestCheckCA(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}

	if got, err := h.leases.CheckCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil || got != -1 {
		t.Fatalf("CheckCA missing: got %v, %v, want -1", got, err)
	}

	expiry, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1")
	if err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	if got, err := h.leases.CheckCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil || got != expiry {
		t.Fatalf("CheckCA live: got %v, %v, want %v", got, err, expiry)
	}

	if err := h.db.Model(&domain.Lease{}).
		Where("tenant = ? AND fqn = ?", h.tenant, "alice-blog#bob-x1").
		Update("expiry", 1.0).Error; err != nil {
		t.Fatalf("backdate lease: %v", err)
	}
	if got, err := h.leases.CheckCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil || got != -1 {
		t.Fatalf("CheckCA expired: got %v, %v, want -1", got, err)
	}
}

func TestUnregisterCA(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}

	if err := h.leases.UnregisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("UnregisterCA: %v", err)
	}
	if lease, _ := h.leases.DescribeCA(ctx, h.tenant, "alice-blog#bob-x1"); lease != nil {
		t.Fatalf("lease survived unregister")
	}
	// Dropping it twice is fine.
	if err := h.leases.UnregisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("UnregisterCA twice: %v", err)
	}
}

func TestListCAs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob", "carol")
	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	for _, fqn := range []string{"alice-blog#bob-x1", "alice-blog#bob-x2", "alice-blog#carol-x1"} {
		if _, err := h.leases.RegisterCA(ctx, h.tenant, fqn); err != nil {
			t.Fatalf("RegisterCA %s: %v", fqn, err)
		}
	}

	bobs, err := h.leases.ListCAs(ctx, h.tenant, "bob")
	if err != nil {
		t.Fatalf("ListCAs bob: %v", err)
	}
	if len(bobs) != 2 {
		t.Fatalf("bob leases: got %d, want 2", len(bobs))
	}
	all, err := h.leases.ListCAs(ctx, h.tenant, "")
	if err != nil {
		t.Fatalf("ListCAs all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all leases: got %d, want 3", len(all))
	}
}

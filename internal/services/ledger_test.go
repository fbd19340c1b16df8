package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/calyptra/units-backend/internal/domain/usererr"
)

func TestRegisterUserGrantsDefaultBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(t, "alice")
	if got := h.balance(t, "alice"); got != h.cfg.DefaultUnits {
		t.Fatalf("balance after register: got %v, want %v", got, h.cfg.DefaultUnits)
	}

	// Registering again must not mint a second grant.
	h.register(t, "alice")
	if got := h.balance(t, "alice"); got != h.cfg.DefaultUnits {
		t.Fatalf("balance after duplicate register: got %v, want %v", got, h.cfg.DefaultUnits)
	}

	rep, err := h.ledger.DescribeReputation(ctx, h.tenant, "alice")
	if err != nil {
		t.Fatalf("DescribeReputation: %v", err)
	}
	if rep == nil {
		t.Fatalf("expected reputation row for new user")
	}
	if rep.Completed != 0 || rep.Disputed != 0 || rep.Expired != 0 {
		t.Fatalf("fresh reputation should be all zeroes: %+v", rep)
	}
}

func TestAddUnitsNonceReplay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice")

	nonce := uuid.NewString()
	if err := h.ledger.AddUnits(ctx, h.tenant, nonce, "alice", 10); err != nil {
		t.Fatalf("AddUnits: %v", err)
	}
	// A retried call with the same nonce is absorbed.
	if err := h.ledger.AddUnits(ctx, h.tenant, nonce, "alice", 10); err != nil {
		t.Fatalf("AddUnits replay: %v", err)
	}
	if got := h.balance(t, "alice"); got != h.cfg.DefaultUnits+10 {
		t.Fatalf("balance after replayed add: got %v, want %v", got, h.cfg.DefaultUnits+10)
	}

	// A different nonce applies again.
	if err := h.ledger.AddUnits(ctx, h.tenant, uuid.NewString(), "alice", 1); err != nil {
		t.Fatalf("AddUnits fresh nonce: %v", err)
	}
	if got := h.balance(t, "alice"); got != h.cfg.DefaultUnits+11 {
		t.Fatalf("balance after fresh add: got %v, want %v", got, h.cfg.DefaultUnits+11)
	}
}

func TestRemoveUnitsGuardsBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice")

	err := h.ledger.RemoveUnits(ctx, h.tenant, uuid.NewString(), "alice", h.cfg.DefaultUnits+1)
	if !errors.Is(err, usererr.ErrInsufficientBalance) {
		t.Fatalf("RemoveUnits over balance: got %v, want ErrInsufficientBalance", err)
	}
	// The failed removal burned nothing.
	if got := h.balance(t, "alice"); got != h.cfg.DefaultUnits {
		t.Fatalf("balance after failed removal: got %v, want %v", got, h.cfg.DefaultUnits)
	}

	err = h.ledger.RemoveUnits(ctx, h.tenant, uuid.NewString(), "ghost", 1)
	if !errors.Is(err, usererr.ErrUserNotFound) {
		t.Fatalf("RemoveUnits unknown user: got %v, want ErrUserNotFound", err)
	}

	if err := h.ledger.RemoveUnits(ctx, h.tenant, uuid.NewString(), "alice", 2); err != nil {
		t.Fatalf("RemoveUnits: %v", err)
	}
	if got := h.balance(t, "alice"); got != h.cfg.DefaultUnits-2 {
		t.Fatalf("balance after removal: got %v, want %v", got, h.cfg.DefaultUnits-2)
	}
}

func TestChangeUnitsDispatchesOnSign(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice")

	if err := h.ledger.ChangeUnits(ctx, h.tenant, uuid.NewString(), "alice", 3); err != nil {
		t.Fatalf("ChangeUnits +3: %v", err)
	}
	if err := h.ledger.ChangeUnits(ctx, h.tenant, uuid.NewString(), "alice", -2); err != nil {
		t.Fatalf("ChangeUnits -2: %v", err)
	}
	if got := h.balance(t, "alice"); got != h.cfg.DefaultUnits+1 {
		t.Fatalf("balance after change: got %v, want %v", got, h.cfg.DefaultUnits+1)
	}
}

func TestAllocatedTracksSupply(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(t, "alice", "bob")
	if err := h.ledger.AddUnits(ctx, h.tenant, uuid.NewString(), "alice", 7); err != nil {
		t.Fatalf("AddUnits: %v", err)
	}
	if err := h.ledger.RemoveUnits(ctx, h.tenant, uuid.NewString(), "bob", 2); err != nil {
		t.Fatalf("RemoveUnits: %v", err)
	}

	got, err := h.ledger.DescribeAllocated(ctx, h.tenant)
	if err != nil {
		t.Fatalf("DescribeAllocated: %v", err)
	}
	want := 2*h.cfg.DefaultUnits + 7 - 2
	if got != want {
		t.Fatalf("allocated: got %v, want %v", got, want)
	}
}

func TestAuditTrailChains(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice")
	if err := h.ledger.AddUnits(ctx, h.tenant, uuid.NewString(), "alice", 4); err != nil {
		t.Fatalf("AddUnits: %v", err)
	}
	if err := h.ledger.RemoveUnits(ctx, h.tenant, uuid.NewString(), "alice", 1); err != nil {
		t.Fatalf("RemoveUnits: %v", err)
	}

	trail, err := h.ledger.AuditTrail(ctx, h.tenant, "alice")
	if err != nil {
		t.Fatalf("AuditTrail: %v", err)
	}
	if len(trail) != 3 {
		t.Fatalf("audit entries: got %d, want 3", len(trail))
	}
	// Every entry starts where the previous one ended, and the last entry
	// lands on the live balance.
	for i := 1; i < len(trail); i++ {
		if trail[i].OldBalance != trail[i-1].NewBalance {
			t.Fatalf("audit gap at %d: %v -> %v", i, trail[i-1].NewBalance, trail[i].OldBalance)
		}
	}
	if got := h.balance(t, "alice"); trail[len(trail)-1].NewBalance != got {
		t.Fatalf("audit tail %v does not match balance %v", trail[len(trail)-1].NewBalance, got)
	}
	if trail[0].Reason != "newUser" {
		t.Fatalf("first audit reason: got %q, want newUser", trail[0].Reason)
	}
}

func TestListUsers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "carol", "alice", "bob")

	users, err := h.ledger.ListUsers(ctx, h.tenant)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 || users[0] != "alice" || users[1] != "bob" || users[2] != "carol" {
		t.Fatalf("ListUsers: got %v", users)
	}
}

func TestGetUserInfoAggregates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "bob")

	if err := h.apps.RegisterApp(ctx, h.tenant, "alice-blog", 10, "", 0); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	if _, err := h.leases.RegisterCA(ctx, h.tenant, "alice-blog#bob-x1"); err != nil {
		t.Fatalf("RegisterCA: %v", err)
	}
	if err := h.transfers.TransferUnits(ctx, h.tenant, uuid.NewString(), "bob", "alice", 1, "tid-1"); err != nil {
		t.Fatalf("TransferUnits: %v", err)
	}

	bob, err := h.ledger.GetUserInfo(ctx, h.tenant, "bob")
	if err != nil {
		t.Fatalf("GetUserInfo bob: %v", err)
	}
	if len(bob.CAs) != 1 || bob.CAs["alice-blog#bob-x1"] == 0 {
		t.Fatalf("bob CAs: %v", bob.CAs)
	}
	if len(bob.Offers) != 1 || bob.Offers["tid-1"] == nil {
		t.Fatalf("bob offers: %v", bob.Offers)
	}
	if bob.Reputation == nil {
		t.Fatalf("bob reputation missing")
	}

	alice, err := h.ledger.GetUserInfo(ctx, h.tenant, "alice")
	if err != nil {
		t.Fatalf("GetUserInfo alice: %v", err)
	}
	if len(alice.Apps) != 1 {
		t.Fatalf("alice apps: %v", alice.Apps)
	}
	if len(alice.Accepts) != 1 || alice.Accepts["tid-1"] == nil {
		t.Fatalf("alice accepts: %v", alice.Accepts)
	}
}

package catoken

import (
	"testing"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")
	signed, err := v.Sign(&Claims{
		AppPublisher: "alice",
		AppLocalName: "blog",
		CAOwner:      "bob",
		CALocalName:  "x1",
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := v.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got := claims.LeaseName().FQN(); got != "alice-blog#bob-x1" {
		t.Fatalf("FQN: got %q", got)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("test-secret")

	if _, err := v.Verify("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}

	other := NewVerifier("other-secret")
	signed, err := other.Sign(&Claims{
		AppPublisher: "alice", AppLocalName: "blog", CAOwner: "bob", CALocalName: "x1",
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := v.Verify(signed); err == nil {
		t.Fatalf("expected error for wrong signature")
	}

	unnamed, err := v.Sign(&Claims{AppPublisher: "alice"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := v.Verify(unnamed); err == nil {
		t.Fatalf("expected error for missing name claims")
	}
}

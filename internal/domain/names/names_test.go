package names

import (
	"errors"
	"testing"

	"github.com/calyptra/units-backend/internal/domain/usererr"
)

func TestSplitPair(t *testing.T) {
	user, local, err := SplitPair("alice-blog")
	if err != nil {
		t.Fatalf("SplitPair: %v", err)
	}
	if user != "alice" || local != "blog" {
		t.Fatalf("SplitPair: got %q %q", user, local)
	}

	for _, bad := range []string{"", "alice", "alice-", "-blog", "a-b-c"} {
		if _, _, err := SplitPair(bad); !errors.Is(err, usererr.ErrInvalidName) {
			t.Fatalf("SplitPair(%q): expected ErrInvalidName, got %v", bad, err)
		}
	}
}

func TestSplitFQN(t *testing.T) {
	ln, err := SplitFQN("alice-blog#bob-x1")
	if err != nil {
		t.Fatalf("SplitFQN: %v", err)
	}
	if ln.AppPublisher != "alice" || ln.AppLocalName != "blog" {
		t.Fatalf("SplitFQN: bad app half: %+v", ln)
	}
	if ln.CAOwner != "bob" || ln.CALocalName != "x1" {
		t.Fatalf("SplitFQN: bad instance half: %+v", ln)
	}
	if ln.AppName() != "alice-blog" {
		t.Fatalf("AppName: got %q", ln.AppName())
	}
	if ln.FQN() != "alice-blog#bob-x1" {
		t.Fatalf("FQN: got %q", ln.FQN())
	}

	for _, bad := range []string{"alice-blog", "alice-blog#bob", "alice#bob-x1", "a#b#c"} {
		if _, err := SplitFQN(bad); !errors.Is(err, usererr.ErrInvalidName) {
			t.Fatalf("SplitFQN(%q): expected ErrInvalidName, got %v", bad, err)
		}
	}
}

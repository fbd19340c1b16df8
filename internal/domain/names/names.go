// Package names parses the dash/hash naming scheme used throughout the
// unit economy. An app full name is `publisher-app`; a lease FQN is
// `publisher-app#owner-instance`. Malformed names fail with
// usererr.ErrInvalidName before any store access.
package names

import (
	"fmt"
	"strings"

	"github.com/calyptra/units-backend/internal/domain/usererr"
)

const (
	// PairSep joins a user with a local name.
	PairSep = "-"
	// AppSep joins the app half of a lease FQN with the instance half.
	AppSep = "#"
)

// SplitPair splits `user-local` into its two halves.
func SplitPair(name string) (user, local string, err error) {
	parts := strings.Split(name, PairSep)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q is not a user-local pair", usererr.ErrInvalidName, name)
	}
	return parts[0], parts[1], nil
}

// JoinPair builds `user-local`.
func JoinPair(user, local string) string {
	return user + PairSep + local
}

// LeaseName is a parsed lease FQN.
type LeaseName struct {
	AppPublisher string
	AppLocalName string
	CAOwner      string
	CALocalName  string
}

// AppName returns the full name of the owning app.
func (l LeaseName) AppName() string {
	return JoinPair(l.AppPublisher, l.AppLocalName)
}

// FQN returns the canonical `publisher-app#owner-instance` form.
func (l LeaseName) FQN() string {
	return l.AppName() + AppSep + JoinPair(l.CAOwner, l.CALocalName)
}

// SplitFQN parses a lease FQN, validating both halves.
func SplitFQN(fqn string) (LeaseName, error) {
	halves := strings.Split(fqn, AppSep)
	if len(halves) != 2 {
		return LeaseName{}, fmt.Errorf("%w: %q is not an app#instance pair", usererr.ErrInvalidName, fqn)
	}
	publisher, appLocal, err := SplitPair(halves[0])
	if err != nil {
		return LeaseName{}, err
	}
	owner, caLocal, err := SplitPair(halves[1])
	if err != nil {
		return LeaseName{}, err
	}
	return LeaseName{
		AppPublisher: publisher,
		AppLocalName: appLocal,
		CAOwner:      owner,
		CALocalName:  caLocal,
	}, nil
}

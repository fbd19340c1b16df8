// Package usererr defines the failure taxonomy of the units engine. All
// of these are synchronous, local failures: the engine never retries, and
// every failed operation leaves the store untouched (with the one
// documented lease-renewal exception, see services.LeaseService).
package usererr

import "errors"

var (
	// ErrInsufficientBalance is returned when a debit exceeds available
	// funds. No mutation is applied.
	ErrInsufficientBalance = errors.New("user does not have enough balance")

	// ErrUserNotFound is returned when a unit removal targets a user that
	// was never registered.
	ErrUserNotFound = errors.New("user does not exist")

	// ErrAppNotFound is returned when a referenced app is not registered.
	ErrAppNotFound = errors.New("app does not exist")

	// ErrLeaseNotFound is returned when a referenced lease is absent.
	ErrLeaseNotFound = errors.New("lease does not exist")

	// ErrUserMismatch is returned when the actor on a transfer transition
	// does not match the recorded party.
	ErrUserMismatch = errors.New("user does not match in release")

	// ErrTransferNotReleased is returned on an Accept before Release.
	ErrTransferNotReleased = errors.New("accept without a previous release")

	// ErrAlreadyReleased is returned on a Dispute after Release.
	ErrAlreadyReleased = errors.New("dispute after release")

	// ErrTransferNotExpired is returned on an Expire before the hold
	// window has elapsed.
	ErrTransferNotExpired = errors.New("transfer has not expired yet")

	// ErrInvalidName is returned for malformed user/app/lease identifiers,
	// rejected before any store access.
	ErrInvalidName = errors.New("invalid name")
)

package wallet

import (
	"github.com/quorum-one/vault/errors"
)

var (
	// ErrInvalidConfig is returned when a vault cannot be constructed
	// from the given owner set, threshold or expiry window.
	ErrInvalidConfig = errors.Register(1020, "invalid configuration")

	// ErrAlreadyConfirmed is returned when an owner confirms the same
	// transaction a second time.
	ErrAlreadyConfirmed = errors.Register(1021, "already confirmed")

	// ErrFinalized is returned on any attempt to act on a transaction
	// that reached a terminal state.
	ErrFinalized = errors.Register(1022, "transaction finalized")
)

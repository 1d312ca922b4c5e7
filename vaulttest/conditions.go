package vaulttest

import (
	"crypto/sha256"

	"golang.org/x/crypto/ed25519"

	"github.com/quorum-one/vault"
)

// NewCondition returns a signature condition derived from the seed.
// Equal seeds produce equal conditions, which makes test fixtures
// reproducible.
func NewCondition(seed string) vault.Condition {
	h := sha256.Sum256([]byte(seed))
	key := ed25519.NewKeyFromSeed(h[:])
	pub := key.Public().(ed25519.PublicKey)
	return vault.NewCondition("sigs", "ed25519", pub)
}

// NewAddress returns the address of a condition derived from the seed.
func NewAddress(seed string) vault.Address {
	return NewCondition(seed).Address()
}

package wallet

import (
	"github.com/quorum-one/vault"
	"github.com/quorum-one/vault/errors"
)

// OwnerRegistry is the fixed set of identities allowed to act on the
// vault, together with the confirmation threshold. It is an immutable
// value established at construction. There is no mutation path, owner
// set governance happens outside this package.
type OwnerRegistry struct {
	owners    []vault.Address
	threshold uint32
}

// NewOwnerRegistry validates and builds the owner set. It fails with
// ErrInvalidConfig if the owner list is empty, contains an invalid or
// duplicate address, or if the threshold is outside [1, len(owners)].
func NewOwnerRegistry(owners []vault.Address, threshold uint32) (*OwnerRegistry, error) {
	if len(owners) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "no owners")
	}
	for i, o := range owners {
		if err := o.Validate(); err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "owner %d: %s", i, err)
		}
		for _, prev := range owners[:i] {
			if o.Equals(prev) {
				return nil, errors.Wrapf(ErrInvalidConfig, "duplicate owner %s", o)
			}
		}
	}
	if threshold < 1 || threshold > uint32(len(owners)) {
		return nil, errors.Wrapf(ErrInvalidConfig, "threshold %d outside [1, %d]", threshold, len(owners))
	}

	reg := OwnerRegistry{
		owners:    make([]vault.Address, len(owners)),
		threshold: threshold,
	}
	for i, o := range owners {
		reg.owners[i] = o.Clone()
	}
	return &reg, nil
}

// IsOwner returns true if the address belongs to the owner set.
func (r *OwnerRegistry) IsOwner(a vault.Address) bool {
	for _, o := range r.owners {
		if o.Equals(a) {
			return true
		}
	}
	return false
}

// Threshold returns the number of confirmations required to execute.
func (r *OwnerRegistry) Threshold() uint32 {
	return r.threshold
}

// OwnerCount returns the size of the owner set.
func (r *OwnerRegistry) OwnerCount() int {
	return len(r.owners)
}

// Owners returns a copy of the owner set, in registration order.
func (r *OwnerRegistry) Owners() []vault.Address {
	res := make([]vault.Address, len(r.owners))
	for i, o := range r.owners {
		res[i] = o.Clone()
	}
	return res
}

package wallet

import (
	"github.com/quorum-one/vault"
	"github.com/quorum-one/vault/errors"
	"github.com/quorum-one/vault/orm"
)

// BucketName is where the transaction records live.
const BucketName = "txs"

var _ orm.CloneableData = (*Transaction)(nil)

// Validate returns an error if this is not a storable transaction.
func (t *Transaction) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Destination", t.Destination.Validate())
	if t.Amount == nil {
		errs = errors.AppendField(errs, "Amount", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Amount", t.Amount.Validate())
		if !t.Amount.IsNonNegative() {
			errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
		}
	}
	if t.SubmittedAt == 0 {
		errs = errors.AppendField(errs, "SubmittedAt", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "SubmittedAt", t.SubmittedAt.Validate())
	}
	if t.State < TransactionStatePending || t.State > TransactionStateExpired {
		errs = errors.AppendField(errs, "State", errors.ErrState)
	}
	for _, c := range t.Confirmations {
		errs = errors.AppendField(errs, "Confirmations", c.Validate())
	}
	return errs
}

// Copy produces a deep copy of the transaction.
func (t *Transaction) Copy() orm.CloneableData {
	confs := make([]vault.Address, len(t.Confirmations))
	for i, c := range t.Confirmations {
		confs[i] = c.Clone()
	}
	return &Transaction{
		Destination:   t.Destination.Clone(),
		Amount:        t.Amount.Clone(),
		Payload:       append([]byte(nil), t.Payload...),
		Confirmations: confs,
		SubmittedAt:   t.SubmittedAt,
		State:         t.State,
	}
}

// Finalized returns true once the transaction reached a terminal state.
func (t *Transaction) Finalized() bool {
	return t.State != TransactionStatePending
}

// hasConfirmed returns true if the address already confirmed.
func (t *Transaction) hasConfirmed(a vault.Address) bool {
	for _, c := range t.Confirmations {
		if c.Equals(a) {
			return true
		}
	}
	return false
}

// addConfirmation records an approval, keeping recording order. It is
// idempotent on the set and reports whether the confirmation was new.
func (t *Transaction) addConfirmation(a vault.Address) bool {
	if t.hasConfirmed(a) {
		return false
	}
	t.Confirmations = append(t.Confirmations, a.Clone())
	return true
}

// setState moves the transaction to a terminal state. Transitions are
// one way, leaving a terminal state fails with ErrState.
func (t *Transaction) setState(next TransactionState) error {
	if t.State != TransactionStatePending {
		return errors.Wrapf(errors.ErrState, "cannot leave %s", t.State)
	}
	if next != TransactionStateExecuted && next != TransactionStateExpired {
		return errors.Wrapf(errors.ErrState, "cannot enter %s", next)
	}
	t.State = next
	return nil
}

// expired is the lazy expiry check, measured from submission. The
// window boundary itself counts as expired.
func (t *Transaction) expired(now vault.UnixTime, window vault.UnixDuration) bool {
	return now >= t.SubmittedAt.Add(window.Duration())
}

// Validate returns an error unless this is a usable vault setup.
func (c *Config) Validate() error {
	var errs error
	if len(c.Owners) == 0 {
		errs = errors.AppendField(errs, "Owners", errors.ErrEmpty)
	}
	for _, o := range c.Owners {
		errs = errors.AppendField(errs, "Owners", o.Validate())
	}
	if c.Threshold < 1 || c.Threshold > uint32(len(c.Owners)) {
		errs = errors.AppendField(errs, "Threshold", errors.ErrInput)
	}
	if c.ExpiryWindow <= 0 {
		errs = errors.AppendField(errs, "ExpiryWindow", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Source", c.Source.Validate())
	return errs
}

// TransactionBucket stores the transaction records, keyed by an
// 8 byte big endian sequence value. Key order is submission order.
type TransactionBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewTransactionBucket initializes a TransactionBucket.
func NewTransactionBucket() TransactionBucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, new(Transaction)))
	return TransactionBucket{
		Bucket: b,
		idSeq:  b.Sequence(orm.SeqID),
	}
}

// Create assigns the next sequential id and persists the transaction.
// Ids are never reused, even if the record is deleted later.
func (b TransactionBucket) Create(db vault.KVStore, t *Transaction) ([]byte, error) {
	key, err := b.idSeq.NextVal(db)
	if err != nil {
		return nil, err
	}
	if err := b.Bucket.Save(db, orm.NewSimpleObj(key, t)); err != nil {
		return nil, err
	}
	return key, nil
}

// GetTransaction loads the transaction or fails with ErrNotFound.
func (b TransactionBucket) GetTransaction(db vault.ReadOnlyKVStore, id []byte) (*Transaction, error) {
	obj, err := b.Get(db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "transaction %X", id)
	}
	t, ok := obj.Value().(*Transaction)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "invalid type: %T", obj.Value())
	}
	return t, nil
}

// Save persists an updated transaction under its existing id.
func (b TransactionBucket) Save(db vault.KVStore, id []byte, t *Transaction) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(id, t))
}

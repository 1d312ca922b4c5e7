package wallet

import (
	"sync"

	"github.com/quorum-one/vault"
	"github.com/quorum-one/vault/coin"
	"github.com/quorum-one/vault/errors"
	"github.com/quorum-one/vault/gconf"
	"github.com/quorum-one/vault/x/cash"
)

// configName is the gconf singleton the vault setup is stored under.
const configName = "wallet"

// DefaultExpiryWindow is how long after submission a transaction stays
// confirmable.
const DefaultExpiryWindow vault.UnixDuration = 5 * 24 * 60 * 60

// Engine orchestrates the transaction lifecycle: submission,
// confirmation tracking, quorum evaluation, lazy expiry and the
// exactly once execution of the transfer.
//
// All mutating operations serialize on an internal mutex and run
// against a cache wrap of the given store, so their effects are all or
// nothing. The single exception is the lazy expiry transition, which
// is written through even though the triggering call fails.
type Engine struct {
	mu       sync.Mutex
	registry *OwnerRegistry
	bucket   TransactionBucket
	ledger   cash.Controller
	source   vault.Address
	window   vault.UnixDuration
}

// NewEngine validates the vault setup, persists it once as an
// immutable configuration record and returns an engine bound to it.
// An invalid setup fails with ErrInvalidConfig and writes nothing.
func NewEngine(db vault.KVStore, owners []vault.Address, threshold uint32, window vault.UnixDuration, source vault.Address, ledger cash.Controller) (*Engine, error) {
	registry, err := NewOwnerRegistry(owners, threshold)
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "non-positive expiry window")
	}
	if err := source.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "source: %s", err)
	}

	cfg := Config{
		Owners:       registry.Owners(),
		Threshold:    threshold,
		ExpiryWindow: window,
		Source:       source.Clone(),
	}
	if err := gconf.Save(db, configName, &cfg); err != nil {
		return nil, errors.Wrap(err, "persist configuration")
	}

	return &Engine{
		registry: registry,
		bucket:   NewTransactionBucket(),
		ledger:   ledger,
		source:   source.Clone(),
		window:   window,
	}, nil
}

// LoadEngine restores an engine from the configuration record written
// by an earlier NewEngine call on the same store.
func LoadEngine(db vault.ReadOnlyKVStore, ledger cash.Controller) (*Engine, error) {
	var cfg Config
	if err := gconf.Load(db, configName, &cfg); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	registry, err := NewOwnerRegistry(cfg.Owners, cfg.Threshold)
	if err != nil {
		return nil, err
	}
	return &Engine{
		registry: registry,
		bucket:   NewTransactionBucket(),
		ledger:   ledger,
		source:   cfg.Source.Clone(),
		window:   cfg.ExpiryWindow,
	}, nil
}

// Registry gives access to the immutable owner set.
func (e *Engine) Registry() *OwnerRegistry {
	return e.registry
}

// Submit proposes a transfer out of the vault. The submitter is
// recorded as the first confirmation. With a threshold of one the
// transaction executes before Submit returns.
//
// A failing debit at immediate execution keeps the transaction
// pending, the id is still returned so other owners can Confirm or
// Execute later.
func (e *Engine) Submit(db vault.CacheableKVStore, caller vault.Address, destination vault.Address, amount coin.Coin, payload []byte, now vault.UnixTime) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.registry.IsOwner(caller) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "submitter %s", caller)
	}
	if err := destination.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "destination: %s", err)
	}
	if err := amount.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "amount: %s", err)
	}
	if !amount.IsNonNegative() {
		return nil, errors.Wrapf(errors.ErrInput, "negative amount %s", amount)
	}
	if now.IsZero() {
		return nil, errors.Wrap(errors.ErrInput, "missing submission time")
	}

	t := &Transaction{
		Destination: destination.Clone(),
		Amount:      &amount,
		Payload:     append([]byte(nil), payload...),
		SubmittedAt: now,
		State:       TransactionStatePending,
	}
	t.addConfirmation(caller)

	cache := db.CacheWrap()
	id, err := e.bucket.Create(cache, t)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := e.maybeExecute(cache, id, t); err != nil && !errors.ErrInsufficientAmount.Is(err) {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, err
	}
	return id, nil
}

// Confirm records the caller's approval of a pending transaction and
// executes the transfer if this confirmation reaches the quorum.
//
// A transaction older than the expiry window is moved to EXPIRED and
// the call fails with ErrExpired. That state change survives the
// failing call, no confirmation is recorded.
func (e *Engine) Confirm(db vault.CacheableKVStore, caller vault.Address, id []byte, now vault.UnixTime) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.bucket.GetTransaction(db, id)
	if err != nil {
		return err
	}
	if !e.registry.IsOwner(caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "confirmer %s", caller)
	}
	if t.Finalized() {
		return errors.Wrapf(ErrFinalized, "transaction %X is %s", id, t.State)
	}
	if t.expired(now, e.window) {
		if err := e.expire(db, id, t); err != nil {
			return err
		}
		return errors.Wrap(errors.ErrExpired, "transaction has expired")
	}
	if t.hasConfirmed(caller) {
		return errors.Wrapf(ErrAlreadyConfirmed, "owner %s", caller)
	}

	cache := db.CacheWrap()
	t.addConfirmation(caller)
	if err := e.bucket.Save(cache, id, t); err != nil {
		cache.Discard()
		return err
	}
	if err := e.maybeExecute(cache, id, t); err != nil {
		if !errors.ErrInsufficientAmount.Is(err) {
			cache.Discard()
			return err
		}
		// Keep the confirmation even though the vault cannot pay
		// right now. The transaction stays pending and a later
		// Confirm or an explicit Execute retries the transfer.
		if werr := cache.Write(); werr != nil {
			return werr
		}
		return err
	}
	return cache.Write()
}

// Execute retries the transfer of a pending transaction that already
// holds enough confirmations, typically after an earlier debit failed
// for insufficient funds. The caller must be an owner.
func (e *Engine) Execute(db vault.CacheableKVStore, caller vault.Address, id []byte, now vault.UnixTime) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.bucket.GetTransaction(db, id)
	if err != nil {
		return err
	}
	if !e.registry.IsOwner(caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "caller %s", caller)
	}
	if t.Finalized() {
		return errors.Wrapf(ErrFinalized, "transaction %X is %s", id, t.State)
	}
	if t.expired(now, e.window) {
		if err := e.expire(db, id, t); err != nil {
			return err
		}
		return errors.Wrap(errors.ErrExpired, "transaction has expired")
	}
	if uint32(len(t.Confirmations)) < e.registry.Threshold() {
		return errors.Wrapf(errors.ErrState, "%d of %d confirmations", len(t.Confirmations), e.registry.Threshold())
	}

	cache := db.CacheWrap()
	if err := e.maybeExecute(cache, id, t); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

// Confirmations returns the recorded confirmations in recording
// order, the submitter's first.
func (e *Engine) Confirmations(db vault.ReadOnlyKVStore, id []byte) ([]vault.Address, error) {
	t, err := e.bucket.GetTransaction(db, id)
	if err != nil {
		return nil, err
	}
	res := make([]vault.Address, len(t.Confirmations))
	for i, c := range t.Confirmations {
		res[i] = c.Clone()
	}
	return res, nil
}

// Status returns the stored lifecycle state. Note that expiry is
// evaluated lazily, a stale transaction reads PENDING until the next
// mutating touch.
func (e *Engine) Status(db vault.ReadOnlyKVStore, id []byte) (TransactionState, error) {
	t, err := e.bucket.GetTransaction(db, id)
	if err != nil {
		return TransactionStateInvalid, err
	}
	return t.State, nil
}

// GetTransaction returns a copy of the stored transaction record.
func (e *Engine) GetTransaction(db vault.ReadOnlyKVStore, id []byte) (*Transaction, error) {
	t, err := e.bucket.GetTransaction(db, id)
	if err != nil {
		return nil, err
	}
	return t.Copy().(*Transaction), nil
}

// expire writes the one way EXPIRED transition straight to the store.
func (e *Engine) expire(db vault.KVStore, id []byte, t *Transaction) error {
	if err := t.setState(TransactionStateExpired); err != nil {
		return err
	}
	return e.bucket.Save(db, id, t)
}

// maybeExecute moves the funds and finalizes the transaction when the
// quorum is met. Called with the engine lock held, against the cache
// wrap of the current operation, so the count check and the state
// transition are atomic.
func (e *Engine) maybeExecute(db vault.KVStore, id []byte, t *Transaction) error {
	if uint32(len(t.Confirmations)) < e.registry.Threshold() {
		return nil
	}
	// A zero amount still finalizes, there is just nothing to move.
	if t.Amount != nil && t.Amount.IsPositive() {
		err := e.ledger.MoveCoins(db, e.source, t.Destination, *t.Amount)
		switch {
		case err == nil:
		case errors.ErrInsufficientAmount.Is(err) || errors.ErrEmpty.Is(err):
			return errors.Wrapf(errors.ErrInsufficientAmount, "cannot pay %s", t.Amount)
		default:
			return err
		}
	}
	if err := t.setState(TransactionStateExecuted); err != nil {
		return err
	}
	return e.bucket.Save(db, id, t)
}

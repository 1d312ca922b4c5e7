package cash

import (
	"github.com/quorum-one/vault"
	"github.com/quorum-one/vault/coin"
	"github.com/quorum-one/vault/errors"
)

// Controller is the functionality needed by other packages to move
// funds between accounts and to inspect balances.
type Controller interface {
	// MoveCoins removes funds from the source account and adds them
	// to the destination account.
	MoveCoins(db vault.KVStore, src vault.Address, dest vault.Address, amount coin.Coin) error

	// IssueCoins increases the balance of the destination account.
	// The amount may also be negative to take funds out of circulation.
	IssueCoins(db vault.KVStore, dest vault.Address, amount coin.Coin) error

	// Balance returns the coins held by an account. Missing accounts
	// report an ErrEmpty.
	Balance(db vault.KVStore, addr vault.Address) (coin.Coins, error)
}

// CashController is the standard implementation of Controller, using
// a cash.Bucket for the account storage.
type CashController struct {
	bucket Bucket
}

var _ Controller = CashController{}

// NewController returns a base Controller implementation.
func NewController(bucket Bucket) CashController {
	return CashController{bucket: bucket}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c CashController) MoveCoins(db vault.KVStore, src vault.Address, dest vault.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive transfer: %v", &amount)
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return err
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	if !sender.Coins().Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "funds %s", &amount)
	}

	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}

	if err := c.bucket.Save(db, sender); err != nil {
		return err
	}
	return c.bucket.Save(db, recipient)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the account.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c CashController) IssueCoins(db vault.KVStore, dest vault.Address, amount coin.Coin) error {
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, recipient)
}

// Balance returns the amount of funds held by the given account.
func (c CashController) Balance(db vault.KVStore, addr vault.Address) (coin.Coins, error) {
	account, err := c.bucket.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.Wrapf(errors.ErrEmpty, "account %s", addr)
	}
	return account.Coins(), nil
}

package cash

import (
	"github.com/quorum-one/vault"
	"github.com/quorum-one/vault/coin"
	"github.com/quorum-one/vault/errors"
	"github.com/quorum-one/vault/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

//---- Set

// Validate requires that all coins are in alphabetical
func (s *Set) Validate() error {
	return coin.Coins(s.GetCoins()).Validate()
}

// Copy makes a new set with the same coins
func (s *Set) Copy() *Set {
	return &Set{
		Coins: coin.Coins(s.GetCoins()).Clone(),
	}
}

//--- Account (Set object, balance + key)

// Account is the actual object that we want to pass around
// in our code. It contains a set of coins, as well as the
// address holding them. It is connected to the Bucket to
// easily manipulate state.
//
// Account is a type-safe wrapper around orm.SimpleObj
type Account struct {
	key   []byte
	value *Set
}

var _ orm.Object = (*Account)(nil)

// NewAccount creates an empty account with this address
func NewAccount(key vault.Address) *Account {
	return &Account{
		key:   key,
		value: new(Set),
	}
}

// Value gets the value stored in the object
func (a Account) Value() vault.Persistent {
	return a.value
}

// Key returns the key to store the object under
func (a Account) Key() []byte {
	return a.key
}

// Validate makes sure the fields aren't empty.
// And delegates to the value validator if present
func (a Account) Validate() error {
	if len(a.key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "account key")
	}
	return a.value.Validate()
}

// SetKey may be used to update the account key
func (a *Account) SetKey(key []byte) {
	a.key = key
}

// Clone will make a copy of this object
func (a *Account) Clone() orm.Object {
	res := &Account{
		value: a.value.Copy(),
	}
	// only copy key if non-nil
	if len(a.key) > 0 {
		res.key = append([]byte(nil), a.key...)
	}
	return res
}

// Coins returns the coins stored in the account
func (a Account) Coins() coin.Coins {
	return coin.Coins(a.value.GetCoins())
}

// Add modifies the account to add Coin c
func (a *Account) Add(c coin.Coin) error {
	cs, err := a.Coins().Add(c)
	if err != nil {
		return err
	}
	a.value.Coins = cs
	return nil
}

// Subtract modifies the account to remove Coin c
func (a *Account) Subtract(c coin.Coin) error {
	return a.Add(c.Negative())
}

// AsSet safely extracts a Set value from the object
func AsSet(obj orm.Object) *Set {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Set)
}

//--- cash.Bucket - type-safe bucket

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewAccount(nil)),
	}
}

func (b Bucket) Get(db vault.KVStore, key vault.Address) (*Account, error) {
	obj, err := b.Bucket.Get(db, key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*Account), nil
}

func (b Bucket) Save(db vault.KVStore, value *Account) error {
	return b.Bucket.Save(db, value)
}

func (b Bucket) GetOrCreate(db vault.KVStore, key vault.Address) (*Account, error) {
	account, err := b.Get(db, key)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = NewAccount(key)
	}
	return account, nil
}

package cash

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorum-one/vault"
	"github.com/quorum-one/vault/coin"
	"github.com/quorum-one/vault/errors"
	"github.com/quorum-one/vault/store"
	"github.com/quorum-one/vault/vaulttest"
)

// Set is registered with the proto runtime on package init and must satisfy
// its message contract.
var _ proto.Message = (*Set)(nil)

func getAccount(t testing.TB, kv vault.KVStore, addr vault.Address) *Set {
	t.Helper()
	bucket := NewBucket()
	res, err := bucket.Bucket.Get(kv, addr)
	require.NoError(t, err)
	return AsSet(res)
}

func mustCombineCoins(t testing.TB, coins ...coin.Coin) coin.Coins {
	t.Helper()
	cs, err := coin.CombineCoins(coins...)
	require.NoError(t, err)
	return cs
}

func TestIssueCoins(t *testing.T) {
	kv := store.MemStore()
	addr := vaulttest.NewAddress("first account")
	addr2 := vaulttest.NewAddress("second account")

	controller := NewController(NewBucket())

	plus := coin.NewCoin(500, 1000, "FOO")
	minus := coin.NewCoin(-400, -600, "FOO")
	total := coin.NewCoin(100, 400, "FOO")
	other := coin.NewCoin(1, 0, "DING")

	assert.Nil(t, getAccount(t, kv, addr))
	assert.Nil(t, getAccount(t, kv, addr2))

	// issue positive
	err := controller.IssueCoins(kv, addr, plus)
	require.NoError(t, err)
	s := getAccount(t, kv, addr)
	require.NotNil(t, s)
	assert.True(t, coin.Coins(s.GetCoins()).Contains(plus))
	assert.False(t, coin.Coins(s.GetCoins()).Contains(other))

	// issue negative
	err = controller.IssueCoins(kv, addr, minus)
	require.NoError(t, err)
	s = getAccount(t, kv, addr)
	require.NotNil(t, s)
	assert.False(t, coin.Coins(s.GetCoins()).Contains(plus))
	assert.True(t, coin.Coins(s.GetCoins()).Contains(total))
	assert.Nil(t, getAccount(t, kv, addr2))

	// issue to other account
	err = controller.IssueCoins(kv, addr2, other)
	require.NoError(t, err)
	s2 := getAccount(t, kv, addr2)
	require.NotNil(t, s2)
	assert.True(t, coin.Coins(s2.GetCoins()).Contains(other))
	assert.False(t, coin.Coins(s2.GetCoins()).Contains(total))

	// set to zero is fine
	err = controller.IssueCoins(kv, addr2, other.Negative())
	require.NoError(t, err)
	s2 = getAccount(t, kv, addr2)
	require.NotNil(t, s2)
	assert.True(t, coin.Coins(s2.GetCoins()).IsEmpty())

	// overflow is rejected
	err = controller.IssueCoins(kv, addr, coin.NewCoin(coin.MaxInt, 0, "FOO"))
	assert.Error(t, err)
	s = getAccount(t, kv, addr)
	require.NotNil(t, s)
	assert.True(t, coin.Coins(s.GetCoins()).Equals(mustCombineCoins(t, total)))
}

func TestMoveCoins(t *testing.T) {
	kv := store.MemStore()
	addr := vaulttest.NewAddress("first account")
	addr2 := vaulttest.NewAddress("second account")
	addr3 := vaulttest.NewAddress("third account")

	controller := NewController(NewBucket())

	cc := "MONY"
	bank := coin.NewCoin(50000, 0, cc)
	send := coin.NewCoin(300, 0, cc)

	// can't send from an empty account
	err := controller.MoveCoins(kv, addr, addr2, send)
	assert.True(t, errors.ErrEmpty.Is(err), "unexpected error: %+v", err)

	// so we issue money
	err = controller.IssueCoins(kv, addr, bank)
	require.NoError(t, err)

	// proper move
	err = controller.MoveCoins(kv, addr, addr2, send)
	require.NoError(t, err)
	s := getAccount(t, kv, addr)
	require.NotNil(t, s)
	assert.True(t, coin.Coins(s.GetCoins()).Contains(coin.NewCoin(49700, 0, cc)))
	s2 := getAccount(t, kv, addr2)
	require.NotNil(t, s2)
	assert.True(t, coin.Coins(s2.GetCoins()).Contains(send))
	assert.Nil(t, getAccount(t, kv, addr3))

	// cannot send negative or zero
	err = controller.MoveCoins(kv, addr2, addr3, send.Negative())
	assert.True(t, errors.ErrAmount.Is(err), "unexpected error: %+v", err)
	err = controller.MoveCoins(kv, addr2, addr3, coin.NewCoin(0, 0, cc))
	assert.True(t, errors.ErrAmount.Is(err), "unexpected error: %+v", err)

	// cannot send too much or a missing currency
	err = controller.MoveCoins(kv, addr2, addr3, bank)
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "unexpected error: %+v", err)
	err = controller.MoveCoins(kv, addr2, addr3, coin.NewCoin(5, 0, "BAD"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "unexpected error: %+v", err)
	s2 = getAccount(t, kv, addr2)
	assert.True(t, coin.Coins(s2.GetCoins()).Contains(send))

	// send all coins
	err = controller.MoveCoins(kv, addr2, addr3, send)
	require.NoError(t, err)
	s2 = getAccount(t, kv, addr2)
	assert.True(t, coin.Coins(s2.GetCoins()).IsEmpty())
	s3 := getAccount(t, kv, addr3)
	assert.True(t, coin.Coins(s3.GetCoins()).Contains(send))
}

func TestBalance(t *testing.T) {
	kv := store.MemStore()
	addr := vaulttest.NewAddress("funded account")

	controller := NewController(NewBucket())

	_, err := controller.Balance(kv, addr)
	assert.True(t, errors.ErrEmpty.Is(err), "unexpected error: %+v", err)

	money := coin.NewCoin(7, 0, "CASH")
	require.NoError(t, controller.IssueCoins(kv, addr, money))

	cs, err := controller.Balance(kv, addr)
	require.NoError(t, err)
	assert.True(t, cs.Contains(money))
}

package wallet

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorum-one/vault"
	"github.com/quorum-one/vault/coin"
	"github.com/quorum-one/vault/errors"
	"github.com/quorum-one/vault/store"
	"github.com/quorum-one/vault/vaulttest"
	"github.com/quorum-one/vault/x/cash"
)

var oneEther = coin.NewCoin(1, 0, "ETH")

type testVault struct {
	db     vault.CacheableKVStore
	engine *Engine
	ledger cash.Controller
	owners []vault.Address
	source vault.Address
	dest   vault.Address
	now    vault.UnixTime
}

func newTestVault(t testing.TB, n int, threshold uint32, funds ...coin.Coin) *testVault {
	t.Helper()

	db := store.MemStore()
	source := vaulttest.NewAddress("vault source")
	owners := make([]vault.Address, n)
	for i := range owners {
		owners[i] = vaulttest.NewAddress(fmt.Sprintf("owner %d", i))
	}
	ledger := cash.NewController(cash.NewBucket())
	for _, c := range funds {
		require.NoError(t, ledger.IssueCoins(db, source, c))
	}
	engine, err := NewEngine(db, owners, threshold, DefaultExpiryWindow, source, ledger)
	require.NoError(t, err)

	return &testVault{
		db:     db,
		engine: engine,
		ledger: ledger,
		owners: owners,
		source: source,
		dest:   vaulttest.NewAddress("beneficiary"),
		now:    vault.UnixTime(1234567890),
	}
}

func TestSubmitCreatesPendingTransaction(t *testing.T) {
	v := newTestVault(t, 4, 2, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)
	require.NotNil(t, id)

	confs, err := v.engine.Confirmations(v.db, id)
	require.NoError(t, err)
	require.Len(t, confs, 1)
	assert.True(t, confs[0].Equals(v.owners[0]))

	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStatePending, state)

	// No funds move before the quorum is met.
	balance, err := v.ledger.Balance(v.db, v.source)
	require.NoError(t, err)
	assert.True(t, balance.Contains(oneEther))
}

func TestConfirmReachesQuorumAndExecutes(t *testing.T) {
	v := newTestVault(t, 4, 2, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	err = v.engine.Confirm(v.db, v.owners[1], id, v.now+100)
	require.NoError(t, err)

	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)

	confs, err := v.engine.Confirmations(v.db, id)
	require.NoError(t, err)
	require.Len(t, confs, 2)
	assert.True(t, confs[0].Equals(v.owners[0]))
	assert.True(t, confs[1].Equals(v.owners[1]))

	// The vault is drained and the beneficiary paid, exactly once.
	balance, err := v.ledger.Balance(v.db, v.source)
	require.NoError(t, err)
	assert.True(t, balance.IsEmpty())
	got, err := v.ledger.Balance(v.db, v.dest)
	require.NoError(t, err)
	assert.True(t, got.Contains(oneEther))
}

func TestSubmitAuthorization(t *testing.T) {
	v := newTestVault(t, 3, 2, oneEther)
	stranger := vaulttest.NewAddress("not an owner")

	_, err := v.engine.Submit(v.db, stranger, v.dest, oneEther, nil, v.now)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)
}

func TestSubmitInputValidation(t *testing.T) {
	v := newTestVault(t, 3, 2, oneEther)

	cases := map[string]struct {
		dest   vault.Address
		amount coin.Coin
	}{
		"nil destination":    {nil, oneEther},
		"short destination":  {vault.Address{0x1, 0x2}, oneEther},
		"negative amount":    {v.dest, coin.NewCoin(-1, 0, "ETH")},
		"malformed currency": {v.dest, coin.NewCoin(1, 0, "e")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.engine.Submit(v.db, v.owners[0], tc.dest, tc.amount, nil, v.now)
			assert.True(t, errors.ErrInput.Is(err), "unexpected error: %+v", err)
		})
	}
}

func TestConfirmFailureModes(t *testing.T) {
	v := newTestVault(t, 4, 3, oneEther)
	stranger := vaulttest.NewAddress("not an owner")

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	err = v.engine.Confirm(v.db, v.owners[1], []byte("no such id"), v.now)
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)

	err = v.engine.Confirm(v.db, stranger, id, v.now)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)

	// The submitter already confirmed implicitly.
	err = v.engine.Confirm(v.db, v.owners[0], id, v.now)
	assert.True(t, ErrAlreadyConfirmed.Is(err), "unexpected error: %+v", err)

	confs, err := v.engine.Confirmations(v.db, id)
	require.NoError(t, err)
	assert.Len(t, confs, 1)
}

func TestConfirmAfterExecution(t *testing.T) {
	v := newTestVault(t, 3, 2, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)
	require.NoError(t, v.engine.Confirm(v.db, v.owners[1], id, v.now))

	err = v.engine.Confirm(v.db, v.owners[2], id, v.now)
	assert.True(t, ErrFinalized.Is(err), "unexpected error: %+v", err)

	// Terminal state and confirmation set are untouched.
	confs, err := v.engine.Confirmations(v.db, id)
	require.NoError(t, err)
	assert.Len(t, confs, 2)
	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)

	// The debit happened exactly once.
	got, err := v.ledger.Balance(v.db, v.dest)
	require.NoError(t, err)
	assert.True(t, got.Equals(mustCombine(t, oneEther)))
}

func TestThresholdOneExecutesOnSubmit(t *testing.T) {
	v := newTestVault(t, 3, 1, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)

	got, err := v.ledger.Balance(v.db, v.dest)
	require.NoError(t, err)
	assert.True(t, got.Contains(oneEther))
}

func TestConfirmBeforeExpiryWindow(t *testing.T) {
	v := newTestVault(t, 4, 2, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	// 100 seconds short of five days is still confirmable.
	almost := v.now.Add(DefaultExpiryWindow.Duration()) - 100
	require.NoError(t, v.engine.Confirm(v.db, v.owners[1], id, almost))

	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)
}

func TestConfirmAfterExpiryWindow(t *testing.T) {
	v := newTestVault(t, 4, 2, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	late := v.now.Add(DefaultExpiryWindow.Duration()) + 100
	err = v.engine.Confirm(v.db, v.owners[1], id, late)
	assert.True(t, errors.ErrExpired.Is(err), "unexpected error: %+v", err)

	// The expiry transition itself survives the failing call.
	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExpired, state)

	// No confirmation was recorded and no funds moved.
	confs, err := v.engine.Confirmations(v.db, id)
	require.NoError(t, err)
	assert.Len(t, confs, 1)
	balance, err := v.ledger.Balance(v.db, v.source)
	require.NoError(t, err)
	assert.True(t, balance.Contains(oneEther))

	// Once expired the record is terminal.
	err = v.engine.Confirm(v.db, v.owners[2], id, late)
	assert.True(t, ErrFinalized.Is(err), "unexpected error: %+v", err)
}

func TestExpiryBoundaryIsClosed(t *testing.T) {
	v := newTestVault(t, 4, 2, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	// Exactly at the window boundary the transaction counts as expired.
	exact := v.now.Add(DefaultExpiryWindow.Duration())
	err = v.engine.Confirm(v.db, v.owners[1], id, exact)
	assert.True(t, errors.ErrExpired.Is(err), "unexpected error: %+v", err)
}

func TestInsufficientFundsKeepsConfirmation(t *testing.T) {
	// Fund with half an ether only.
	v := newTestVault(t, 3, 2, coin.NewCoin(0, 500000000, "ETH"))

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	err = v.engine.Confirm(v.db, v.owners[1], id, v.now)
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "unexpected error: %+v", err)

	// Quorum is met but the transaction stays pending, confirmation kept.
	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStatePending, state)
	confs, err := v.engine.Confirmations(v.db, id)
	require.NoError(t, err)
	assert.Len(t, confs, 2)

	// Execute retries once the vault is topped up.
	require.NoError(t, v.ledger.IssueCoins(v.db, v.source, oneEther))
	require.NoError(t, v.engine.Execute(v.db, v.owners[2], id, v.now+10))

	state, err = v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)
	got, err := v.ledger.Balance(v.db, v.dest)
	require.NoError(t, err)
	assert.True(t, got.Contains(oneEther))
}

func TestExecuteFailureModes(t *testing.T) {
	v := newTestVault(t, 3, 2, oneEther)
	stranger := vaulttest.NewAddress("not an owner")

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	err = v.engine.Execute(v.db, v.owners[1], []byte("no such id"), v.now)
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)

	err = v.engine.Execute(v.db, stranger, id, v.now)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)

	// One confirmation of two is not a quorum.
	err = v.engine.Execute(v.db, v.owners[1], id, v.now)
	assert.True(t, errors.ErrState.Is(err), "unexpected error: %+v", err)

	// Funds did not move.
	balance, err := v.ledger.Balance(v.db, v.source)
	require.NoError(t, err)
	assert.True(t, balance.Contains(oneEther))
}

func TestSubmitWithEmptyVaultStaysPending(t *testing.T) {
	// Threshold of one but no funds at all.
	v := newTestVault(t, 2, 1)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)

	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStatePending, state)

	require.NoError(t, v.ledger.IssueCoins(v.db, v.source, oneEther))
	require.NoError(t, v.engine.Execute(v.db, v.owners[1], id, v.now+5))

	state, err = v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)
}

func TestTransactionIDsAreSequential(t *testing.T) {
	v := newTestVault(t, 4, 3, oneEther)

	var prev []byte
	for i := 0; i < 5; i++ {
		id, err := v.engine.Submit(v.db, v.owners[0], v.dest, coin.NewCoin(0, 1, "ETH"), nil, v.now)
		require.NoError(t, err)
		require.Len(t, id, 8)
		if prev != nil {
			assert.True(t, bytes.Compare(prev, id) < 0, "ids not increasing: %X then %X", prev, id)
		}
		prev = id
	}
}

func TestConfirmationOrderIsRecorded(t *testing.T) {
	v := newTestVault(t, 4, 4, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)
	require.NoError(t, v.engine.Confirm(v.db, v.owners[2], id, v.now+1))
	require.NoError(t, v.engine.Confirm(v.db, v.owners[1], id, v.now+2))
	require.NoError(t, v.engine.Confirm(v.db, v.owners[3], id, v.now+3))

	confs, err := v.engine.Confirmations(v.db, id)
	require.NoError(t, err)
	want := []vault.Address{v.owners[0], v.owners[2], v.owners[1], v.owners[3]}
	require.Len(t, confs, len(want))
	for i := range want {
		assert.True(t, confs[i].Equals(want[i]), "position %d", i)
	}

	// The fourth confirmation reached the quorum.
	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)
}

func TestZeroAmountExecutesWithoutTransfer(t *testing.T) {
	v := newTestVault(t, 2, 1, oneEther)

	id, err := v.engine.Submit(v.db, v.owners[0], v.dest, coin.NewCoin(0, 0, "ETH"), []byte("ping"), v.now)
	require.NoError(t, err)

	state, err := v.engine.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)

	balance, err := v.ledger.Balance(v.db, v.source)
	require.NoError(t, err)
	assert.True(t, balance.Contains(oneEther))
}

func TestLoadEngineRestoresConfiguration(t *testing.T) {
	v := newTestVault(t, 3, 2, oneEther)

	loaded, err := LoadEngine(v.db, v.ledger)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), loaded.Registry().Threshold())
	assert.Equal(t, 3, loaded.Registry().OwnerCount())

	id, err := loaded.Submit(v.db, v.owners[0], v.dest, oneEther, nil, v.now)
	require.NoError(t, err)
	require.NoError(t, loaded.Confirm(v.db, v.owners[1], id, v.now))

	state, err := loaded.Status(v.db, id)
	require.NoError(t, err)
	assert.Equal(t, TransactionStateExecuted, state)
}

func TestNewEngineRejectsBadSetup(t *testing.T) {
	db := store.MemStore()
	ledger := cash.NewController(cash.NewBucket())
	source := vaulttest.NewAddress("vault source")
	owners := []vault.Address{
		vaulttest.NewAddress("a"),
		vaulttest.NewAddress("b"),
	}

	cases := map[string]struct {
		owners    []vault.Address
		threshold uint32
		window    vault.UnixDuration
		source    vault.Address
	}{
		"no owners":           {nil, 1, DefaultExpiryWindow, source},
		"zero threshold":      {owners, 0, DefaultExpiryWindow, source},
		"threshold too high":  {owners, 3, DefaultExpiryWindow, source},
		"duplicate owner":     {[]vault.Address{owners[0], owners[0]}, 1, DefaultExpiryWindow, source},
		"non-positive window": {owners, 1, 0, source},
		"broken source":       {owners, 1, DefaultExpiryWindow, vault.Address{0x1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewEngine(db, tc.owners, tc.threshold, tc.window, tc.source, ledger)
			assert.True(t, ErrInvalidConfig.Is(err), "unexpected error: %+v", err)
		})
	}
}

func mustCombine(t testing.TB, coins ...coin.Coin) coin.Coins {
	t.Helper()
	cs, err := coin.CombineCoins(coins...)
	require.NoError(t, err)
	return cs
}

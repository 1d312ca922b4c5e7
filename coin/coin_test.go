package coin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorum-one/vault/errors"
)

func TestCoinValidate(t *testing.T) {
	cases := map[string]struct {
		coin    Coin
		wantErr *errors.Error
	}{
		"valid":              {NewCoin(100, 5000, "ETH"), nil},
		"valid negative":     {NewCoin(-100, -5000, "ETH"), nil},
		"zero":               {NewCoin(0, 0, "ETH"), nil},
		"bad ticker short":   {NewCoin(1, 0, "ET"), errors.ErrCurrency},
		"bad ticker case":    {NewCoin(1, 0, "eth"), errors.ErrCurrency},
		"whole overflow":     {NewCoin(MaxInt+1, 0, "ETH"), errors.ErrOverflow},
		"fraction overflow":  {NewCoin(0, FracUnit, "ETH"), errors.ErrOverflow},
		"mismatched sign":    {NewCoin(1, -1, "ETH"), errors.ErrState},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.coin.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			}
		})
	}
}

func TestCoinAdd(t *testing.T) {
	sum, err := NewCoin(1, 500000000, "ETH").Add(NewCoin(2, 700000000, "ETH"))
	require.NoError(t, err)
	assert.True(t, sum.Equals(NewCoin(4, 200000000, "ETH")))

	// mismatched currencies cannot combine
	_, err = NewCoin(1, 0, "ETH").Add(NewCoin(1, 0, "BTC"))
	assert.True(t, errors.ErrCurrency.Is(err), "unexpected error: %+v", err)

	// a zero coin without ticker is neutral
	sum, err = Coin{}.Add(NewCoin(3, 0, "ETH"))
	require.NoError(t, err)
	assert.True(t, sum.Equals(NewCoin(3, 0, "ETH")))

	// overflow surfaces
	_, err = NewCoin(MaxInt, MaxFrac, "ETH").Add(NewCoin(0, 1, "ETH"))
	assert.True(t, errors.ErrOverflow.Is(err), "unexpected error: %+v", err)
}

func TestCoinSubtractAndNegative(t *testing.T) {
	diff, err := NewCoin(5, 0, "ETH").Subtract(NewCoin(2, 300000000, "ETH"))
	require.NoError(t, err)
	assert.True(t, diff.Equals(NewCoin(2, 700000000, "ETH")))

	c := NewCoin(1, 2, "ETH")
	sum, err := c.Add(c.Negative())
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestCoinCompare(t *testing.T) {
	big := NewCoin(2, 0, "ETH")
	small := NewCoin(1, 999999999, "ETH")

	assert.Equal(t, 1, big.Compare(small))
	assert.Equal(t, -1, small.Compare(big))
	assert.Equal(t, 0, big.Compare(big))

	assert.True(t, big.IsGTE(small))
	assert.True(t, big.IsGTE(big))
	assert.False(t, small.IsGTE(big))
	// different type is never GTE
	assert.False(t, big.IsGTE(NewCoin(1, 0, "BTC")))
}

func TestCoinString(t *testing.T) {
	assert.Equal(t, "1.5 ETH", NewCoin(1, 500000000, "ETH").String())
	assert.Equal(t, "-0.000000001 ETH", NewCoin(0, -1, "ETH").String())
	assert.Equal(t, "42 MONY", NewCoin(42, 0, "MONY").String())
}

func TestCoinsAdd(t *testing.T) {
	cs, err := CombineCoins(NewCoin(1, 0, "ETH"), NewCoin(2, 0, "BTC"))
	require.NoError(t, err)

	// sorted by ticker
	assert.Equal(t, "BTC", cs[0].Ticker)
	assert.Equal(t, "ETH", cs[1].Ticker)

	cs, err = cs.Add(NewCoin(3, 0, "ETH"))
	require.NoError(t, err)
	assert.True(t, cs.Contains(NewCoin(4, 0, "ETH")))

	// adding the exact negative removes the currency
	cs, err = cs.Add(NewCoin(-4, 0, "ETH"))
	require.NoError(t, err)
	assert.False(t, cs.Contains(NewCoin(0, 1, "ETH")))
	assert.Equal(t, 1, len(cs))

	// zero coins are ignored
	cs, err = cs.Add(NewCoin(0, 0, "DOGE"))
	require.NoError(t, err)
	assert.Equal(t, 1, len(cs))
}

func TestCoinsContains(t *testing.T) {
	cs, err := CombineCoins(NewCoin(10, 0, "ETH"))
	require.NoError(t, err)

	assert.True(t, cs.Contains(NewCoin(10, 0, "ETH")))
	assert.True(t, cs.Contains(NewCoin(9, 999999999, "ETH")))
	assert.False(t, cs.Contains(NewCoin(10, 1, "ETH")))
	assert.False(t, cs.Contains(NewCoin(1, 0, "BTC")))
}

func TestCoinsValidate(t *testing.T) {
	valid := Coins{NewCoinp(1, 0, "BTC"), NewCoinp(2, 0, "ETH")}
	assert.NoError(t, valid.Validate())

	unsorted := Coins{NewCoinp(1, 0, "ETH"), NewCoinp(2, 0, "BTC")}
	assert.True(t, errors.ErrState.Is(unsorted.Validate()))

	zero := Coins{NewCoinp(0, 0, "ETH")}
	assert.True(t, errors.ErrState.Is(zero.Validate()))
}

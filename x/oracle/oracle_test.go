package oracle

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) dividends.Address {
	return dividends.Address(bytes.Repeat([]byte{b}, dividends.AddressLength))
}

func TestCheckpoints(t *testing.T) {
	var c Checkpoints
	c.Set(5, uint256.NewInt(50))
	c.Set(1, uint256.NewInt(10))
	c.Set(3, uint256.NewInt(30))
	c.Set(3, uint256.NewInt(33))

	cases := map[uint64]uint64{
		0:   0,
		1:   10,
		2:   10,
		3:   33,
		4:   33,
		5:   50,
		100: 50,
	}
	for day, want := range cases {
		assert.Equal(t, want, c.At(day).Uint64(), "day %d", day)
	}
	assert.Equal(t, 3, c.Len())
}

func TestStake(t *testing.T) {
	alice, bob := addr(1), addr(2)
	s := NewStake().Set(alice, 1, 100).Set(bob, 2, 50).Set(alice, 3, 0)

	total, err := s.TotalStakedBalanceOfAt(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), total.Uint64())

	total, err = s.TotalStakedBalanceOfAt(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), total.Uint64())

	bal, err := s.StakedBalanceOfAt(addr(9), 3)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	supply, err := s.StakedSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), supply.Uint64())

	assert.Equal(t, []dividends.Address{alice, bob}, s.Accounts())
}

func TestPools(t *testing.T) {
	alice, bob := addr(1), addr(2)
	p := NewPools().
		SetImplied(7, 1, 1000).
		SetBalance(alice, 7, 1, 30).
		SetBalance(bob, 7, 1, 10)

	supply, err := p.LPTotalSupplyAt(7, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), supply.Uint64())

	implied, err := p.LPImpliedStakeAt(7, 0)
	require.NoError(t, err)
	assert.True(t, implied.IsZero())

	bal, err := p.LPBalanceOfAt(alice, 8, 2)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1000+3*86400+5, 0))
	o := &Time{Clock: clock, Offset: 1000, SecondsPerDay: 86400}

	day, err := o.DayNumber()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), day)

	clock.Advance(24 * time.Hour)
	day, err = o.DayNumber()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), day)

	_, err = (&Time{Clock: clock}).DayNumber()
	assert.True(t, errors.ErrState.Is(err))
}

func TestLoad(t *testing.T) {
	alice := addr(1)
	raw := `{
		"stake": [{"account": "` + alice.String() + `", "day": 1, "amount": "100"}],
		"pool_balances": [{"account": "` + alice.String() + `", "pool": 7, "day": 1, "amount": "5"}],
		"pool_stake": [{"pool": 7, "day": 1, "amount": "500"}]
	}`
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	stake, pools, err := Load(doc)
	require.NoError(t, err)

	bal, err := stake.StakedBalanceOfAt(alice, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal.Uint64())

	implied, err := pools.LPImpliedStakeAt(7, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), implied.Uint64())

	_, _, err = Load(Document{Stake: []Balance{{Account: alice, Amount: "many"}}})
	assert.Error(t, err)
	assert.Len(t, errors.FieldErrors(err, "Amount"), 1)

	_, _, err = Load(Document{Stake: []Balance{{Amount: "1"}}})
	assert.True(t, errors.ErrEmpty.Is(err))
}

package feeledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens(t *testing.T) {
	db := store.MemStore()
	tokens := NewTokens()

	ok, err := tokens.IsAccepted(db, coin.NativeToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tokens.Add(db, coin.NativeToken))
	require.NoError(t, tokens.Add(db, "USDS"))
	assert.True(t, errors.ErrDuplicate.Is(tokens.Add(db, "USDS")))
	assert.True(t, errors.ErrInput.Is(tokens.Add(db, "x")))

	list, err := tokens.List(db)
	require.NoError(t, err)
	assert.Equal(t, []string{coin.NativeToken, "USDS"}, list)

	assert.True(t, errors.ErrInput.Is(tokens.Remove(db, coin.NativeToken)))
	assert.True(t, errors.ErrNotFound.Is(tokens.Remove(db, "BTC")))
	require.NoError(t, tokens.Remove(db, "USDS"))

	ok, err = tokens.IsAccepted(db, "USDS")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger(t *testing.T) {
	db := store.MemStore()
	tokens := NewTokens()
	require.NoError(t, tokens.Add(db, coin.NativeToken))
	require.NoError(t, tokens.Add(db, "USDS"))
	ledger := NewLedger(tokens)

	cases := map[string]struct {
		day     uint64
		token   string
		amount  *uint256.Int
		wantErr *errors.Error
	}{
		"native":    {day: 1, token: coin.NativeToken, amount: uint256.NewInt(10)},
		"usds":      {day: 1, token: "USDS", amount: uint256.NewInt(7)},
		"again":     {day: 1, token: "USDS", amount: uint256.NewInt(3)},
		"other day": {day: 2, token: "USDS", amount: uint256.NewInt(100)},
		"not accepted": {
			day: 1, token: "BTC", amount: uint256.NewInt(1),
			wantErr: ErrTokenNotAccepted,
		},
		"zero": {
			day: 1, token: "USDS", amount: new(uint256.Int),
			wantErr: errors.ErrAmount,
		},
	}
	// apply in a fixed order, expectations below depend on all of them
	for _, name := range []string{"native", "usds", "again", "other day", "not accepted", "zero"} {
		tc := cases[name]
		err := ledger.Record(db, tc.day, tc.token, tc.amount)
		if tc.wantErr != nil {
			assert.True(t, tc.wantErr.Is(err), "%s: %+v", name, err)
		} else {
			assert.NoError(t, err, name)
		}
	}

	fees, err := ledger.FeesOn(db, 1, "USDS")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), fees.Uint64())

	fees, err = ledger.FeesOn(db, 3, "USDS")
	require.NoError(t, err)
	assert.True(t, fees.IsZero())

	all, err := ledger.FeesForDay(db, 1)
	require.NoError(t, err)
	want, err := coin.CombineCoins(coin.NewCoin(coin.NativeToken, 10), coin.NewCoin("USDS", 10))
	require.NoError(t, err)
	assert.True(t, want.Equals(all), "got %s", all)

	all, err = ledger.FeesForDay(db, 2)
	require.NoError(t, err)
	assert.Equal(t, "100 USDS", all.String())
}

type fixedOracle struct {
	offset int64
	day    uint64
	calls  int
}

func (o *fixedOracle) TimeOffset() (int64, error) {
	o.calls++
	return o.offset, nil
}

func (o *fixedOracle) DayNumber() (uint64, error) { return o.day, nil }

func TestClockRollover(t *testing.T) {
	const perDay = 100
	db := store.MemStore()
	oracle := &fixedOracle{offset: 1000}
	clock := NewClock(oracle)

	day, err := clock.CurrentDay(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), day)

	cases := []struct {
		now        dividends.UnixTime
		wantRolled bool
		wantDay    uint64
	}{
		{now: 500, wantRolled: false, wantDay: 0},
		{now: 1099, wantRolled: false, wantDay: 0},
		{now: 1100, wantRolled: true, wantDay: 1},
		{now: 1150, wantRolled: false, wantDay: 1},
		{now: 1500, wantRolled: true, wantDay: 5},
		// time going back never decreases the counter
		{now: 1200, wantRolled: false, wantDay: 5},
	}
	for i, tc := range cases {
		rolled, err := clock.Rollover(db, tc.now, perDay)
		require.NoError(t, err)
		assert.Equal(t, tc.wantRolled, rolled, "step %d", i)
		day, err := clock.CurrentDay(db)
		require.NoError(t, err)
		assert.Equal(t, tc.wantDay, day, "step %d", i)
	}
	assert.Equal(t, 1, oracle.calls)

	// a later offset delays the next rollover
	require.NoError(t, clock.SetTimeOffset(db, 1300))
	rolled, err := clock.Rollover(db, 1700, perDay)
	require.NoError(t, err)
	assert.False(t, rolled)
	rolled, err = clock.Rollover(db, 1900, perDay)
	require.NoError(t, err)
	assert.True(t, rolled)
	day, err = clock.CurrentDay(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), day)
	assert.Equal(t, 1, oracle.calls)

	_, err = clock.Rollover(db, 1900, 0)
	assert.True(t, errors.ErrState.Is(err))
}

func TestClockSeedsDayFromOracle(t *testing.T) {
	db := store.MemStore()
	clock := NewClock(&fixedOracle{offset: 0, day: 42})
	rolled, err := clock.Rollover(db, 10, 100)
	require.NoError(t, err)
	assert.False(t, rolled)
	day, err := clock.CurrentDay(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), day)
}

func TestClockToday(t *testing.T) {
	db := store.MemStore()
	oracle := &fixedOracle{offset: 1000, day: 2}
	clock := NewClock(oracle)

	cases := map[string]struct {
		now  dividends.UnixTime
		want uint64
	}{
		"before the offset keeps the oracle day": {now: 500, want: 2},
		"same day as the oracle":                 {now: 1250, want: 2},
		"later day":                              {now: 1720, want: 7},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			day, err := clock.Today(db, tc.now, 100)
			require.NoError(t, err)
			assert.Equal(t, tc.want, day)
		})
	}

	// nothing was written
	s, err := clock.State(db)
	require.NoError(t, err)
	assert.False(t, s.Seeded)
	assert.Equal(t, uint64(0), s.Day)

	_, err = clock.Rollover(db, 1300, 100)
	require.NoError(t, err)
	day, err := clock.Today(db, 1100, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), day, "stored day is never undercut")

	_, err = clock.Today(db, 1100, 0)
	assert.True(t, errors.ErrState.Is(err))
}

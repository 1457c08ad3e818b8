package claims

import (
	"testing"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]struct {
		start, end, current, batch uint64
		wantStart, wantEnd         uint64
		wantErr                    *errors.Error
	}{
		"both unset":            {start: 0, end: 0, current: 100, batch: 50, wantStart: 50, wantEnd: 100},
		"end unset":             {start: 10, end: 0, current: 100, batch: 50, wantStart: 10, wantEnd: 60},
		"start unset":           {start: 0, end: 90, current: 100, batch: 50, wantStart: 40, wantEnd: 90},
		"end after current day": {start: 5, end: 200, current: 100, batch: 50, wantErr: ErrRange},
		"both unset early":      {start: 0, end: 0, current: 10, batch: 50, wantStart: 1, wantEnd: 10},
		"end unset capped":      {start: 90, end: 0, current: 100, batch: 50, wantStart: 90, wantEnd: 100},
		"start unset early":     {start: 0, end: 20, current: 100, batch: 50, wantStart: 1, wantEnd: 20},
		"explicit":              {start: 1, end: 2, current: 2, batch: 1, wantStart: 1, wantEnd: 2},
		"start is current day":  {start: 100, end: 0, current: 100, batch: 50, wantErr: ErrRange},
		"start after end":       {start: 30, end: 20, current: 100, batch: 50, wantErr: ErrRange},
		"start equals end":      {start: 30, end: 30, current: 100, batch: 50, wantErr: ErrRange},
		"exceeds batch size":    {start: 10, end: 61, current: 100, batch: 50, wantErr: ErrRange},
		"nothing to claim yet":  {start: 0, end: 0, current: 1, batch: 50, wantErr: ErrRange},
		"end is one":            {start: 0, end: 1, current: 100, batch: 50, wantErr: ErrRange},
		"zero batch size":       {start: 0, end: 0, current: 100, batch: 0, wantErr: ErrRange},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			start, end, err := Normalize(tc.start, tc.end, tc.current, tc.batch)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantEnd, end)
		})
	}
}

func TestBitmap(t *testing.T) {
	db := store.MemStore()
	b := NewBitmap()
	alice := dividends.NewCondition("test", "addr", []byte("alice")).Address()
	bob := dividends.NewCondition("test", "addr", []byte("bob")).Address()

	days := []uint64{1, 2, 255, 256, 257, 511, 512, 10000}
	for _, d := range days {
		ok, err := b.IsClaimed(db, alice, d)
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, b.MarkClaimed(db, alice, d))
	}
	// marking again changes nothing
	require.NoError(t, b.MarkClaimed(db, alice, 256))

	for d := uint64(0); d < 10010; d++ {
		ok, err := b.IsClaimed(db, alice, d)
		require.NoError(t, err)
		want := false
		for _, c := range days {
			want = want || c == d
		}
		require.Equal(t, want, ok, "day %d", d)

		ok, err = b.IsClaimed(db, bob, d)
		require.NoError(t, err)
		require.False(t, ok, "day %d", d)
	}

	got, err := b.ClaimedDays(db, alice, 2, 513)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 255, 256, 257, 511, 512}, got)

	got, err = b.ClaimedDays(db, bob, 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, got)

	err = b.MarkClaimed(db, nil, 1)
	assert.True(t, errors.ErrEmpty.Is(err), "%+v", err)
}

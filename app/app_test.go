package app

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/divtest"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/store/iavl"
	"github.com/iov-one/dividends/x"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingMsg struct {
	path string
}

func (m *pingMsg) Path() string             { return m.path }
func (*pingMsg) Marshal() ([]byte, error)   { return nil, nil }
func (*pingMsg) Unmarshal(raw []byte) error { return nil }
func (*pingMsg) Validate() error            { return nil }
func ping(path string) *divtest.Tx          { return &divtest.Tx{Msg: &pingMsg{path: path}} }
func genesisState() dividends.Options       { return dividends.Options{"test": []byte(`{}`)} }

func newTestApp(t testing.TB, h dividends.Handler, clock clockwork.Clock) *BaseApp {
	t.Helper()
	qr := dividends.NewQueryRouter()
	qr.Register("/raw", dividends.QueryHandlerFunc(func(db dividends.ReadOnlyKVStore, data []byte) ([]dividends.Model, error) {
		v, err := db.Get(data)
		if err != nil || v == nil {
			return nil, err
		}
		return []dividends.Model{dividends.Pair(data, v)}, nil
	}))
	r := NewRouter()
	r.Handle("test/ping", h)
	s := NewStoreApp("test", iavl.MockCommitStore(), qr, context.Background())
	return NewBaseApp(s, r, clock, true)
}

func TestInitChain(t *testing.T) {
	var calls int
	init := initFunc(func(opts dividends.Options, db dividends.KVStore) error {
		calls++
		return db.Set([]byte("genesis"), []byte("ok"))
	})

	a := newTestApp(t, &divtest.Handler{}, clockwork.NewFakeClock())
	a.WithInit(init)

	err := a.InitChain("x", genesisState())
	require.True(t, errors.ErrInput.Is(err), "invalid chain id: %+v", err)

	require.NoError(t, a.InitChain("test-chain", genesisState()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "test-chain", a.GetChainID())
	assert.Equal(t, "test-chain", dividends.GetChainID(a.BlockContext()))

	err = a.InitChain("other-chain", genesisState())
	assert.True(t, errors.ErrState.Is(err), "second init: %+v", err)

	_, err = a.Commit()
	require.NoError(t, err)
	res, err := a.Query("/raw", []byte("genesis"))
	require.NoError(t, err)
	require.Len(t, res.Models, 1)
	assert.Equal(t, "ok", string(res.Models[0].Value))
}

func TestInitChainRequiresState(t *testing.T) {
	a := newTestApp(t, &divtest.Handler{}, clockwork.NewFakeClock())
	err := a.InitChain("test-chain", nil)
	assert.True(t, errors.ErrEmpty.Is(err), "%+v", err)
}

type initFunc func(dividends.Options, dividends.KVStore) error

func (fn initFunc) FromGenesis(opts dividends.Options, db dividends.KVStore) error {
	return fn(opts, db)
}

func TestBeginBlockUsesClock(t *testing.T) {
	start := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	a := newTestApp(t, &divtest.Handler{}, clock)

	ctx := a.BeginBlock()
	now, err := dividends.BlockTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, start, now)
	height, _ := dividends.GetHeight(ctx)
	assert.Equal(t, int64(1), height)

	clock.Advance(24 * time.Hour)
	ctx = a.BeginBlock()
	now, err = dividends.BlockTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, start.Add(24*time.Hour), now)
	height, _ = dividends.GetHeight(ctx)
	assert.Equal(t, int64(2), height)
}

func TestDeliverTx(t *testing.T) {
	key := []byte("counter")
	signer := divtest.NewCondition()

	cases := map[string]struct {
		handler   *divtest.Handler
		wantErr   *errors.Error
		wantValue []byte
	}{
		"success is persisted": {
			handler: &divtest.Handler{
				OnDeliver: func(db dividends.KVStore) error { return db.Set(key, []byte("1")) },
			},
			wantValue: []byte("1"),
		},
		"failure discards all writes": {
			handler: &divtest.Handler{
				OnDeliver:  func(db dividends.KVStore) error { return db.Set(key, []byte("1")) },
				DeliverErr: errors.ErrAmount,
			},
			wantErr: errors.ErrAmount,
		},
		"panic is recovered": {
			handler: &divtest.Handler{
				OnDeliver: func(db dividends.KVStore) error {
					if err := db.Set(key, []byte("1")); err != nil {
						return err
					}
					panic("boom")
				},
			},
			wantErr: errors.ErrPanic,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			a := newTestApp(t, tc.handler, clockwork.NewFakeClock())
			a.BeginBlock()

			_, err := a.DeliverTx(ping("test/ping"), signer)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}

			v, err := a.DeliverStore().Get(key)
			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, v)

			// Uncommitted state is not visible to queries.
			res, err := a.Query("/raw", key)
			require.NoError(t, err)
			assert.Empty(t, res.Models)

			info, err := a.Commit()
			require.NoError(t, err)
			assert.Equal(t, int64(1), info.Version)

			res, err = a.Query("/raw", key)
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Height)
			if tc.wantValue == nil {
				assert.Empty(t, res.Models)
			} else {
				require.Len(t, res.Models, 1)
				assert.Equal(t, tc.wantValue, res.Models[0].Value)
			}
		})
	}
}

func TestDeliverTxSigners(t *testing.T) {
	signer := divtest.NewCondition()
	var got []dividends.Condition
	h := &divtest.Handler{}
	a := newTestApp(t, signerRecorder{Handler: h, got: &got}, clockwork.NewFakeClock())
	a.BeginBlock()

	_, err := a.DeliverTx(ping("test/ping"), signer)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, signer.Equals(got[0]))
	assert.Equal(t, 1, h.DeliverCallCount())
}

type signerRecorder struct {
	*divtest.Handler
	got *[]dividends.Condition
}

func (s signerRecorder) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	*s.got = x.SignerAuth{}.GetConditions(ctx)
	return s.Handler.Deliver(ctx, db, tx)
}

func TestCheckTxDoesNotPersist(t *testing.T) {
	h := &divtest.Handler{CheckErr: errors.ErrUnauthorized}
	a := newTestApp(t, h, clockwork.NewFakeClock())
	a.BeginBlock()

	_, err := a.CheckTx(ping("test/ping"))
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 1, h.CheckCallCount())
	assert.Equal(t, 0, h.DeliverCallCount())
}

func TestRedactedPanic(t *testing.T) {
	h := &divtest.Handler{OnDeliver: func(dividends.KVStore) error { panic("secret") }}
	r := NewRouter()
	r.Handle("test/ping", h)
	s := NewStoreApp("test", iavl.MockCommitStore(), dividends.NewQueryRouter(), context.Background())
	a := NewBaseApp(s, r, clockwork.NewFakeClock(), false)
	a.BeginBlock()

	_, err := a.DeliverTx(ping("test/ping"))
	require.Error(t, err)
	assert.Equal(t, "internal error", err.Error())
}

func TestUnknownPaths(t *testing.T) {
	a := newTestApp(t, &divtest.Handler{}, clockwork.NewFakeClock())
	a.BeginBlock()

	_, err := a.DeliverTx(ping("test/pong"))
	assert.True(t, ErrNoSuchPath.Is(err), "%+v", err)

	_, err = a.Query("/nothing", nil)
	assert.True(t, ErrNoSuchPath.Is(err), "%+v", err)
}

func TestReloadKeepsChainID(t *testing.T) {
	db := iavl.MockCommitStore()
	s := NewStoreApp("test", db, dividends.NewQueryRouter(), context.Background())
	require.NoError(t, s.InitChain("test-chain", genesisState()))
	_, err := s.Commit()
	require.NoError(t, err)

	reloaded := NewStoreApp("test", db, dividends.NewQueryRouter(), context.Background())
	assert.Equal(t, "test-chain", reloaded.GetChainID())
	name, info, err := reloaded.Info()
	require.NoError(t, err)
	assert.Equal(t, "test", name)
	assert.Equal(t, int64(1), info.Version)
}

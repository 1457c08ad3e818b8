package distribution

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/divtest"
	"github.com/iov-one/dividends/store"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const day = 86400

// env is a distribution set up from genesis, with 60% of the revenue going
// to holders and 40% to the treasury.
type env struct {
	db       store.CacheableKVStore
	c        *Coordinator
	bank     *divtest.Bank
	stake    *divtest.Stake
	pools    *divtest.Pools
	owner    dividends.Condition
	gov      dividends.Condition
	notifier dividends.Condition
	treasury dividends.Condition
	wall     clockwork.FakeClock
}

func newEnv(t testing.TB) *env {
	t.Helper()
	e := &env{
		db:       store.MemStore(),
		bank:     divtest.NewBank(),
		stake:    divtest.NewStake(),
		pools:    divtest.NewPools(),
		owner:    divtest.NewCondition(),
		gov:      divtest.NewCondition(),
		notifier: divtest.NewCondition(),
		treasury: divtest.NewCondition(),
		wall:     clockwork.NewFakeClockAt(time.Unix(0, 0)),
	}
	e.c = NewCoordinator(e.stake, e.pools, &divtest.Time{}, e.bank).WithClock(e.wall)

	conf := Configuration{
		Owner:          e.owner.Address(),
		Governance:     e.gov.Address(),
		Notifier:       e.notifier.Address(),
		Treasury:       e.treasury.Address(),
		HolderCategory: "holders",
		DaoCategory:    "dao",
		BatchSize:      50,
		SecondsPerDay:  DefaultSecondsPerDay,
	}
	rawConf, err := json.Marshal(map[string]interface{}{packageName: conf})
	require.NoError(t, err)
	opts := dividends.Options{
		"conf": rawConf,
		"distribution": []byte(`{
			"categories": [
				{"name": "holders", "percentage": "60%"},
				{"name": "dao", "percentage": "40%"}
			],
			"tokens": ["USDS"]
		}`),
	}
	var init Initializer
	require.NoError(t, init.FromGenesis(opts, e.db))
	return e
}

// ctx returns a context of a block on given day.
func (e *env) ctx(d uint64, signers ...dividends.Condition) dividends.Context {
	ctx := dividends.WithBlockTime(context.Background(), time.Unix(int64(d)*day+10, 0))
	return divtestAuth.SetConditions(ctx, signers...)
}

var divtestAuth = &divtest.CtxAuth{Key: "auth"}

package distribution

import (
	"strings"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/divtest"
	divassert "github.com/iov-one/dividends/divtest/assert"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	"github.com/iov-one/dividends/store"
	"github.com/iov-one/dividends/x/allocation"
	"github.com/iov-one/dividends/x/claims"
	"github.com/iov-one/dividends/x/feeledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routes is a minimal registry used to reach the handlers by path.
type routes map[string]dividends.Handler

func (r routes) Handle(path string, h dividends.Handler) {
	r[path] = h
}

func (e *env) routes() routes {
	r := make(routes)
	RegisterRoutes(r, divtestAuth, e.c)
	return r
}

func TestHandlerAuthorization(t *testing.T) {
	half := fixed.One / 2

	cases := map[string]struct {
		msg     dividends.Msg
		signers func(*env) []dividends.Condition
		// wantCheckErr is returned by both check and deliver.
		wantCheckErr *errors.Error
		// wantDeliverErr is returned only by deliver.
		wantDeliverErr *errors.Error
	}{
		"notifier reports revenue": {
			msg:     &RevenueReceivedMsg{Token: "USDS", Amount: "1000"},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.notifier} },
		},
		"owner cannot report revenue": {
			msg:          &RevenueReceivedMsg{Token: "USDS", Amount: "1000"},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"revenue in a token that is not accepted": {
			msg:          &RevenueReceivedMsg{Token: "BTC", Amount: "1"},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.notifier} },
			wantCheckErr: feeledger.ErrTokenNotAccepted,
		},
		"notifier reports a stake change": {
			msg:     &StakeChangedMsg{Account: divtest.RandomAddr(), BalanceBefore: "10"},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.notifier} },
		},
		"anyone else cannot report a stake change": {
			msg:          &StakeChangedMsg{Account: divtest.RandomAddr(), BalanceBefore: "10"},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{divtest.NewCondition()} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"governance sets percentages": {
			msg: &SetCategoryPercentagesMsg{Percentages: []allocation.CategoryPercentage{
				{Category: "holders", Percentage: half},
				{Category: "dao", Percentage: half},
			}},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
		},
		"owner cannot set percentages": {
			msg: &SetCategoryPercentagesMsg{Percentages: []allocation.CategoryPercentage{
				{Category: "holders", Percentage: half},
				{Category: "dao", Percentage: half},
			}},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"owner adds a category": {
			msg:     &AddCategoryMsg{Name: "marketing"},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
		},
		"governance cannot add a category": {
			msg:          &AddCategoryMsg{Name: "marketing"},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"holder category cannot be removed": {
			msg:            &RemoveCategoryMsg{Name: "holders"},
			signers:        func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantDeliverErr: allocation.ErrCategoryInUse,
		},
		"unknown category cannot be removed": {
			msg:            &RemoveCategoryMsg{Name: "marketing"},
			signers:        func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantDeliverErr: errors.ErrNotFound,
		},
		"owner accepts a token": {
			msg:     &AddTokenMsg{Token: "DAI"},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
		},
		"accepted token cannot be added twice": {
			msg:            &AddTokenMsg{Token: "USDS"},
			signers:        func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantDeliverErr: errors.ErrDuplicate,
		},
		"native token cannot be removed": {
			msg:            &RemoveTokenMsg{Token: "native"},
			signers:        func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantDeliverErr: errors.ErrInput,
		},
		"governance sets the batch size": {
			msg:     &SetBatchSizeMsg{BatchSize: 10},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
		},
		"zero batch size": {
			msg:          &SetBatchSizeMsg{},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
			wantCheckErr: errors.ErrEmpty,
		},
		"switchover in the future": {
			msg:     &SetSwitchoverDayMsg{Day: 5},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
		},
		"switchover in the past": {
			msg:            &SetSwitchoverDayMsg{Day: 2},
			signers:        func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
			wantDeliverErr: errors.ErrInput,
		},
		"owner sets the time offset": {
			msg:     &SetTimeOffsetMsg{Offset: 3600},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
		},
		"governance enables continuous mode": {
			msg:     &EnableContinuousMsg{},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
		},
		"owner cannot enable continuous mode": {
			msg:          &EnableContinuousMsg{},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"unsigned claim": {
			msg:          &ClaimMsg{},
			signers:      func(e *env) []dividends.Condition { return nil },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"owner replaces the notifier": {
			msg:     &UpdateConfigurationMsg{Patch: &Configuration{Notifier: divtest.RandomAddr()}},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
		},
		"governance cannot patch the configuration": {
			msg:          &UpdateConfigurationMsg{Patch: &Configuration{Notifier: divtest.RandomAddr()}},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.gov} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"treasury cannot be replaced": {
			msg:          &UpdateConfigurationMsg{Patch: &Configuration{Treasury: divtest.RandomAddr()}},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrState,
		},
		"categories cannot be swapped": {
			msg:          &UpdateConfigurationMsg{Patch: &Configuration{HolderCategory: "dao", DaoCategory: "holders"}},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrState,
		},
		"day length cannot be changed": {
			msg:          &UpdateConfigurationMsg{Patch: &Configuration{SecondsPerDay: 3600}},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrState,
		},
		"owner cannot move the switchover": {
			msg:          &UpdateConfigurationMsg{Patch: &Configuration{SwitchoverDay: 2}},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"owner cannot change the batch size": {
			msg:          &UpdateConfigurationMsg{Patch: &Configuration{BatchSize: 7}},
			signers:      func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
			wantCheckErr: errors.ErrUnauthorized,
		},
		"unchanged values are accepted": {
			msg: &UpdateConfigurationMsg{Patch: &Configuration{
				BatchSize:     50,
				SecondsPerDay: DefaultSecondsPerDay,
			}},
			signers: func(e *env) []dividends.Condition { return []dividends.Condition{e.owner} },
		},
		"anyone settles for a recipient": {
			msg:     &SettleForRecipientMsg{Recipient: divtest.RandomAddr()},
			signers: func(e *env) []dividends.Condition { return nil },
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			h, ok := e.routes()[tc.msg.Path()]
			require.True(t, ok, "no handler for %s", tc.msg.Path())

			tx := &divtest.Tx{Msg: tc.msg}
			ctx := e.ctx(3, tc.signers(e)...)

			cache := e.db.CacheWrap()
			_, err := h.Check(ctx, cache, tx)
			if !tc.wantCheckErr.Is(err) {
				t.Fatalf("check: want %+v error, got %+v", tc.wantCheckErr, err)
			}
			cache.Discard()

			wantErr := tc.wantCheckErr
			if wantErr == nil {
				wantErr = tc.wantDeliverErr
			}
			_, err = h.Deliver(ctx, e.db, tx)
			if !wantErr.Is(err) {
				t.Fatalf("deliver: want %+v error, got %+v", wantErr, err)
			}
		})
	}
}

func TestConfigurationPatchKeepsTreasury(t *testing.T) {
	e := newEnv(t)
	e.stake.Set(divtest.RandomAddr(), 0, 100)
	r := e.routes()

	_, err := r[pathRevenueReceivedMsg].Deliver(e.ctx(1, e.notifier), e.db, &divtest.Tx{
		Msg: &RevenueReceivedMsg{Token: "USDS", Amount: "1000"},
	})
	require.NoError(t, err)

	settle := &divtest.Tx{Msg: &SettleForRecipientMsg{Recipient: e.treasury.Address(), Start: 1, End: 2}}
	res, err := r[pathSettleForRecipientMsg].Deliver(e.ctx(2), e.db, settle)
	require.NoError(t, err)
	assert.Equal(t, "400 USDS", res.Log)

	other := divtest.RandomAddr()
	_, err = r[pathUpdateConfigurationMsg].Deliver(e.ctx(2, e.owner), e.db, &divtest.Tx{
		Msg: &UpdateConfigurationMsg{Patch: &Configuration{Treasury: other, SwitchoverDay: 1}},
	})
	require.True(t, errors.ErrState.Is(err), "%+v", err)
	divassert.FieldError(t, err, "Treasury", errors.ErrState)
	divassert.FieldError(t, err, "SwitchoverDay", errors.ErrUnauthorized)

	conf, err := loadConf(e.db)
	require.NoError(t, err)
	assert.Equal(t, e.treasury.Address(), conf.Treasury)
	assert.Equal(t, uint64(0), conf.SwitchoverDay)

	res, err = r[pathSettleForRecipientMsg].Deliver(e.ctx(2), e.db, settle)
	require.NoError(t, err)
	assert.Equal(t, "(none)", res.Log)
	bal, err := e.bank.Balance(e.db, other, "USDS")
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestRevenueHandlerTags(t *testing.T) {
	e := newEnv(t)
	h := e.routes()[pathRevenueReceivedMsg]

	res, err := h.Deliver(e.ctx(4, e.notifier), e.db, &divtest.Tx{
		Msg: &RevenueReceivedMsg{Token: "USDS", Amount: "250"},
	})
	require.NoError(t, err)

	tags := make(map[string]string)
	for _, kv := range res.Tags {
		tags[string(kv.Key)] = string(kv.Value)
	}
	assert.Equal(t, map[string]string{"action": "revenue", "day": "4", "token": "USDS"}, tags)

	fees, err := e.c.ledger.FeesForDay(e.db, 4)
	require.NoError(t, err)
	assert.Equal(t, "250 USDS", fees.String())
}

func TestClaimHandlerPaysSigner(t *testing.T) {
	e := newEnv(t)
	alice := divtest.NewCondition()
	e.stake.Set(alice.Address(), 0, 10)
	r := e.routes()

	_, err := r[pathRevenueReceivedMsg].Deliver(e.ctx(1, e.notifier), e.db, &divtest.Tx{
		Msg: &RevenueReceivedMsg{Token: "USDS", Amount: "100"},
	})
	require.NoError(t, err)

	res, err := r[pathClaimMsg].Deliver(e.ctx(2, alice), e.db, &divtest.Tx{Msg: &ClaimMsg{}})
	require.NoError(t, err)
	assert.Equal(t, "60 USDS", res.Log)

	var paid string
	for _, kv := range res.Tags {
		if string(kv.Key) == "paid/USDS" {
			paid = string(kv.Value)
		}
	}
	assert.Equal(t, "60", paid)

	bal, err := e.bank.Balance(e.db, alice.Address(), "USDS")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), bal.Uint64())
}

func TestMessageValidation(t *testing.T) {
	cases := map[string]struct {
		msg     dividends.Msg
		wantErr map[string]*errors.Error
	}{
		"valid claim": {
			msg: &ClaimMsg{Start: 1, End: 3},
		},
		"claim with reversed range": {
			msg:     &ClaimMsg{Start: 3, End: 1},
			wantErr: map[string]*errors.Error{"Start": errors.ErrMsg},
		},
		"revenue with zero amount": {
			msg:     &RevenueReceivedMsg{Token: "USDS", Amount: "0"},
			wantErr: map[string]*errors.Error{"Amount": errors.ErrAmount, "Token": nil},
		},
		"revenue with a bad token": {
			msg:     &RevenueReceivedMsg{Token: "", Amount: "1"},
			wantErr: map[string]*errors.Error{"Token": errors.ErrInput, "Amount": nil},
		},
		"settle without recipient": {
			msg:     &SettleForRecipientMsg{},
			wantErr: map[string]*errors.Error{"Recipient": errors.ErrEmpty},
		},
		"empty percentages": {
			msg:     &SetCategoryPercentagesMsg{},
			wantErr: map[string]*errors.Error{"Percentages": errors.ErrEmpty},
		},
		"negative time offset": {
			msg:     &SetTimeOffsetMsg{Offset: -1},
			wantErr: map[string]*errors.Error{"Offset": errors.ErrInput},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if len(tc.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			for field, want := range tc.wantErr {
				errs := errors.FieldErrors(err, field)
				if want == nil {
					assert.Empty(t, errs, field)
					continue
				}
				require.Len(t, errs, 1, field)
				assert.True(t, want.Is(errs[0]), "%s: want %v, got %v", field, want, errs[0])
			}
		})
	}
}

func TestGenesis(t *testing.T) {
	e := newEnv(t)

	conf, err := loadConf(e.db)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultSecondsPerDay), conf.SecondsPerDay)
	assert.Equal(t, uint64(50), conf.BatchSize)

	tokens, err := e.c.tokens.List(e.db)
	require.NoError(t, err)
	assert.Equal(t, []string{"native", "USDS"}, tokens)

	pcts, err := e.c.history.PercentagesAt(e.db, 0)
	require.NoError(t, err)
	got := make(map[string]string)
	for _, p := range pcts {
		got[p.Category] = fixed.Format(p.Percentage)
	}
	assert.Equal(t, map[string]string{"holders": "60%", "dao": "40%"}, got)
}

func TestGenesisErrors(t *testing.T) {
	owner := divtest.RandomAddr()
	conf := `{"owner": "` + owner.String() + `", "governance": "` + owner.String() +
		`", "notifier": "` + owner.String() + `", "treasury": "` + owner.String() +
		`", "holder_category": "holders", "dao_category": "dao", "batch_size": 10}`

	cases := map[string]struct {
		distribution string
		wantErr      *errors.Error
	}{
		"percentages do not sum to 100%": {
			distribution: `{"categories": [{"name": "holders", "percentage": "60%"}, {"name": "dao", "percentage": "30%"}]}`,
			wantErr:      allocation.ErrPercentageSum,
		},
		"configured category missing": {
			distribution: `{"categories": [{"name": "holders", "percentage": "100%"}]}`,
			wantErr:      errors.ErrNotFound,
		},
		"duplicated token": {
			distribution: `{"categories": [{"name": "holders", "percentage": "50%"}, {"name": "dao", "percentage": "50%"}], "tokens": ["DAI", "DAI"]}`,
			wantErr:      errors.ErrDuplicate,
		},
		"native token listed": {
			distribution: `{"categories": [{"name": "holders", "percentage": "50%"}, {"name": "dao", "percentage": "50%"}], "tokens": ["native"]}`,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			opts := dividends.Options{
				"conf":         []byte(`{"distribution": ` + conf + `}`),
				"distribution": []byte(tc.distribution),
			}
			var init Initializer
			err := init.FromGenesis(opts, store.MemStore())
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestQueries(t *testing.T) {
	e := newEnv(t)
	alice := divtest.RandomAddr()
	e.stake.Set(alice, 0, 10)

	_, err := e.c.OnRevenueReceived(e.ctx(1), e.db, "USDS", uint256.NewInt(500))
	require.NoError(t, err)
	_, err = e.c.Rollover(e.ctx(2), e.db)
	require.NoError(t, err)

	qr := dividends.NewQueryRouter()
	RegisterQuery(qr, e.c)

	cases := map[string]struct {
		path    string
		data    string
		want    map[string]string
		wantErr *errors.Error
	}{
		"percentages": {
			path: "/percentages",
			data: "1",
			want: map[string]string{"holders": "600000000000000000", "dao": "400000000000000000"},
		},
		"percentages of a bad day": {
			path:    "/percentages",
			data:    "yesterday",
			wantErr: errors.ErrInput,
		},
		"fees": {
			path: "/fees",
			data: "1",
			want: map[string]string{"USDS": "500"},
		},
		"no fees": {
			path: "/fees",
			data: "2",
			want: map[string]string{},
		},
		"current day": {
			path: "/day",
			want: map[string]string{"day": "2"},
		},
		"claimed": {
			path: "/claimed",
			data: alice.String() + "/1",
			want: map[string]string{alice.String() + "/1": "false"},
		},
		"claimed without day": {
			path:    "/claimed",
			data:    alice.String(),
			wantErr: errors.ErrInput,
		},
		"preview": {
			path: "/preview",
			data: alice.String(),
			want: map[string]string{"USDS": "300"},
		},
		"preview of a range": {
			path: "/preview",
			data: alice.String() + "/1/2",
			want: map[string]string{"USDS": "300"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := qr.Handler(tc.path)
			require.NotNil(t, h)
			models, err := h.Query(e.db, []byte(tc.data))
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			got := make(map[string]string)
			for _, m := range models {
				got[string(m.Key)] = string(m.Value)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestQueriesFollowTheClock(t *testing.T) {
	e := newEnv(t)
	alice := divtest.RandomAddr()
	e.stake.Set(alice, 0, 10)

	_, err := e.c.OnRevenueReceived(e.ctx(1), e.db, "USDS", uint256.NewInt(500))
	require.NoError(t, err)

	qr := dividends.NewQueryRouter()
	RegisterQuery(qr, e.c)

	_, err = qr.Handler("/preview").Query(e.db, []byte(alice.String()+"/1/2"))
	require.True(t, claims.ErrRange.Is(err), "day 1 is not over yet: %+v", err)

	// no transaction happens for two days
	e.wall.Advance((3*day + 10) * time.Second)

	models, err := qr.Handler("/day").Query(e.db, nil)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "3", string(models[0].Value))

	owed, err := e.c.Preview(e.db, alice, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "300 USDS", owed.String())

	stored, err := e.c.clock.CurrentDay(e.db)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored, "queries never move the stored day")
}

func TestConfigQuery(t *testing.T) {
	e := newEnv(t)
	qr := dividends.NewQueryRouter()
	RegisterQuery(qr, e.c)

	models, err := qr.Handler("/config").Query(e.db, nil)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, packageName, string(models[0].Key))
	assert.True(t, strings.Contains(string(models[0].Value), `"batch_size":50`), string(models[0].Value))
}

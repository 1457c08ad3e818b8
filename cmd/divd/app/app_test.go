package divd

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/store/iavl"
	"github.com/iov-one/dividends/x/oracle"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const day = 86400

func blockAt(d int64, txs ...ScriptTx) Block {
	return Block{Time: dividends.UnixTime(d*day + 10), Txs: txs}
}

func scriptTx(path string, msg string, signers ...string) ScriptTx {
	return ScriptTx{Path: path, Signers: signers, Msg: json.RawMessage(msg)}
}

func newTestApp(t *testing.T, stake *oracle.Stake, start time.Time) (*Application, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	a := Build(iavl.MockCommitStore(), log.NewNopLogger(), true, Oracles{Stake: stake}, clock)

	gen, err := GenInitOptions("test-chain")
	require.NoError(t, err)
	require.NoError(t, a.InitChain(gen.ChainID, gen.AppState))
	return a, clock
}

func TestReplayClaim(t *testing.T) {
	alice := Signer("alice").Address()
	stake := oracle.NewStake().Set(alice, 0, 100)
	a, clock := newTestApp(t, stake, time.Unix(day+10, 0))

	script := &Script{Blocks: []Block{
		blockAt(1,
			scriptTx("distribution/revenue", `{"token": "native", "amount": "1000"}`, "notifier"),
			scriptTx("distribution/revenue", `{"token": "native", "amount": "1000"}`, "owner"),
		),
		blockAt(2,
			scriptTx("distribution/claim", `{}`, "alice"),
			scriptTx("distribution/settle", `{"recipient": "`+Signer("treasury").Address().String()+`"}`),
		),
	}}

	results, err := Replay(a, clock, script)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, int64(1), results[0].Height)
	assert.Empty(t, results[0].Error)
	assert.Contains(t, results[1].Error, "unauthorized")
	assert.Equal(t, errors.ErrUnauthorized.Code(), results[1].Code)
	assert.Equal(t, "600 native", results[2].Log)
	assert.Equal(t, "400 native", results[3].Log)

	res, err := a.Query("/payouts", []byte(alice.String()))
	require.NoError(t, err)
	require.Len(t, res.Models, 1)
	assert.Equal(t, "native", string(res.Models[0].Key))
	assert.Equal(t, "600", string(res.Models[0].Value))

	res, err = a.Query("/day", nil)
	require.NoError(t, err)
	require.Len(t, res.Models, 1)
	assert.Equal(t, "2", string(res.Models[0].Value))
}

func TestReplayRejectsPastBlocks(t *testing.T) {
	a, clock := newTestApp(t, oracle.NewStake(), time.Unix(3*day+10, 0))
	_, err := Replay(a, clock, &Script{Blocks: []Block{blockAt(1)}})
	assert.Error(t, err)
}

func TestReplayUnknownMessage(t *testing.T) {
	a, clock := newTestApp(t, oracle.NewStake(), time.Unix(day+10, 0))
	results, err := Replay(a, clock, &Script{Blocks: []Block{
		blockAt(1, scriptTx("distribution/unknown", `{}`, "owner")),
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "unknown path")
}

func TestCommands(t *testing.T) {
	home, err := ioutil.TempDir("", "divd")
	require.NoError(t, err)
	defer os.RemoveAll(home)
	logger := log.NewNopLogger()

	require.NoError(t, InitCmd(logger, home, []string{"-chain-id", "cmd-test-chain"}))
	assert.Error(t, InitCmd(logger, home, nil), "genesis already exists")

	alice := Signer("alice").Address()
	oracleFile := `{"time_offset": 0, "stake": [{"account": "` + alice.String() + `", "day": 0, "amount": "5"}]}`
	require.NoError(t, ioutil.WriteFile(filepath.Join(home, "oracle.json"), []byte(oracleFile), 0644))

	script := Script{Blocks: []Block{
		blockAt(1, scriptTx("distribution/revenue", `{"token": "native", "amount": "10"}`, "notifier")),
		blockAt(2),
	}}
	raw, err := json.Marshal(script)
	require.NoError(t, err)
	scriptFile := filepath.Join(home, "script.json")
	require.NoError(t, ioutil.WriteFile(scriptFile, raw, 0644))

	var out strings.Builder
	require.NoError(t, ReplayCmd(logger, home, []string{"-script", scriptFile}, &out))
	assert.Contains(t, out.String(), `"path":"distribution/revenue"`)
	assert.NotContains(t, out.String(), `"error"`)

	out.Reset()
	require.NoError(t, QueryCmd(logger, home, []string{"-path", "/preview", "-data", alice.String() + "/1/2"}, &out))
	assert.Contains(t, out.String(), "native: 6")
}

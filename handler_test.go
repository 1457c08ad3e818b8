package dividends

import (
	"testing"

	"github.com/iov-one/dividends/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingMsg struct {
	Value string
}

func (pingMsg) Path() string                { return "test/ping" }
func (pingMsg) Marshal() ([]byte, error)    { return nil, nil }
func (*pingMsg) Unmarshal(raw []byte) error { return nil }
func (m *pingMsg) Validate() error {
	if m.Value == "" {
		return errors.Wrap(errors.ErrEmpty, "value")
	}
	return nil
}

type otherMsg struct{ pingMsg }

type testTx struct {
	msg Msg
	err error
}

func (tx testTx) GetMsg() (Msg, error) { return tx.msg, tx.err }

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      Tx
		wantErr *errors.Error
	}{
		"valid": {
			tx: testTx{msg: &pingMsg{Value: "x"}},
		},
		"invalid message": {
			tx:      testTx{msg: &pingMsg{}},
			wantErr: errors.ErrEmpty,
		},
		"no message": {
			tx:      testTx{},
			wantErr: errors.ErrMsg,
		},
		"wrong type": {
			tx:      testTx{msg: &otherMsg{pingMsg{Value: "x"}}},
			wantErr: errors.ErrType,
		},
		"decoding failure": {
			tx:      testTx{err: errors.ErrInput},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var msg pingMsg
			err := LoadMsg(tc.tx, &msg)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "x", msg.Value)
		})
	}
}

func TestOptions(t *testing.T) {
	opts := Options{"conf": []byte(`{"size": 3}`), "broken": []byte(`{`)}
	var conf struct{ Size int }
	require.NoError(t, opts.ReadOptions("conf", &conf))
	assert.Equal(t, 3, conf.Size)
	assert.NoError(t, opts.ReadOptions("missing", &conf))
	assert.True(t, errors.ErrInput.Is(opts.ReadOptions("broken", &conf)))
}

type countingInit struct{ n *int }

func (c countingInit) FromGenesis(Options, KVStore) error {
	*c.n++
	return nil
}

func TestChainInitializers(t *testing.T) {
	var n int
	init := ChainInitializers(countingInit{&n}, countingInit{&n})
	require.NoError(t, init.FromGenesis(nil, nil))
	assert.Equal(t, 2, n)
}

func TestQueryRouter(t *testing.T) {
	qr := NewQueryRouter()
	h := QueryHandlerFunc(func(db ReadOnlyKVStore, data []byte) ([]Model, error) {
		return []Model{Pair(data, data)}, nil
	})
	qr.Register("/echo", h)
	assert.Panics(t, func() { qr.Register("/echo", h) })
	assert.Nil(t, qr.Handler("/missing"))

	res, err := qr.Handler("/echo").Query(nil, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []Model{Pair([]byte("x"), []byte("x"))}, res)
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("ab"), PrefixEnd([]byte("aa")))
	assert.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
}

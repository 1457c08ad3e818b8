package divd

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/x/distribution"
	"github.com/jonboulle/clockwork"
)

// Script is a sequence of blocks replayed on top of the application.
type Script struct {
	Blocks []Block `json:"blocks"`
}

// Block is processed at Time, its transactions in order.
type Block struct {
	Time dividends.UnixTime `json:"time"`
	Txs  []ScriptTx         `json:"txs"`
}

// ScriptTx is a message along with the names of its signers.
type ScriptTx struct {
	Path    string          `json:"path"`
	Signers []string        `json:"signers"`
	Msg     json.RawMessage `json:"msg"`
}

// Result is the outcome of a replayed transaction.
type Result struct {
	Height int64  `json:"height"`
	Path   string `json:"path"`
	Code   uint32 `json:"code"`
	Log    string `json:"log,omitempty"`
	Error  string `json:"error,omitempty"`
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read script: %s", err)
	}
	var s Script
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "parse script: %s", err)
	}
	return &s, nil
}

type tx struct {
	msg dividends.Msg
}

func (t tx) GetMsg() (dividends.Msg, error) {
	return t.msg, nil
}

// Replay executes all blocks of the script, moving the clock forward to the
// time of every block and committing after every block. A failing
// transaction is reported in its result and does not stop the replay.
func Replay(a *Application, clock clockwork.FakeClock, s *Script) ([]Result, error) {
	var results []Result
	for i, b := range s.Blocks {
		if d := b.Time.Time().Sub(clock.Now()); d > 0 {
			clock.Advance(d)
		} else if d < 0 {
			return results, errors.Wrapf(errors.ErrInput, "block #%d time %s is in the past", i, b.Time.Time())
		}
		ctx := a.BeginBlock()
		height, _ := dividends.GetHeight(ctx)

		for _, t := range b.Txs {
			res := Result{Height: height, Path: t.Path}
			if log, err := deliver(a, t); err != nil {
				res.Code, res.Error = errors.ClientInfo(err, false)
			} else {
				res.Log = log
			}
			results = append(results, res)
		}

		if _, err := a.Commit(); err != nil {
			return results, errors.Wrapf(err, "commit block #%d", i)
		}
	}
	return results, nil
}

func deliver(a *Application, t ScriptTx) (string, error) {
	msg, err := distribution.NewMsg(t.Path)
	if err != nil {
		return "", err
	}
	if len(t.Msg) > 0 {
		if err := json.Unmarshal(t.Msg, msg); err != nil {
			return "", errors.Wrapf(errors.ErrMsg, "decode: %s", err)
		}
	}
	signers := make([]dividends.Condition, len(t.Signers))
	for i, name := range t.Signers {
		signers[i] = Signer(name)
	}
	res, err := a.DeliverTx(tx{msg: msg}, signers...)
	if err != nil {
		return "", err
	}
	return res.Log, nil
}

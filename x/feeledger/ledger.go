package feeledger

import (
	"bytes"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/orm"
)

// Ledger is the per day, per token accumulator of received revenue.
// Entries are only ever increased.
type Ledger struct {
	tokens *Tokens
}

// NewLedger returns a ledger that only accepts revenue in tokens present
// on given allow list.
func NewLedger(tokens *Tokens) *Ledger {
	return &Ledger{tokens: tokens}
}

func dayPrefix(day uint64) []byte {
	return append([]byte(bucketName+":day:"), append(orm.EncodeSequence(day), ':')...)
}

func feeKey(day uint64, token string) []byte {
	return append(dayPrefix(day), token...)
}

// Record adds amount to the revenue of given day and token.
func (l *Ledger) Record(db dividends.KVStore, day uint64, token string, amount *uint256.Int) error {
	ok, err := l.tokens.IsAccepted(db, token)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrTokenNotAccepted, "%q", token)
	}
	if amount == nil || amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "amount must be greater than zero")
	}

	total, err := l.FeesOn(db, day, token)
	if err != nil {
		return err
	}
	if _, overflow := total.AddOverflow(total, amount); overflow {
		return errors.Wrapf(errors.ErrOverflow, "fees of %s on day %d", token, day)
	}
	if err := db.Set(feeKey(day, token), coin.EncodeAmount(total)); err != nil {
		return errors.Wrap(err, "cannot save fees")
	}
	return nil
}

// FeesOn returns the revenue received in given token on given day.
func (l *Ledger) FeesOn(db dividends.ReadOnlyKVStore, day uint64, token string) (*uint256.Int, error) {
	raw, err := db.Get(feeKey(day, token))
	if err != nil {
		return nil, errors.Wrap(err, "cannot read fees")
	}
	return coin.DecodeAmount(raw)
}

// FeesForDay returns the revenue of all tokens received on given day,
// including tokens that are no longer accepted.
func (l *Ledger) FeesForDay(db dividends.ReadOnlyKVStore, day uint64) (coin.Coins, error) {
	prefix := dayPrefix(day)
	var res coin.Coins
	err := dividends.Each(db, prefix, dividends.PrefixEnd(prefix), func(key, value []byte) error {
		amount, err := coin.DecodeAmount(value)
		if err != nil {
			return err
		}
		token := string(bytes.TrimPrefix(key, prefix))
		res, err = res.Add(coin.Coin{Token: token, Amount: amount})
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

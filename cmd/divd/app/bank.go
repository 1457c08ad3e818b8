package divd

import (
	"bytes"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/x/distribution"
)

// Bank records every payout of the distribution in the application state.
// The token transfers themselves are executed by the chain that consumes
// the payout records.
type Bank struct{}

var _ distribution.Bank = (*Bank)(nil)

func NewBank() *Bank {
	return &Bank{}
}

const payoutPrefix = "payout:"

func payoutKey(to dividends.Address, token string) []byte {
	key := make([]byte, 0, len(payoutPrefix)+len(to)+1+len(token))
	key = append(key, payoutPrefix...)
	key = append(key, to...)
	key = append(key, ':')
	return append(key, token...)
}

// Transfer credits amount of token to the payout balance of given account.
func (b *Bank) Transfer(db dividends.KVStore, token string, to dividends.Address, amount *uint256.Int) error {
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	bal, err := b.Balance(db, to, token)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		return errors.Wrap(errors.ErrOverflow, "payout balance")
	}
	return db.Set(payoutKey(to, token), coin.EncodeAmount(bal))
}

// Balance returns the total amount of token paid out to given account.
func (b *Bank) Balance(db dividends.ReadOnlyKVStore, to dividends.Address, token string) (*uint256.Int, error) {
	raw, err := db.Get(payoutKey(to, token))
	if err != nil {
		return nil, err
	}
	return coin.DecodeAmount(raw)
}

// Payouts returns all amounts paid out to given account.
func (b *Bank) Payouts(db dividends.ReadOnlyKVStore, to dividends.Address) (coin.Coins, error) {
	prefix := payoutKey(to, "")
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
	return res, err
}

// RegisterQuery registers the payouts query: "/payouts" with an address
// as data returns the amount paid out per token.
func (b *Bank) RegisterQuery(qr dividends.QueryRouter) {
	qr.Register("/payouts", dividends.QueryHandlerFunc(b.queryPayouts))
}

func (b *Bank) queryPayouts(db dividends.ReadOnlyKVStore, data []byte) ([]dividends.Model, error) {
	addr, err := dividends.ParseAddress(string(data))
	if err != nil {
		return nil, err
	}
	paid, err := b.Payouts(db, addr)
	if err != nil {
		return nil, err
	}
	res := make([]dividends.Model, len(paid))
	for i, c := range paid {
		res[i] = dividends.Pair([]byte(c.Token), []byte(coin.FormatAmount(c.Amount)))
	}
	return res, nil
}

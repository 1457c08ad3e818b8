package divtest

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
)

// Bank executes transfers by crediting balances kept in the store, so a
// discarded message discards its transfers too.
type Bank struct {
	// Fail maps a token to the error returned by every transfer of that
	// token.
	Fail map[string]error
	// Calls counts executed transfers, including failed ones.
	Calls int
}

func NewBank() *Bank {
	return &Bank{Fail: make(map[string]error)}
}

func bankKey(to dividends.Address, token string) []byte {
	return []byte("bank:" + to.String() + ":" + token)
}

// Transfer credits amount of token to given account.
func (b *Bank) Transfer(db dividends.KVStore, token string, to dividends.Address, amount *uint256.Int) error {
	b.Calls++
	if err := b.Fail[token]; err != nil {
		return err
	}
	bal, err := b.Balance(db, to, token)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	return db.Set(bankKey(to, token), coin.EncodeAmount(bal))
}

// Balance returns the amount of token credited to given account.
func (b *Bank) Balance(db dividends.ReadOnlyKVStore, to dividends.Address, token string) (*uint256.Int, error) {
	raw, err := db.Get(bankKey(to, token))
	if err != nil {
		return nil, err
	}
	return coin.DecodeAmount(raw)
}

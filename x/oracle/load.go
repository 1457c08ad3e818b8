package oracle

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
)

// Balance is a single checkpoint of a JSON oracle document. Pool is
// ignored for stake balances.
type Balance struct {
	Account dividends.Address `json:"account"`
	Pool    uint64            `json:"pool"`
	Day     uint64            `json:"day"`
	Amount  string            `json:"amount"`
}

// Document is the JSON representation of the oracle state.
type Document struct {
	Stake        []Balance `json:"stake"`
	PoolBalances []Balance `json:"pool_balances"`
	// PoolStake lists the governance token amount held by pools. Account
	// is not used.
	PoolStake []Balance `json:"pool_stake"`
}

// Load builds the stake and pool oracles described by the document.
func Load(doc Document) (*Stake, *Pools, error) {
	stake := NewStake()
	for i, b := range doc.Stake {
		amount, err := parse(b, true)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "stake #%d", i)
		}
		stake.SetAmount(b.Account, b.Day, amount)
	}

	pools := NewPools()
	for i, b := range doc.PoolBalances {
		amount, err := parse(b, true)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "pool balance #%d", i)
		}
		pools.SetBalanceAmount(b.Account, b.Pool, b.Day, amount)
	}
	for i, b := range doc.PoolStake {
		amount, err := parse(b, false)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "pool stake #%d", i)
		}
		pools.SetImpliedAmount(b.Pool, b.Day, amount)
	}
	return stake, pools, nil
}

func parse(b Balance, withAccount bool) (*uint256.Int, error) {
	if withAccount {
		if err := b.Account.Validate(); err != nil {
			return nil, errors.Field("Account", err, "invalid account")
		}
	}
	amount, err := coin.ParseAmount(b.Amount)
	if err != nil {
		return nil, errors.Field("Amount", err, "invalid amount %q", b.Amount)
	}
	return amount, nil
}

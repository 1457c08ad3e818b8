package snapshot

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	"github.com/iov-one/dividends/x/allocation"
	"github.com/iov-one/dividends/x/claims"
	"github.com/iov-one/dividends/x/feeledger"
)

// Params are the configuration values used by the engine.
type Params struct {
	HolderCategory string
	DaoCategory    string
	Treasury       dividends.Address
	// SwitchoverDay is the first day liquidity pool stake no longer
	// counts. Zero means it was never set.
	SwitchoverDay uint64
	Pools         []uint64
}

func (p Params) countsPools(day uint64) bool {
	return p.SwitchoverDay == 0 || day < p.SwitchoverDay
}

// Engine computes per day dividends.
type Engine struct {
	history *allocation.History
	ledger  *feeledger.Ledger
	tokens  *feeledger.Tokens
	claimed *claims.Bitmap
	stake   StakeOracle
	pools   PoolOracle
}

// NewEngine returns an engine. The pool oracle may be nil when no pools
// are configured.
func NewEngine(
	history *allocation.History,
	ledger *feeledger.Ledger,
	tokens *feeledger.Tokens,
	claimed *claims.Bitmap,
	stake StakeOracle,
	pools PoolOracle,
) *Engine {
	return &Engine{
		history: history,
		ledger:  ledger,
		tokens:  tokens,
		claimed: claimed,
		stake:   stake,
		pools:   pools,
	}
}

// EffectiveBalance returns the stake of an account and the total stake on
// given day, including liquidity pool stake when it still counts.
func (e *Engine) EffectiveBalance(p Params, account dividends.Address, day uint64) (balance, total *uint256.Int, err error) {
	if balance, err = e.stake.StakedBalanceOfAt(account, day); err != nil {
		return nil, nil, errors.Wrap(err, "staked balance")
	}
	if total, err = e.stake.TotalStakedBalanceOfAt(day); err != nil {
		return nil, nil, errors.Wrap(err, "total staked balance")
	}
	balance, total = clone(balance), clone(total)

	if !p.countsPools(day) || len(p.Pools) == 0 {
		return balance, total, nil
	}
	if e.pools == nil {
		return nil, nil, errors.Wrap(errors.ErrState, "no pool oracle")
	}
	for _, pool := range p.Pools {
		implied, err := e.pools.LPImpliedStakeAt(pool, day)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "pool %d implied stake", pool)
		}
		if implied == nil || implied.IsZero() {
			continue
		}
		supply, err := e.pools.LPTotalSupplyAt(pool, day)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "pool %d supply", pool)
		}
		if supply == nil || supply.IsZero() {
			continue
		}
		lp, err := e.pools.LPBalanceOfAt(account, pool, day)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "pool %d balance", pool)
		}
		if lp != nil && !lp.IsZero() {
			share, err := fixed.MulDiv(lp, implied, supply)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "pool %d share", pool)
			}
			if err := add(balance, share); err != nil {
				return nil, nil, err
			}
		}
		if err := add(total, implied); err != nil {
			return nil, nil, err
		}
	}
	return balance, total, nil
}

// DividendsForAccountOnDay returns what the account is owed for given day
// as a holder. Nothing is owed for a day that was already claimed.
func (e *Engine) DividendsForAccountOnDay(db dividends.ReadOnlyKVStore, p Params, account dividends.Address, day uint64) (coin.Coins, error) {
	if done, err := e.claimed.IsClaimed(db, account, day); err != nil || done {
		return nil, err
	}
	balance, total, err := e.EffectiveBalance(p, account, day)
	if err != nil {
		return nil, err
	}
	if balance.IsZero() || total.IsZero() {
		return nil, nil
	}
	pct, err := e.history.PercentageAt(db, p.HolderCategory, day)
	if err != nil {
		return nil, errors.Wrap(err, "holder percentage")
	}
	if pct == 0 {
		return nil, nil
	}

	num, overflow := new(uint256.Int).MulOverflow(balance, uint256.NewInt(pct))
	if overflow {
		return nil, errors.Wrap(errors.ErrOverflow, "balance share")
	}
	den, overflow := new(uint256.Int).MulOverflow(total, fixed.OneInt())
	if overflow {
		return nil, errors.Wrap(errors.ErrOverflow, "total share")
	}
	return e.split(db, day, num, den)
}

// DividendsForDaoOnDay returns what the treasury is owed for given day.
// Nothing is owed for a day that was already claimed by the treasury.
func (e *Engine) DividendsForDaoOnDay(db dividends.ReadOnlyKVStore, p Params, day uint64) (coin.Coins, error) {
	if done, err := e.claimed.IsClaimed(db, p.Treasury, day); err != nil || done {
		return nil, err
	}
	pct, err := e.history.PercentageAt(db, p.DaoCategory, day)
	if err != nil {
		return nil, errors.Wrap(err, "dao percentage")
	}
	if pct == 0 {
		return nil, nil
	}
	return e.split(db, day, uint256.NewInt(pct), fixed.OneInt())
}

// split returns floor(fees * num / den) of every accepted token.
func (e *Engine) split(db dividends.ReadOnlyKVStore, day uint64, num, den *uint256.Int) (coin.Coins, error) {
	tokens, err := e.tokens.List(db)
	if err != nil {
		return nil, err
	}
	var owed coin.Coins
	for _, token := range tokens {
		fees, err := e.ledger.FeesOn(db, day, token)
		if err != nil {
			return nil, err
		}
		if fees.IsZero() {
			continue
		}
		amount, err := fixed.MulDiv(fees, num, den)
		if err != nil {
			return nil, errors.Wrapf(err, "share of %s", token)
		}
		if owed, err = owed.Add(coin.Coin{Token: token, Amount: amount}); err != nil {
			return nil, err
		}
	}
	return owed, nil
}

func clone(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

func add(dst, v *uint256.Int) error {
	if _, overflow := dst.AddOverflow(dst, v); overflow {
		return errors.Wrap(errors.ErrOverflow, "stake")
	}
	return nil
}

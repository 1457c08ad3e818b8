package distribution

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	"github.com/iov-one/dividends/store"
	"github.com/iov-one/dividends/x/allocation"
	"github.com/iov-one/dividends/x/claims"
	"github.com/iov-one/dividends/x/continuous"
	"github.com/iov-one/dividends/x/feeledger"
	"github.com/iov-one/dividends/x/snapshot"
	"github.com/jonboulle/clockwork"
)

// StakeOracle provides both the historical stake used for daily snapshots
// and the current supply used by the continuous index.
type StakeOracle interface {
	snapshot.StakeOracle
	continuous.SupplyOracle
}

// Bank executes outbound payments. A transfer must either fully succeed or
// return an error.
type Bank interface {
	Transfer(db dividends.KVStore, token string, to dividends.Address, amount *uint256.Int) error
}

// Settlement describes a completed claim.
type Settlement struct {
	Recipient dividends.Address
	Start     uint64
	End       uint64
	Paid      coin.Coins
}

// Coordinator orchestrates revenue recording and claims.
type Coordinator struct {
	history *allocation.History
	tokens  *feeledger.Tokens
	ledger  *feeledger.Ledger
	clock   *feeledger.Clock
	claimed *claims.Bitmap
	engine  *snapshot.Engine
	acc     *continuous.Accumulator
	stake   StakeOracle
	bank    Bank
	wall    clockwork.Clock
}

// NewCoordinator returns a coordinator using given collaborators. The pool
// oracle may be nil if no liquidity pools are eligible.
func NewCoordinator(stake StakeOracle, pools snapshot.PoolOracle, timeOracle feeledger.TimeOracle, bank Bank) *Coordinator {
	history := allocation.NewHistory()
	tokens := feeledger.NewTokens()
	ledger := feeledger.NewLedger(tokens)
	claimed := claims.NewBitmap()
	return &Coordinator{
		history: history,
		tokens:  tokens,
		ledger:  ledger,
		clock:   feeledger.NewClock(timeOracle),
		claimed: claimed,
		engine:  snapshot.NewEngine(history, ledger, tokens, claimed, stake, pools),
		acc:     continuous.NewAccumulator(stake),
		stake:   stake,
		bank:    bank,
		wall:    clockwork.NewRealClock(),
	}
}

// WithClock sets the clock used by read only operations to learn the
// current day.
func (c *Coordinator) WithClock(clock clockwork.Clock) *Coordinator {
	c.wall = clock
	return c
}

// Rollover advances the day counter to the block time of the context.
func (c *Coordinator) Rollover(ctx dividends.Context, db dividends.KVStore) (uint64, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return c.rollover(ctx, db, conf)
}

func (c *Coordinator) rollover(ctx dividends.Context, db dividends.KVStore, conf *Configuration) (uint64, error) {
	day, _, err := c.rolloverAt(ctx, db, conf)
	return day, err
}

// rolloverAt advances the day counter and returns it together with the
// block time it was advanced to.
func (c *Coordinator) rolloverAt(ctx dividends.Context, db dividends.KVStore, conf *Configuration) (uint64, dividends.UnixTime, error) {
	blockTime, err := dividends.BlockTime(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "block time")
	}
	now := dividends.AsUnixTime(blockTime)
	rolled, err := c.clock.Rollover(db, now, conf.SecondsPerDay)
	if err != nil {
		return 0, 0, err
	}
	day, err := c.clock.CurrentDay(db)
	if err != nil {
		return 0, 0, err
	}
	if rolled {
		dividends.GetLogger(ctx).Info("day rollover", "day", day)
	}
	return day, now, nil
}

// today returns the day counter as it would be rolled over at the time of
// the coordinator clock. Read only operations use it, so that a day
// without any mutating call still becomes claimable.
func (c *Coordinator) today(db dividends.ReadOnlyKVStore, conf *Configuration) (uint64, error) {
	return c.clock.Today(db, dividends.AsUnixTime(c.wall.Now()), conf.SecondsPerDay)
}

// OnRevenueReceived records revenue for the current day. When the
// continuous mode is active, the holder share of the amount also feeds the
// continuous index.
func (c *Coordinator) OnRevenueReceived(ctx dividends.Context, db dividends.KVStore, token string, amount *uint256.Int) (uint64, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	day, now, err := c.rolloverAt(ctx, db, conf)
	if err != nil {
		return 0, err
	}
	if err := c.ledger.Record(db, day, token, amount); err != nil {
		return 0, errors.Wrap(err, "record revenue")
	}

	contDay, err := c.acc.ActivationDay(db)
	switch {
	case continuous.ErrModeInactive.Is(err):
		// Snapshot only.
	case err != nil:
		return 0, err
	case day >= contDay:
		pct, err := c.history.PercentageAt(db, conf.HolderCategory, day)
		if err != nil {
			return 0, errors.Wrap(err, "holder percentage")
		}
		share, err := fixed.Mul(amount, pct)
		if err != nil {
			return 0, err
		}
		if err := c.acc.OnDeposit(db, token, share, now); err != nil {
			return 0, errors.Wrap(err, "continuous deposit")
		}
	}

	dividends.GetLogger(ctx).Info("revenue received",
		"day", day, "token", token, "amount", coin.FormatAmount(amount))
	return day, nil
}

// OnStakeChanged settles the continuous share of an account before its
// stake changes. It is a no-op unless the continuous mode is active.
func (c *Coordinator) OnStakeChanged(ctx dividends.Context, db dividends.KVStore, account dividends.Address, balanceBefore *uint256.Int) error {
	if _, err := c.Rollover(ctx, db); err != nil {
		return err
	}
	tokens, err := c.tokens.List(db)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := c.acc.Accrue(db, account, token, balanceBefore); err != nil {
			return errors.Wrapf(err, "accrue %s", token)
		}
	}
	return nil
}

// EnableContinuous switches to the continuous accrual mode. Holder
// dividends of the current day are still computed from the daily snapshot,
// starting with the next day they are accounted by the continuous index.
func (c *Coordinator) EnableContinuous(ctx dividends.Context, db dividends.KVStore) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	day, now, err := c.rolloverAt(ctx, db, conf)
	if err != nil {
		return err
	}
	start := now
	if !conf.ContinuousActivation.IsZero() && conf.ContinuousActivation < start {
		start = conf.ContinuousActivation
	}
	if err := c.acc.Enable(db, start, day+1, conf.SecondsPerDay); err != nil {
		return err
	}
	dividends.GetLogger(ctx).Info("continuous mode enabled", "first_day", day+1, "since", start)
	return nil
}

// Claim settles the holder dividends of the caller for days [start, end).
// Zero bounds are derived from the batch size and the current day.
func (c *Coordinator) Claim(ctx dividends.Context, db dividends.KVStore, caller dividends.Address, start, end uint64) (*Settlement, error) {
	return c.SettleForRecipient(ctx, db, caller, start, end)
}

// SettleForRecipient settles the dividends of a recipient for days
// [start, end) and pays them to the recipient. The treasury receives the
// DAO category share, any other recipient the holder share.
//
// Either the whole settlement succeeds or no state is changed.
func (c *Coordinator) SettleForRecipient(ctx dividends.Context, db dividends.KVStore, recipient dividends.Address, start, end uint64) (*Settlement, error) {
	if err := recipient.Validate(); err != nil {
		return nil, errors.Wrap(err, "recipient")
	}

	cache := store.NewBTreeCacheWrap(db, db, nil)
	res, err := c.settle(ctx, cache, recipient, start, end)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write settlement")
	}

	dividends.GetLogger(ctx).Info("dividends claimed",
		"recipient", recipient, "start", res.Start, "end", res.End, "paid", res.Paid.String())
	return res, nil
}

func (c *Coordinator) settle(ctx dividends.Context, db dividends.KVStore, recipient dividends.Address, start, end uint64) (*Settlement, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	day, err := c.rollover(ctx, db, conf)
	if err != nil {
		return nil, err
	}
	if start, end, err = claims.Normalize(start, end, day, conf.BatchSize); err != nil {
		return nil, err
	}

	total, err := c.owed(ctx, db, conf, recipient, start, end, true)
	if err != nil {
		return nil, err
	}

	if !recipient.Equals(conf.Treasury) {
		withdrawn, err := c.withdrawContinuous(db, recipient, day)
		if err != nil {
			return nil, err
		}
		if total, err = total.Combine(withdrawn); err != nil {
			return nil, err
		}
	}

	for _, paid := range total {
		if err := c.bank.Transfer(db, paid.Token, recipient, paid.Amount); err != nil {
			return nil, errors.Wrapf(ErrTransfer, "%s to %s: %s", paid, recipient, err)
		}
	}
	return &Settlement{Recipient: recipient, Start: start, End: end, Paid: total}, nil
}

// owed sums the snapshot dividends of a recipient over [start, end). When
// mark is set, every day with a non empty result is marked as claimed.
func (c *Coordinator) owed(ctx dividends.Context, db dividends.KVStore, conf *Configuration, recipient dividends.Address, start, end uint64, mark bool) (coin.Coins, error) {
	params := conf.SnapshotParams()
	isTreasury := recipient.Equals(conf.Treasury)

	contDay, err := c.acc.ActivationDay(db)
	contActive := err == nil
	if err != nil && !continuous.ErrModeInactive.Is(err) {
		return nil, err
	}

	log := dividends.GetLogger(ctx)
	var total coin.Coins
	for d := start; d < end; d++ {
		var dayOwed coin.Coins
		switch {
		case isTreasury:
			dayOwed, err = c.engine.DividendsForDaoOnDay(db, params, d)
		case contActive && d >= contDay:
			// Accounted by the continuous index.
			continue
		default:
			dayOwed, err = c.engine.DividendsForAccountOnDay(db, params, recipient, d)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "day %d", d)
		}
		if dayOwed.IsEmpty() {
			continue
		}
		log.Debug("day owed", "recipient", recipient, "day", d, "owed", dayOwed.String())
		if mark {
			if err := c.claimed.MarkClaimed(db, recipient, d); err != nil {
				return nil, err
			}
		}
		if total, err = total.Combine(dayOwed); err != nil {
			return nil, err
		}
	}
	return total, nil
}

func (c *Coordinator) withdrawContinuous(db dividends.KVStore, account dividends.Address, day uint64) (coin.Coins, error) {
	mode, err := c.acc.Mode(db)
	if err != nil || mode != continuous.ModeContinuous {
		return nil, err
	}
	balance, err := c.stake.StakedBalanceOfAt(account, day)
	if err != nil {
		return nil, errors.Wrap(err, "staked balance")
	}
	tokens, err := c.tokens.List(db)
	if err != nil {
		return nil, err
	}
	var res coin.Coins
	for _, token := range tokens {
		amount, err := c.acc.Withdraw(db, account, token, balance)
		if err != nil {
			return nil, errors.Wrapf(err, "withdraw %s", token)
		}
		if res, err = res.Add(coin.Coin{Token: token, Amount: amount}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Preview returns what settling the recipient for days [start, end) would
// pay, without changing any state. The range is validated against the
// current day of the coordinator clock.
func (c *Coordinator) Preview(db dividends.ReadOnlyKVStore, recipient dividends.Address, start, end uint64) (coin.Coins, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	day, err := c.today(db, conf)
	if err != nil {
		return nil, err
	}
	if start, end, err = claims.Normalize(start, end, day, conf.BatchSize); err != nil {
		return nil, err
	}

	// owed does not write when mark is false.
	cache := store.NewBTreeCacheWrap(db, store.EmptyKVStore{}, nil)
	defer cache.Discard()
	total, err := c.owed(context.Background(), cache, conf, recipient, start, end, false)
	if err != nil {
		return nil, err
	}
	if recipient.Equals(conf.Treasury) {
		return total, nil
	}

	mode, err := c.acc.Mode(db)
	if err != nil || mode != continuous.ModeContinuous {
		return total, err
	}
	balance, err := c.stake.StakedBalanceOfAt(recipient, day)
	if err != nil {
		return nil, errors.Wrap(err, "staked balance")
	}
	tokens, err := c.tokens.List(db)
	if err != nil {
		return nil, err
	}
	for _, token := range tokens {
		amount, err := c.acc.Pending(db, recipient, token, balance)
		if err != nil {
			return nil, err
		}
		if total, err = total.Add(coin.Coin{Token: token, Amount: amount}); err != nil {
			return nil, err
		}
	}
	return total, nil
}

package continuous

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	"github.com/iov-one/dividends/orm"
)

const bucketName = "cont"

var modeKey = []byte("mode")

// SupplyOracle provides the current total stake.
type SupplyOracle interface {
	StakedSupply() (*uint256.Int, error)
}

// Accumulator maintains the running weights and account checkpoints.
type Accumulator struct {
	bucket orm.ModelBucket
	supply SupplyOracle
}

func NewAccumulator(supply SupplyOracle) *Accumulator {
	return &Accumulator{
		bucket: orm.NewModelBucket(bucketName),
		supply: supply,
	}
}

func tokenKey(token string) []byte {
	return []byte("tok:" + token)
}

func accountKey(kind string, account dividends.Address, token string) []byte {
	key := append([]byte(bucketName+":"+kind+":"), account...)
	return append(append(key, ':'), token...)
}

// State returns the persisted mode.
func (a *Accumulator) State(db dividends.ReadOnlyKVStore) (*ModeState, error) {
	var s ModeState
	switch err := a.bucket.One(db, modeKey, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &ModeState{Mode: ModeSnapshotOnly}, nil
	default:
		return nil, err
	}
}

// Mode returns the current accrual mode.
func (a *Accumulator) Mode(db dividends.ReadOnlyKVStore) (Mode, error) {
	s, err := a.State(db)
	if err != nil {
		return ModeSnapshotOnly, err
	}
	return s.Mode, nil
}

// ActivationDay returns the first day accounted by the accumulator. It
// fails with ErrModeInactive when continuous mode is not enabled.
func (a *Accumulator) ActivationDay(db dividends.ReadOnlyKVStore) (uint64, error) {
	s, err := a.State(db)
	if err != nil {
		return 0, err
	}
	if s.Mode != ModeContinuous {
		return 0, errors.Wrap(ErrModeInactive, "no activation day")
	}
	return s.ActivationDay, nil
}

// Enable switches to the continuous mode. Deposits are weighted by the
// time elapsed since the previous one, measured in periods of given
// length in seconds. This cannot be undone.
func (a *Accumulator) Enable(db dividends.KVStore, now dividends.UnixTime, day uint64, period int64) error {
	if period <= 0 {
		return errors.Wrapf(errors.ErrInput, "period %d must be positive", period)
	}
	s, err := a.State(db)
	if err != nil {
		return err
	}
	if s.Mode == ModeContinuous {
		return errors.Wrapf(ErrModeActive, "enabled at %s", s.ActivatedAt)
	}
	s = &ModeState{Mode: ModeContinuous, ActivatedAt: now, ActivationDay: day, Period: period}
	return a.bucket.Put(db, modeKey, s)
}

// Token returns the running weight of a token. A token that never received
// a deposit has a zero weight, last updated on activation.
func (a *Accumulator) Token(db dividends.ReadOnlyKVStore, token string) (*TokenState, error) {
	var s TokenState
	switch err := a.bucket.One(db, tokenKey(token), &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		m, err := a.State(db)
		if err != nil {
			return nil, err
		}
		return &TokenState{Weight: coin.EncodeAmount(new(uint256.Int)), LastUpdate: m.ActivatedAt}, nil
	default:
		return nil, err
	}
}

// OnDeposit distributes amount over the current staked supply, weighted by
// the number of periods elapsed since the last update of the token:
//
//	weight += amount * elapsed * One / (supply * period)
//
// When nothing is staked, or no time elapsed since the last update, the
// amount is not distributed.
func (a *Accumulator) OnDeposit(db dividends.KVStore, token string, amount *uint256.Int, now dividends.UnixTime) error {
	m, err := a.State(db)
	if err != nil || m.Mode != ModeContinuous {
		return err
	}
	s, err := a.Token(db, token)
	if err != nil {
		return err
	}
	if now < s.LastUpdate {
		return errors.Wrapf(errors.ErrState, "deposit at %s before the last update at %s", now, s.LastUpdate)
	}

	supply, err := a.supply.StakedSupply()
	if err != nil {
		return errors.Wrap(err, "staked supply")
	}
	weight := s.RunningWeight()
	delta, err := weightDelta(amount, int64(now-s.LastUpdate), supply, m.Period)
	if err != nil {
		return errors.Wrapf(err, "weight of %s", token)
	}
	if _, overflow := weight.AddOverflow(weight, delta); overflow {
		return errors.Wrapf(errors.ErrOverflow, "weight of %s", token)
	}
	s.Weight = coin.EncodeAmount(weight)
	s.LastUpdate = now
	return a.bucket.Put(db, tokenKey(token), s)
}

func weightDelta(amount *uint256.Int, elapsed int64, supply *uint256.Int, period int64) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() || supply == nil || supply.IsZero() || elapsed <= 0 {
		return new(uint256.Int), nil
	}
	if period <= 0 {
		return nil, errors.Wrapf(errors.ErrState, "period %d must be positive", period)
	}
	num, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(uint64(elapsed)))
	if overflow {
		return nil, errors.Wrap(errors.ErrOverflow, "amount * elapsed")
	}
	den, overflow := new(uint256.Int).MulOverflow(supply, uint256.NewInt(uint64(period)))
	if overflow {
		return nil, errors.Wrap(errors.ErrOverflow, "supply * period")
	}
	return fixed.MulDiv(num, fixed.OneInt(), den)
}

func (a *Accumulator) amount(db dividends.ReadOnlyKVStore, key []byte) (*uint256.Int, error) {
	raw, err := db.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read")
	}
	return coin.DecodeAmount(raw)
}

func (a *Accumulator) setAmount(db dividends.KVStore, key []byte, v *uint256.Int) error {
	if v.IsZero() {
		return db.Delete(key)
	}
	return db.Set(key, coin.EncodeAmount(v))
}

// earned returns what the account earned since its last checkpoint and
// the current weight.
func (a *Accumulator) earned(db dividends.ReadOnlyKVStore, account dividends.Address, token string, balance *uint256.Int) (owed, weight *uint256.Int, err error) {
	s, err := a.Token(db, token)
	if err != nil {
		return nil, nil, err
	}
	weight = s.RunningWeight()
	cp, err := a.amount(db, accountKey("cp", account, token))
	if err != nil {
		return nil, nil, err
	}
	if cp.Gt(weight) {
		return nil, nil, errors.Wrapf(errors.ErrState, "checkpoint %s above weight %s", cp, weight)
	}
	if balance == nil || balance.IsZero() {
		return new(uint256.Int), weight, nil
	}
	diff := new(uint256.Int).Sub(weight, cp)
	owed, err = fixed.MulDiv(diff, balance, fixed.OneInt())
	if err != nil {
		return nil, nil, err
	}
	return owed, weight, nil
}

// Settle returns what the account earned with given balance since its last
// checkpoint and moves the checkpoint to the current weight.
func (a *Accumulator) Settle(db dividends.KVStore, account dividends.Address, token string, balanceBefore *uint256.Int) (*uint256.Int, error) {
	if mode, err := a.Mode(db); err != nil || mode != ModeContinuous {
		return new(uint256.Int), err
	}
	owed, weight, err := a.earned(db, account, token, balanceBefore)
	if err != nil {
		return nil, err
	}
	if err := a.setAmount(db, accountKey("cp", account, token), weight); err != nil {
		return nil, errors.Wrap(err, "cannot save checkpoint")
	}
	return owed, nil
}

// Accrue settles the account into its accrued balance. It must be called
// right before the stake of the account changes.
func (a *Accumulator) Accrue(db dividends.KVStore, account dividends.Address, token string, balanceBefore *uint256.Int) error {
	owed, err := a.Settle(db, account, token, balanceBefore)
	if err != nil || owed.IsZero() {
		return err
	}
	key := accountKey("acc", account, token)
	accrued, err := a.amount(db, key)
	if err != nil {
		return err
	}
	if _, overflow := accrued.AddOverflow(accrued, owed); overflow {
		return errors.Wrap(errors.ErrOverflow, "accrued")
	}
	return a.setAmount(db, key, accrued)
}

// Withdraw settles the account with its current balance and returns
// everything it is owed. The accrued balance is zeroed.
func (a *Accumulator) Withdraw(db dividends.KVStore, account dividends.Address, token string, balance *uint256.Int) (*uint256.Int, error) {
	owed, err := a.Settle(db, account, token, balance)
	if err != nil {
		return nil, err
	}
	key := accountKey("acc", account, token)
	accrued, err := a.amount(db, key)
	if err != nil {
		return nil, err
	}
	if _, overflow := owed.AddOverflow(owed, accrued); overflow {
		return nil, errors.Wrap(errors.ErrOverflow, "withdraw")
	}
	if err := db.Delete(key); err != nil {
		return nil, err
	}
	return owed, nil
}

// Pending returns what Withdraw would return, without changing any state.
func (a *Accumulator) Pending(db dividends.ReadOnlyKVStore, account dividends.Address, token string, balance *uint256.Int) (*uint256.Int, error) {
	if mode, err := a.Mode(db); err != nil || mode != ModeContinuous {
		return new(uint256.Int), err
	}
	owed, _, err := a.earned(db, account, token, balance)
	if err != nil {
		return nil, err
	}
	accrued, err := a.amount(db, accountKey("acc", account, token))
	if err != nil {
		return nil, err
	}
	if _, overflow := owed.AddOverflow(owed, accrued); overflow {
		return nil, errors.Wrap(errors.ErrOverflow, "pending")
	}
	return owed, nil
}

package divtest

import "github.com/iov-one/dividends/x/oracle"

// Stake is a deterministic stake oracle.
type Stake = oracle.Stake

// Pools is a deterministic liquidity pool oracle.
type Pools = oracle.Pools

func NewStake() *Stake {
	return oracle.NewStake()
}

func NewPools() *Pools {
	return oracle.NewPools()
}

// Time is a fixed time oracle.
type Time struct {
	Offset int64
	Day    uint64
	// Err is returned by all calls when set.
	Err error
}

func (t *Time) TimeOffset() (int64, error) {
	return t.Offset, t.Err
}

func (t *Time) DayNumber() (uint64, error) {
	return t.Day, t.Err
}

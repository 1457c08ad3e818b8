package snapshot

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
)

// StakeOracle provides historical governance token stake.
type StakeOracle interface {
	StakedBalanceOfAt(account dividends.Address, day uint64) (*uint256.Int, error)
	TotalStakedBalanceOfAt(day uint64) (*uint256.Int, error)
}

// PoolOracle provides historical liquidity pool balances. It is consulted
// only for days preceding the switchover day.
type PoolOracle interface {
	LPBalanceOfAt(account dividends.Address, pool uint64, day uint64) (*uint256.Int, error)
	LPTotalSupplyAt(pool uint64, day uint64) (*uint256.Int, error)
	// LPImpliedStakeAt returns the governance token amount held by the
	// pool, which is shared by its liquidity providers.
	LPImpliedStakeAt(pool uint64, day uint64) (*uint256.Int, error)
}

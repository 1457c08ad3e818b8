package oracle

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
)

type pool struct {
	implied  Checkpoints
	balances map[string]*Checkpoints
}

// Pools is a deterministic liquidity pool oracle. The supply of a pool is
// the sum of all its provider balances.
type Pools struct {
	pools map[uint64]*pool
}

func NewPools() *Pools {
	return &Pools{pools: make(map[uint64]*pool)}
}

func (p *Pools) pool(id uint64) *pool {
	pl, ok := p.pools[id]
	if !ok {
		pl = &pool{balances: make(map[string]*Checkpoints)}
		p.pools[id] = pl
	}
	return pl
}

// SetImplied records the governance token amount held by a pool from
// given day on.
func (p *Pools) SetImplied(id, day, amount uint64) *Pools {
	return p.SetImpliedAmount(id, day, uint256.NewInt(amount))
}

func (p *Pools) SetImpliedAmount(id, day uint64, amount *uint256.Int) *Pools {
	p.pool(id).implied.Set(day, amount)
	return p
}

// SetBalance records the liquidity token balance of a provider from given
// day on.
func (p *Pools) SetBalance(account dividends.Address, id, day, amount uint64) *Pools {
	return p.SetBalanceAmount(account, id, day, uint256.NewInt(amount))
}

func (p *Pools) SetBalanceAmount(account dividends.Address, id, day uint64, amount *uint256.Int) *Pools {
	pl := p.pool(id)
	cp, ok := pl.balances[string(account)]
	if !ok {
		cp = &Checkpoints{}
		pl.balances[string(account)] = cp
	}
	cp.Set(day, amount)
	return p
}

func (p *Pools) LPBalanceOfAt(account dividends.Address, id uint64, day uint64) (*uint256.Int, error) {
	pl, ok := p.pools[id]
	if !ok {
		return new(uint256.Int), nil
	}
	cp, ok := pl.balances[string(account)]
	if !ok {
		return new(uint256.Int), nil
	}
	return cp.At(day), nil
}

func (p *Pools) LPTotalSupplyAt(id uint64, day uint64) (*uint256.Int, error) {
	total := new(uint256.Int)
	pl, ok := p.pools[id]
	if !ok {
		return total, nil
	}
	for _, cp := range pl.balances {
		total.Add(total, cp.At(day))
	}
	return total, nil
}

func (p *Pools) LPImpliedStakeAt(id uint64, day uint64) (*uint256.Int, error) {
	pl, ok := p.pools[id]
	if !ok {
		return new(uint256.Int), nil
	}
	return pl.implied.At(day), nil
}

package oracle

import (
	"math"
	"sort"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
)

// Stake is a deterministic stake oracle. The total stake is the sum of
// all account balances.
type Stake struct {
	balances map[string]*Checkpoints
}

func NewStake() *Stake {
	return &Stake{balances: make(map[string]*Checkpoints)}
}

// Set records the balance of an account from given day on.
func (s *Stake) Set(account dividends.Address, day uint64, amount uint64) *Stake {
	return s.SetAmount(account, day, uint256.NewInt(amount))
}

// SetAmount records the balance of an account from given day on.
func (s *Stake) SetAmount(account dividends.Address, day uint64, amount *uint256.Int) *Stake {
	cp, ok := s.balances[string(account)]
	if !ok {
		cp = &Checkpoints{}
		s.balances[string(account)] = cp
	}
	cp.Set(day, amount)
	return s
}

func (s *Stake) StakedBalanceOfAt(account dividends.Address, day uint64) (*uint256.Int, error) {
	cp, ok := s.balances[string(account)]
	if !ok {
		return new(uint256.Int), nil
	}
	return cp.At(day), nil
}

func (s *Stake) TotalStakedBalanceOfAt(day uint64) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, cp := range s.balances {
		total.Add(total, cp.At(day))
	}
	return total, nil
}

// StakedSupply returns the current total stake.
func (s *Stake) StakedSupply() (*uint256.Int, error) {
	return s.TotalStakedBalanceOfAt(math.MaxUint64)
}

// Accounts returns the addresses of all accounts that ever had a balance.
func (s *Stake) Accounts() []dividends.Address {
	res := make([]dividends.Address, 0, len(s.balances))
	for k := range s.balances {
		res = append(res, dividends.Address(k))
	}
	sort.Slice(res, func(i, j int) bool { return string(res[i]) < string(res[j]) })
	return res
}

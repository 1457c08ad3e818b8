package coin

import (
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends/errors"
)

// Coins is a normalized collection of coins: sorted by token, at most one
// coin per token and no zero amounts.
//
// A nil or empty collection represents "nothing".
type Coins []*Coin

// CombineCoins creates a Coins containing all given coins.
// It will sort them and combine duplicates to produce
// a normalized array.
func CombineCoins(cs ...Coin) (Coins, error) {
	var res Coins
	for _, c := range cs {
		var err error
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Clone returns a deep copy of the coins.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add returns a new collection with given coin added. Adding a zero amount
// is a no-op. The receiver is not modified.
func (cs Coins) Add(c Coin) (Coins, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.IsZero() {
		return cs.Clone(), nil
	}

	res := cs.Clone()
	i := sort.Search(len(res), func(i int) bool { return res[i].Token >= c.Token })
	if i < len(res) && res[i].Token == c.Token {
		sum, err := res[i].Add(c)
		if err != nil {
			return nil, err
		}
		res[i] = &sum
		return res, nil
	}

	res = append(res, nil)
	copy(res[i+1:], res[i:])
	res[i] = c.Clone()
	return res, nil
}

// Combine adds all coins of o into cs. Combining with an empty collection
// returns an unchanged copy.
func (cs Coins) Combine(o Coins) (Coins, error) {
	res := cs.Clone()
	for _, c := range o {
		var err error
		if res, err = res.Add(*c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Get returns the amount of given token. Missing tokens are zero.
func (cs Coins) Get(token string) *uint256.Int {
	for _, c := range cs {
		if c.Token == token {
			return new(uint256.Int).Set(c.amount())
		}
	}
	return new(uint256.Int)
}

// Tokens returns the token identifiers in order.
func (cs Coins) Tokens() []string {
	res := make([]string, len(cs))
	for i, c := range cs {
		res[i] = c.Token
	}
	return res
}

// IsEmpty returns true if there is nothing in this collection.
func (cs Coins) IsEmpty() bool {
	for _, c := range cs {
		if !c.IsZero() {
			return false
		}
	}
	return true
}

// Equals returns true if both collections hold the same amounts.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are valid and the collection is
// normalized.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Wrap(errors.ErrEmpty, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "coin %d", i)
		}
		if c.IsZero() {
			return errors.Wrapf(errors.ErrAmount, "zero amount of %s", c.Token)
		}
		if i > 0 && cs[i-1].Token >= c.Token {
			return errors.Wrap(errors.ErrState, "coins not normalized")
		}
	}
	return nil
}

// String returns a human readable representation of all coins.
func (cs Coins) String() string {
	if len(cs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

/*
Package coin implements token amounts. An amount is a 256 bit unsigned
integer expressed in the smallest unit of its token, so no fractional
representation is needed.
*/
package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends/errors"
)

// NativeToken is the identifier that represents the chain's native coin.
const NativeToken = "native"

// IsToken is the RegExp to ensure valid token identifiers. A token is
// either a ticker or a contract address representation.
var IsToken = regexp.MustCompile(`^[a-zA-Z0-9_.:\-]{2,64}$`).MatchString

// Coin is an amount of a single token.
type Coin struct {
	Token  string
	Amount *uint256.Int
}

// NewCoin creates a new coin object
func NewCoin(token string, amount uint64) Coin {
	return Coin{
		Token:  token,
		Amount: uint256.NewInt(amount),
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(token string, amount uint64) *Coin {
	c := NewCoin(token, amount)
	return &c
}

// ID returns a coin token identifier.
func (c Coin) ID() string {
	return c.Token
}

// amount never returns nil, so that a zero value coin is usable.
func (c Coin) amount() *uint256.Int {
	if c.Amount == nil {
		return new(uint256.Int)
	}
	return c.Amount
}

// Add combines two coins of the same token.
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrType, "adding %s to %s", o.Token, c.Token)
	}
	sum, overflow := new(uint256.Int).AddOverflow(c.amount(), o.amount())
	if overflow {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	return Coin{Token: c.Token, Amount: sum}, nil
}

// Subtract returns c minus o. Amounts cannot be negative, so subtracting a
// bigger value fails.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrType, "subtracting %s from %s", o.Token, c.Token)
	}
	diff, underflow := new(uint256.Int).SubOverflow(c.amount(), o.amount())
	if underflow {
		return Coin{}, errors.Wrapf(errors.ErrAmount, "%s - %s", c, o)
	}
	return Coin{Token: c.Token, Amount: diff}, nil
}

// Compare returns -1, 0 or 1 comparing the amounts of two coins. Only
// coins of the same token can be compared.
func (c Coin) Compare(o Coin) int {
	return c.amount().Cmp(o.amount())
}

// Equals returns true if both coins represent the same amount of the same
// token.
func (c Coin) Equals(o Coin) bool {
	return c.SameType(o) && c.Compare(o) == 0
}

// IsZero returns true if the amount is 0
func (c Coin) IsZero() bool {
	return c.amount().IsZero()
}

// SameType returns true if they have the same token
func (c Coin) SameType(o Coin) bool {
	return c.Token == o.Token
}

// Clone provides an independent copy of a coin pointer.
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	return &Coin{
		Token:  c.Token,
		Amount: new(uint256.Int).Set(c.amount()),
	}
}

// Validate ensures that the coin is in the valid state.
func (c Coin) Validate() error {
	if !IsToken(c.Token) {
		return errors.Wrapf(errors.ErrInput, "invalid token %q", c.Token)
	}
	if c.Amount == nil {
		return errors.Wrap(errors.ErrAmount, "missing amount")
	}
	return nil
}

// String provides a human readable representation of the coin, for example
// "600 native".
func (c Coin) String() string {
	return fmt.Sprintf("%s %s", FormatAmount(c.amount()), c.Token)
}

// ParseHumanFormat parses the "<amount> <token>" representation returned by
// String.
func ParseHumanFormat(h string) (Coin, error) {
	args := strings.Fields(h)
	if len(args) != 2 {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	amount, err := ParseAmount(args[0])
	if err != nil {
		return Coin{}, err
	}
	c := Coin{Token: args[1], Amount: amount}
	return c, c.Validate()
}

type jsonCoin struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// MarshalJSON represents the amount as a decimal string, because 256 bit
// values do not fit a JSON number.
func (c Coin) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonCoin{Token: c.Token, Amount: FormatAmount(c.amount())})
}

// UnmarshalJSON accepts both the object representation and the human
// readable string format.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var j jsonCoin
	if err := json.Unmarshal(raw, &j); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot decode coin")
	}
	amount, err := ParseAmount(j.Amount)
	if err != nil {
		return err
	}
	*c = Coin{Token: j.Token, Amount: amount}
	return nil
}

// ParseAmount reads a decimal representation of an amount.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.Wrap(errors.ErrAmount, "empty amount")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrAmount, "invalid amount %q: %s", s, err)
	}
	return v, nil
}

// FormatAmount returns the decimal representation of an amount.
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.ToBig().String()
}

// EncodeAmount returns the fixed size, big endian binary representation of
// an amount.
func EncodeAmount(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

// DecodeAmount reads an amount written by EncodeAmount. Nil input is zero.
func DecodeAmount(raw []byte) (*uint256.Int, error) {
	if raw == nil {
		return new(uint256.Int), nil
	}
	if len(raw) != 32 {
		return nil, errors.Wrapf(errors.ErrInput, "amount must be 32 bytes, got %d", len(raw))
	}
	return new(uint256.Int).SetBytes32(raw), nil
}

/*
Package fixed implements the fixed point arithmetic used for percentages
and ratios. Values are scaled by One (10^18), so One represents 100%.

Amounts are 256 bit unsigned integers. All divisions round toward zero, so
a computed share is never greater than its exact value.
*/
package fixed

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/dividends/errors"
)

// One is the fixed point scale. A percentage equal to One is 100%.
const One uint64 = 1e18

// Decimals is the number of decimal places of the fixed point scale.
const Decimals = 18

// OneInt returns One as a 256 bit integer.
func OneInt() *uint256.Int {
	return uint256.NewInt(One)
}

// MulDiv returns floor(x * y / d). The intermediate product is computed with
// 512 bit precision, so only a result that does not fit 256 bits is an
// overflow.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, errors.Wrap(errors.ErrInput, "division by zero")
	}
	res, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, errors.Wrapf(errors.ErrOverflow, "%s * %s / %s", x, y, d)
	}
	return res, nil
}

// Mul returns floor(amount * pct / One), the share of an amount.
func Mul(amount *uint256.Int, pct uint64) (*uint256.Int, error) {
	return MulDiv(amount, uint256.NewInt(pct), OneInt())
}

// Div returns floor(a * One / b), the fixed point ratio of two amounts.
func Div(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDiv(a, OneInt(), b)
}

// Add returns the sum of two percentages, failing on uint64 overflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

// Sum adds all given percentages.
func Sum(pcts ...uint64) (uint64, error) {
	var total uint64
	for _, p := range pcts {
		var err error
		if total, err = Add(total, p); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// ValidatePercent returns an error if given percentage exceeds 100%.
func ValidatePercent(pct uint64) error {
	if pct > One {
		return errors.Wrapf(errors.ErrAmount, "percentage %s exceeds 100%%", Format(pct))
	}
	return nil
}

// ParsePercent reads a percentage. Accepted formats are a percent value
// ("60%", "12.5%"), a decimal fraction ("0.6") or the raw fixed point
// integer ("600000000000000000").
func ParsePercent(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrap(errors.ErrInput, "empty percentage")
	}

	decimals := Decimals
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		decimals -= 2
	case !strings.Contains(s, "."):
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrInput, "invalid percentage %q", s)
		}
		return v, ValidatePercent(v)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > decimals {
		return 0, errors.Wrapf(errors.ErrInput, "too many decimal places in %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "invalid percentage %q", s)
	}
	return v, ValidatePercent(v)
}

// Format returns a human readable percent representation, for example
// "12.5%".
func Format(pct uint64) string {
	const scale = One / 100
	whole, frac := pct/scale, pct%scale
	if frac == 0 {
		return fmt.Sprintf("%d%%", whole)
	}
	s := strings.TrimRight(fmt.Sprintf("%016d", frac), "0")
	return fmt.Sprintf("%d.%s%%", whole, s)
}

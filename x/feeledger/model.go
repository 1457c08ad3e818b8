package feeledger

import (
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	amino "github.com/tendermint/go-amino"
)

// TokenList is the allow list of tokens the ledger records revenue for.
type TokenList struct {
	Tokens []string
}

// Validate returns an error if any token is invalid or repeated.
func (l *TokenList) Validate() error {
	seen := make(map[string]struct{}, len(l.Tokens))
	for _, t := range l.Tokens {
		if !coin.IsToken(t) {
			return errors.Wrapf(errors.ErrInput, "invalid token %q", t)
		}
		if _, ok := seen[t]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "token %q", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

func (l *TokenList) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(l)
}

func (l *TokenList) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, l)
}

func (l *TokenList) index(token string) int {
	for i, t := range l.Tokens {
		if t == token {
			return i
		}
	}
	return -1
}

// ClockState is the persisted day counter.
type ClockState struct {
	// Day is the last day the counter was advanced to.
	Day uint64 `json:"day"`
	// Offset is the unix time of the beginning of day zero.
	Offset int64 `json:"offset"`
	// Seeded is set once the offset was read from the time oracle or
	// set explicitly.
	Seeded bool `json:"seeded"`
}

func (s *ClockState) Validate() error {
	if s.Offset < 0 {
		return errors.Wrap(errors.ErrState, "negative time offset")
	}
	return nil
}

func (s *ClockState) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(s)
}

func (s *ClockState) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, s)
}

package continuous

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	amino "github.com/tendermint/go-amino"
)

// Mode is the accrual model of the dividend engine.
type Mode uint8

const (
	ModeSnapshotOnly Mode = iota
	ModeContinuous
)

func (m Mode) String() string {
	switch m {
	case ModeSnapshotOnly:
		return "snapshot"
	case ModeContinuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// ModeState is the persisted mode of the accumulator.
type ModeState struct {
	Mode Mode `json:"mode"`
	// ActivatedAt is the block time the continuous mode was enabled at.
	ActivatedAt dividends.UnixTime `json:"activated_at"`
	// ActivationDay is the first day accounted by the accumulator.
	ActivationDay uint64 `json:"activation_day"`
	// Period is the length in seconds of the time unit deposits are
	// weighted with.
	Period int64 `json:"period"`
}

func (s *ModeState) Validate() error {
	switch s.Mode {
	case ModeSnapshotOnly:
		return nil
	case ModeContinuous:
		if s.Period <= 0 {
			return errors.Wrapf(errors.ErrState, "period %d must be positive", s.Period)
		}
		return s.ActivatedAt.Validate()
	default:
		return errors.Wrapf(errors.ErrState, "unknown mode %d", s.Mode)
	}
}

func (s *ModeState) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(s)
}

func (s *ModeState) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, s)
}

// TokenState is the running weight of a single token.
type TokenState struct {
	// Weight is the 32 byte big endian encoded running weight.
	Weight     []byte             `json:"weight"`
	LastUpdate dividends.UnixTime `json:"last_update"`
}

func (s *TokenState) Validate() error {
	if len(s.Weight) != 32 {
		return errors.Wrapf(errors.ErrState, "weight must be 32 bytes, got %d", len(s.Weight))
	}
	return nil
}

func (s *TokenState) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(s)
}

func (s *TokenState) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, s)
}

// RunningWeight returns the decoded weight.
func (s *TokenState) RunningWeight() *uint256.Int {
	w, err := coin.DecodeAmount(s.Weight)
	if err != nil {
		return new(uint256.Int)
	}
	return w
}

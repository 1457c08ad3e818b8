package dividends

import (
	"encoding/json"
	"time"

	"github.com/iov-one/dividends/errors"
)

// UnixTime is a block time in seconds. Days are counted in whole seconds
// from the configured time offset, so no finer precision is kept.
type UnixTime int64

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// IsZero reports an unset time, such as a continuous activation that was
// never configured.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add drops any sub second part of d.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// UnmarshalJSON accepts seconds since epoch or an RFC 3339 string, the
// latter being easier to write in a genesis configuration or a replay
// script.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

func (t UnixTime) String() string {
	return t.Time().String()
}

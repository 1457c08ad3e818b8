package oracle

import (
	"github.com/iov-one/dividends/errors"
	"github.com/jonboulle/clockwork"
)

// Time is a time oracle that derives the day number from a clock.
type Time struct {
	Clock clockwork.Clock
	// Offset is the unix time of the beginning of day zero.
	Offset int64
	// SecondsPerDay is the length of a day.
	SecondsPerDay int64
}

func (t *Time) TimeOffset() (int64, error) {
	return t.Offset, nil
}

// DayNumber returns the number of whole days elapsed since the offset.
func (t *Time) DayNumber() (uint64, error) {
	if t.SecondsPerDay <= 0 {
		return 0, errors.Wrap(errors.ErrState, "seconds per day not set")
	}
	elapsed := t.Clock.Now().Unix() - t.Offset
	if elapsed < 0 {
		return 0, nil
	}
	return uint64(elapsed / t.SecondsPerDay), nil
}

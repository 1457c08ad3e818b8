package feeledger

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/orm"
)

var clockKey = []byte("clock")

// TimeOracle provides the beginning of day zero. It is consulted once,
// when the clock is used for the first time.
type TimeOracle interface {
	// TimeOffset returns the unix time of the beginning of day zero.
	TimeOffset() (int64, error)
	// DayNumber returns the current day as seen by the oracle.
	DayNumber() (uint64, error)
}

// Clock maintains the day counter.
type Clock struct {
	bucket orm.ModelBucket
	oracle TimeOracle
}

func NewClock(oracle TimeOracle) *Clock {
	return &Clock{
		bucket: orm.NewModelBucket(bucketName),
		oracle: oracle,
	}
}

// State returns the persisted clock state. A clock that was never used
// returns a zero, unseeded state.
func (c *Clock) State(db dividends.ReadOnlyKVStore) (*ClockState, error) {
	var s ClockState
	switch err := c.bucket.One(db, clockKey, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &ClockState{}, nil
	default:
		return nil, err
	}
}

// CurrentDay returns the stored day counter.
func (c *Clock) CurrentDay(db dividends.ReadOnlyKVStore) (uint64, error) {
	s, err := c.State(db)
	if err != nil {
		return 0, err
	}
	return s.Day, nil
}

// Rollover advances the day counter if it is behind given time. The time
// offset is read from the oracle on first use. It returns true if the day
// counter was advanced.
func (c *Clock) Rollover(db dividends.KVStore, now dividends.UnixTime, secondsPerDay int64) (bool, error) {
	s, changed, rolled, err := c.advance(db, now, secondsPerDay)
	if err != nil {
		return false, err
	}
	if changed {
		if err := c.bucket.Put(db, clockKey, s); err != nil {
			return false, errors.Wrap(err, "cannot save clock")
		}
	}
	return rolled, nil
}

// Today returns the day counter as Rollover would set it at given time,
// without writing anything.
func (c *Clock) Today(db dividends.ReadOnlyKVStore, now dividends.UnixTime, secondsPerDay int64) (uint64, error) {
	s, _, _, err := c.advance(db, now, secondsPerDay)
	if err != nil {
		return 0, err
	}
	return s.Day, nil
}

func (c *Clock) advance(db dividends.ReadOnlyKVStore, now dividends.UnixTime, secondsPerDay int64) (s *ClockState, changed, rolled bool, err error) {
	if secondsPerDay <= 0 {
		return nil, false, false, errors.Wrap(errors.ErrState, "seconds per day must be positive")
	}
	if s, err = c.State(db); err != nil {
		return nil, false, false, err
	}
	if !s.Seeded {
		if c.oracle == nil {
			return nil, false, false, errors.Wrap(errors.ErrState, "no time oracle")
		}
		offset, err := c.oracle.TimeOffset()
		if err != nil {
			return nil, false, false, errors.Wrap(err, "time oracle offset")
		}
		oracleDay, err := c.oracle.DayNumber()
		if err != nil {
			return nil, false, false, errors.Wrap(err, "time oracle day")
		}
		s.Offset, s.Seeded = offset, true
		if oracleDay > s.Day {
			s.Day = oracleDay
		}
		changed = true
	}
	if day := DayAt(now, s.Offset, secondsPerDay); day > s.Day {
		s.Day = day
		changed, rolled = true, true
	}
	return s, changed, rolled, nil
}

// SetTimeOffset overrides the beginning of day zero. The day counter never
// goes back, a later offset only delays the next rollover.
func (c *Clock) SetTimeOffset(db dividends.KVStore, offset int64) error {
	s, err := c.State(db)
	if err != nil {
		return err
	}
	s.Offset, s.Seeded = offset, true
	return c.bucket.Put(db, clockKey, s)
}

// DayAt returns the day number of given time. Times before the offset
// belong to day zero.
func DayAt(now dividends.UnixTime, offset, secondsPerDay int64) uint64 {
	elapsed := int64(now) - offset
	if elapsed <= 0 {
		return 0
	}
	return uint64(elapsed / secondsPerDay)
}

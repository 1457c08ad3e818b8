package claims

import "github.com/iov-one/dividends/errors"

// Normalize fills in the unset (zero) bounds of a claim range and
// validates the result against the current day and the batch size.
//
// When both bounds are unset the range covers the last batchSize days
// before the current day. When only one bound is set, the other one is
// derived from it using the batch size. Day zero is never claimable.
func Normalize(start, end, currentDay, batchSize uint64) (uint64, uint64, error) {
	switch {
	case start == 0 && end == 0:
		end = currentDay
		start = floorStart(end, batchSize)
	case end == 0:
		end = start + batchSize
		if end < start || end > currentDay {
			end = currentDay
		}
	case start == 0:
		start = floorStart(end, batchSize)
	}

	switch {
	case start < 1:
		return 0, 0, errors.Field("Start", ErrRange, "start %d must be at least 1", start)
	case start >= currentDay:
		return 0, 0, errors.Field("Start", ErrRange, "start %d must be before the current day %d", start, currentDay)
	case end <= 1:
		return 0, 0, errors.Field("End", ErrRange, "end %d must be greater than 1", end)
	case end > currentDay:
		return 0, 0, errors.Field("End", ErrRange, "end %d must not be after the current day %d", end, currentDay)
	case start >= end:
		return 0, 0, errors.Field("Start", ErrRange, "start %d must be before end %d", start, end)
	case end-start > batchSize:
		return 0, 0, errors.Field("End", ErrRange, "range of %d days exceeds the batch size %d", end-start, batchSize)
	}
	return start, end, nil
}

func floorStart(end, batchSize uint64) uint64 {
	if end <= batchSize+1 {
		return 1
	}
	return end - batchSize
}

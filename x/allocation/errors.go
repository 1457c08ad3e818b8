package allocation

import "github.com/iov-one/dividends/errors"

var (
	ErrCategory      = errors.Register(400, "invalid category")
	ErrPercentageSum = errors.Register(401, "percentages must sum to 100%")
	ErrCategoryInUse = errors.Register(402, "category in use")
	ErrTimeTravel    = errors.Register(403, "day precedes the last snapshot")
)

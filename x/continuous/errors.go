package continuous

import "github.com/iov-one/dividends/errors"

var (
	ErrModeActive   = errors.Register(406, "continuous mode active")
	ErrModeInactive = errors.Register(407, "continuous mode inactive")
)

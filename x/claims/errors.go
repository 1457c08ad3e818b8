package claims

import "github.com/iov-one/dividends/errors"

var ErrRange = errors.Register(405, "invalid range")

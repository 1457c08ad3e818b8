package distribution

import "github.com/iov-one/dividends/errors"

var ErrTransfer = errors.Register(408, "transfer failed")

package feeledger

import "github.com/iov-one/dividends/errors"

var ErrTokenNotAccepted = errors.Register(404, "token not accepted")

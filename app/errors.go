package app

import "github.com/iov-one/dividends/errors"

var (
	// ErrNoSuchPath is returned for a message or a query path no handler
	// is registered for.
	ErrNoSuchPath = errors.Register(20, "path not registered")
)

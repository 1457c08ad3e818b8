package errors

import (
	"errors"
	"fmt"
)

const (
	// SuccessCode is reported for a nil error.
	SuccessCode uint32 = 0

	// Errors that do not carry a registered code are reported with the
	// internal code and, outside of debug mode, a generic message.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// ClientInfo returns the code and message of an error as it can be shown
// to a client. The message of an unregistered error is replaced with
// "internal error" unless debug is set, in which case the full error with
// its stack is returned.
func ClientInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}
	code := codeOf(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalCode:
		return code, internalLog
	default:
		return code, err.Error()
	}
}

type coder interface {
	Code() uint32
}

// codeOf unwraps err until an error carrying a code is found.
func codeOf(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			return internalCode
		}
		err = c.Cause()
	}
}

// Redact replaces a panic or an error without a registered code with a
// generic internal error. In debug mode err is returned unchanged.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) || codeOf(err) == internalCode {
		return errors.New(internalLog)
	}
	return err
}

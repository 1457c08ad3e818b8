/*
Package errors implements the error handling used across the dividends
module.

Reuse the root errors declared in this package as much as possible and
register package specific errors only when a client must be able to tell them
apart. Each root error carries a unique code, so that a caller can classify a
failure without parsing the message.

To register a custom error use Register(code, description). To create an
instance use ErrXxx.New, ErrXxx.Newf or errors.Wrap(ErrXxx, "...") at the
point of failure, so that a stack trace is attached. Only the innermost wrap
records the stack trace.

Once you have an error, use fmt to get more context

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors

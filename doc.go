/*
Package dividends defines the common interfaces that tie together the
dividend accounting extensions, as well as implementations of some of the
simpler components (when interfaces would be too much overhead).

Every state change is performed by a Handler processing a single Msg
against a KVStore. The application runs each message inside a cache wrap
and writes it only when the handler succeeds, so a failed call never
leaves partial state behind.

We pass context through context.Context between app and handlers. There
exists a pair of functions for every value kept in the context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, block time).
*/
package dividends

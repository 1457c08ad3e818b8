/*
Package x contains the helpers shared by all extensions, most notably the
Authenticator abstraction handlers use to learn who signed a message.
*/
package x

import (
	"context"

	"github.com/iov-one/dividends"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(dividends.Context) []dividends.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(dividends.Context, dividends.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators
func (m MultiAuth) GetConditions(ctx dividends.Context) []dividends.Condition {
	var res []dividends.Condition
	for _, impl := range m.impls {
		add := impl.GetConditions(ctx)
		if len(add) > 0 {
			res = append(res, add...)
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx dividends.Context, addr dividends.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx dividends.Context, auth Authenticator) []dividends.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]dividends.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil
func MainSigner(ctx dividends.Context, auth Authenticator) dividends.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx dividends.Context, auth Authenticator, required []dividends.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasNAddresses returns true if at least n elements in requested are
// also in context.
func HasNAddresses(ctx dividends.Context, auth Authenticator, required []dividends.Address, n int) bool {
	if n <= 0 {
		return true
	}
	for _, r := range required {
		if auth.HasAddress(ctx, r) {
			n--
			if n == 0 {
				return true
			}
		}
	}
	return false
}

type contextKey int // local to this package

const contextKeySigners contextKey = iota

// WithSigners sets the conditions that authorized the currently processed
// message. The application calls it once before handing a message over to
// a handler.
func WithSigners(ctx dividends.Context, signers ...dividends.Condition) dividends.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// SignerAuth authenticates the conditions set by WithSigners.
type SignerAuth struct{}

var _ Authenticator = SignerAuth{}

// GetConditions returns the signers stored in the context.
func (SignerAuth) GetConditions(ctx dividends.Context) []dividends.Condition {
	val, _ := ctx.Value(contextKeySigners).([]dividends.Condition)
	return val
}

// HasAddress returns true if any signer stored in the context matches
// given address.
func (a SignerAuth) HasAddress(ctx dividends.Context, addr dividends.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

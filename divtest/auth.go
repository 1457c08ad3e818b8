package divtest

import (
	"context"
	"fmt"

	"github.com/iov-one/dividends"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions.
// When authenticating both Signer and Signers are considered.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer dividends.Condition

	// Signers represents an authentication of multiple signers.
	Signers []dividends.Condition
}

func (a *Auth) GetConditions(dividends.Context) []dividends.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx dividends.Context, addr dividends.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve permissions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convinience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetConditions(ctx dividends.Context, permissions ...dividends.Condition) dividends.Context {
	return context.WithValue(ctx, a.Key, permissions)
}

func (a *CtxAuth) GetConditions(ctx dividends.Context) []dividends.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]dividends.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []dividends.Condition got %T", ctx.Value(a.Key)))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx dividends.Context, addr dividends.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

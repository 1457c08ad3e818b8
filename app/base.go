package app

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/x"
	"github.com/jonboulle/clockwork"
)

// BaseApp adds message processing and block handling to the storage and
// query functionality of StoreApp.
type BaseApp struct {
	*StoreApp
	handler dividends.Handler
	clock   clockwork.Clock
	debug   bool
	height  int64
}

// NewBaseApp constructs a basic application. Block time is read from given
// clock when a block begins.
func NewBaseApp(
	store *StoreApp,
	handler dividends.Handler,
	clock clockwork.Clock,
	debug bool,
) *BaseApp {
	height, _ := dividends.GetHeight(store.BlockContext())
	return &BaseApp{
		StoreApp: store,
		handler:  handler,
		clock:    clock,
		debug:    debug,
		height:   height,
	}
}

// BeginBlock starts the next block, stamped with the current time of the
// application clock.
func (b *BaseApp) BeginBlock() dividends.Context {
	b.height++
	b.StoreApp.BeginBlock(b.height, b.clock.Now())
	return b.BlockContext()
}

// DeliverTx executes the message of given transaction authorized by the
// signers. Changes of a failed message are discarded, so a message is
// always applied in full or not at all.
func (b *BaseApp) DeliverTx(tx dividends.Tx, signers ...dividends.Condition) (*dividends.DeliverResult, error) {
	ctx := dividends.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", pathOf(tx))
	ctx = x.WithSigners(ctx, signers...)

	cache := b.DeliverStore().CacheWrap()
	res, err := b.deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		dividends.GetLogger(ctx).Debug("deliver failed", "err", err)
		return nil, errors.Redact(err, b.debug)
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write deliver cache")
	}
	return res, nil
}

// CheckTx verifies the message of given transaction without persisting any
// change.
func (b *BaseApp) CheckTx(tx dividends.Tx, signers ...dividends.Condition) (*dividends.CheckResult, error) {
	ctx := dividends.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", pathOf(tx))
	ctx = x.WithSigners(ctx, signers...)

	cache := b.CheckStore().CacheWrap()
	defer cache.Discard()
	res, err := b.check(ctx, cache, tx)
	if err != nil {
		return nil, errors.Redact(err, b.debug)
	}
	return res, nil
}

// deliver calls the handler, and capture any panics
func (b *BaseApp) deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (res *dividends.DeliverResult, err error) {
	defer errors.Recover(&err)
	return b.handler.Deliver(ctx, db, tx)
}

// check calls the handler, and capture any panics
func (b *BaseApp) check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (res *dividends.CheckResult, err error) {
	defer errors.Recover(&err)
	return b.handler.Check(ctx, db, tx)
}

// pathOf returns the message path of a transaction for logging.
func pathOf(tx dividends.Tx) string {
	msg, err := tx.GetMsg()
	if err != nil || msg == nil {
		return ""
	}
	return msg.Path()
}

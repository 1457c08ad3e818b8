package divtest

import "github.com/iov-one/dividends"

// Tx represents a transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg dividends.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ dividends.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (dividends.Msg, error) {
	return tx.Msg, tx.Err
}

// Handler is a handler mock that counts its calls and returns the
// configured results.
type Handler struct {
	checkCall   int
	CheckResult dividends.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult dividends.DeliverResult
	DeliverErr    error

	// OnDeliver if set is called with the store of every delivery.
	OnDeliver func(dividends.KVStore) error
}

var _ dividends.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	h.deliverCall++
	if h.OnDeliver != nil {
		if err := h.OnDeliver(db); err != nil {
			return nil, err
		}
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

package distribution

import (
	"strconv"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	"github.com/iov-one/dividends/gconf"
	"github.com/iov-one/dividends/x"
	"github.com/iov-one/dividends/x/allocation"
	"github.com/iov-one/dividends/x/continuous"
	"github.com/iov-one/dividends/x/feeledger"
	"github.com/tendermint/tendermint/libs/common"
)

// RegisterRoutes registers handlers for distribution message processing.
func RegisterRoutes(r dividends.Registry, auth x.Authenticator, c *Coordinator) {
	r.Handle(pathClaimMsg, &claimHandler{auth: auth, c: c})
	r.Handle(pathSettleForRecipientMsg, &settleHandler{c: c})
	r.Handle(pathRevenueReceivedMsg, &revenueHandler{auth: auth, c: c})
	r.Handle(pathStakeChangedMsg, &stakeChangedHandler{auth: auth, c: c})
	r.Handle(pathSetCategoryPercentagesMsg, &setPercentagesHandler{auth: auth, c: c})
	r.Handle(pathAddCategoryMsg, &categoryHandler{auth: auth, c: c})
	r.Handle(pathRemoveCategoryMsg, &categoryHandler{auth: auth, c: c})
	r.Handle(pathAddTokenMsg, &tokenHandler{auth: auth, c: c})
	r.Handle(pathRemoveTokenMsg, &tokenHandler{auth: auth, c: c})
	r.Handle(pathSetBatchSizeMsg, &governanceConfHandler{auth: auth, c: c})
	r.Handle(pathSetSwitchoverDayMsg, &governanceConfHandler{auth: auth, c: c})
	r.Handle(pathSetTimeOffsetMsg, &timeOffsetHandler{auth: auth, c: c})
	r.Handle(pathEnableContinuousMsg, &enableContinuousHandler{auth: auth, c: c})
	r.Handle(pathUpdateConfigurationMsg, &updateConfigurationHandler{
		c:     c,
		patch: gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth),
	})
}

// role names an address of the configuration that must sign a message.
type role int

const (
	roleOwner role = iota
	roleGovernance
	roleNotifier
)

func (r role) String() string {
	switch r {
	case roleOwner:
		return "owner"
	case roleGovernance:
		return "governance"
	default:
		return "notifier"
	}
}

// authorize loads the configuration and ensures that the address of given
// role signed the message.
func authorize(ctx dividends.Context, db dividends.ReadOnlyKVStore, auth x.Authenticator, r role) (*Configuration, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	var addr dividends.Address
	switch r {
	case roleOwner:
		addr = conf.Owner
	case roleGovernance:
		addr = conf.Governance
	case roleNotifier:
		addr = conf.Notifier
	}
	if !auth.HasAddress(ctx, addr) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s signature required", r)
	}
	return conf, nil
}

func settlementTags(s *Settlement) []common.KVPair {
	tags := []common.KVPair{
		{Key: []byte("action"), Value: []byte("claim")},
		{Key: []byte("recipient"), Value: []byte(s.Recipient.String())},
		{Key: []byte("start"), Value: []byte(strconv.FormatUint(s.Start, 10))},
		{Key: []byte("end"), Value: []byte(strconv.FormatUint(s.End, 10))},
	}
	for _, c := range s.Paid {
		tags = append(tags, common.KVPair{
			Key:   []byte("paid/" + c.Token),
			Value: []byte(coin.FormatAmount(c.Amount)),
		})
	}
	return tags
}

type claimHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *claimHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *claimHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	s, err := h.c.Claim(ctx, db, caller, msg.Start, msg.End)
	if err != nil {
		return nil, err
	}
	return &dividends.DeliverResult{Log: s.Paid.String(), Tags: settlementTags(s)}, nil
}

func (h *claimHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*ClaimMsg, dividends.Address, error) {
	var msg ClaimMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "claim must be signed")
	}
	return &msg, signer.Address(), nil
}

type settleHandler struct {
	c *Coordinator
}

func (h *settleHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	var msg SettleForRecipientMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &dividends.CheckResult{}, nil
}

func (h *settleHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	var msg SettleForRecipientMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	s, err := h.c.SettleForRecipient(ctx, db, msg.Recipient, msg.Start, msg.End)
	if err != nil {
		return nil, err
	}
	return &dividends.DeliverResult{Log: s.Paid.String(), Tags: settlementTags(s)}, nil
}

type revenueHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *revenueHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *revenueHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	amount, err := coin.ParseAmount(msg.Amount)
	if err != nil {
		return nil, err
	}
	day, err := h.c.OnRevenueReceived(ctx, db, msg.Token, amount)
	if err != nil {
		return nil, err
	}
	tags := []common.KVPair{
		{Key: []byte("action"), Value: []byte("revenue")},
		{Key: []byte("day"), Value: []byte(strconv.FormatUint(day, 10))},
		{Key: []byte("token"), Value: []byte(msg.Token)},
	}
	return &dividends.DeliverResult{Tags: tags}, nil
}

func (h *revenueHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*RevenueReceivedMsg, error) {
	var msg RevenueReceivedMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := authorize(ctx, db, h.auth, roleNotifier); err != nil {
		return nil, err
	}
	ok, err := h.c.tokens.IsAccepted(db, msg.Token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(feeledger.ErrTokenNotAccepted, "%q", msg.Token)
	}
	return &msg, nil
}

type stakeChangedHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *stakeChangedHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *stakeChangedHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	balance, err := coin.ParseAmount(msg.BalanceBefore)
	if err != nil {
		return nil, err
	}
	if err := h.c.OnStakeChanged(ctx, db, msg.Account, balance); err != nil {
		return nil, err
	}
	return &dividends.DeliverResult{}, nil
}

func (h *stakeChangedHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*StakeChangedMsg, error) {
	var msg StakeChangedMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := authorize(ctx, db, h.auth, roleNotifier); err != nil {
		return nil, err
	}
	return &msg, nil
}

type setPercentagesHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *setPercentagesHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *setPercentagesHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	day, err := h.c.Rollover(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := h.c.history.SetCategoryPercentages(db, day, msg.Percentages); err != nil {
		return nil, err
	}
	log := dividends.GetLogger(ctx)
	for _, p := range msg.Percentages {
		log.Info("percentage updated", "category", p.Category, "day", day, "percentage", fixed.Format(p.Percentage))
	}
	return &dividends.DeliverResult{}, nil
}

func (h *setPercentagesHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*SetCategoryPercentagesMsg, error) {
	var msg SetCategoryPercentagesMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := authorize(ctx, db, h.auth, roleGovernance); err != nil {
		return nil, err
	}
	return &msg, nil
}

// categoryHandler adds and removes categories.
type categoryHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *categoryHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *categoryHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	day, err := h.c.Rollover(ctx, db)
	if err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case *AddCategoryMsg:
		if err := h.c.history.AddCategory(db, m.Name, 0); err != nil {
			return nil, err
		}
		dividends.GetLogger(ctx).Info("category added", "category", m.Name)
	case *RemoveCategoryMsg:
		conf, err := loadConf(db)
		if err != nil {
			return nil, err
		}
		if m.Name == conf.HolderCategory || m.Name == conf.DaoCategory {
			return nil, errors.Wrapf(allocation.ErrCategoryInUse, "%q is configured", m.Name)
		}
		if err := h.c.history.RemoveCategory(db, m.Name, day); err != nil {
			return nil, err
		}
		dividends.GetLogger(ctx).Info("category removed", "category", m.Name)
	}
	return &dividends.DeliverResult{}, nil
}

func (h *categoryHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (dividends.Msg, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	switch msg.(type) {
	case *AddCategoryMsg, *RemoveCategoryMsg:
	default:
		return nil, errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	if _, err := authorize(ctx, db, h.auth, roleOwner); err != nil {
		return nil, err
	}
	return msg, nil
}

// tokenHandler maintains the accepted token list.
type tokenHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *tokenHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *tokenHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case *AddTokenMsg:
		if err := h.c.tokens.Add(db, m.Token); err != nil {
			return nil, err
		}
		dividends.GetLogger(ctx).Info("token accepted", "token", m.Token)
	case *RemoveTokenMsg:
		if err := h.c.tokens.Remove(db, m.Token); err != nil {
			return nil, err
		}
		dividends.GetLogger(ctx).Info("token removed", "token", m.Token)
	}
	return &dividends.DeliverResult{}, nil
}

func (h *tokenHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (dividends.Msg, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	switch msg.(type) {
	case *AddTokenMsg, *RemoveTokenMsg:
	default:
		return nil, errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	if _, err := authorize(ctx, db, h.auth, roleOwner); err != nil {
		return nil, err
	}
	return msg, nil
}

// governanceConfHandler processes the configuration changes reserved for
// the governance.
type governanceConfHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *governanceConfHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *governanceConfHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case *SetBatchSizeMsg:
		conf.BatchSize = m.BatchSize
	case *SetSwitchoverDayMsg:
		day, err := h.c.rollover(ctx, db, conf)
		if err != nil {
			return nil, err
		}
		if m.Day < day {
			return nil, errors.Field("Day", errors.ErrInput, "switchover day %d is before the current day %d", m.Day, day)
		}
		conf.SwitchoverDay = m.Day
	}
	if err := gconf.Save(db, packageName, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	dividends.GetLogger(ctx).Info("configuration updated",
		"batch_size", conf.BatchSize, "switchover_day", conf.SwitchoverDay)
	return &dividends.DeliverResult{}, nil
}

func (h *governanceConfHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (dividends.Msg, *Configuration, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	switch msg.(type) {
	case *SetBatchSizeMsg, *SetSwitchoverDayMsg:
	default:
		return nil, nil, errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid message")
	}
	conf, err := authorize(ctx, db, h.auth, roleGovernance)
	if err != nil {
		return nil, nil, err
	}
	return msg, conf, nil
}

type timeOffsetHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *timeOffsetHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *timeOffsetHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.c.clock.SetTimeOffset(db, msg.Offset); err != nil {
		return nil, err
	}
	dividends.GetLogger(ctx).Info("time offset set", "offset", msg.Offset)
	return &dividends.DeliverResult{}, nil
}

func (h *timeOffsetHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*SetTimeOffsetMsg, error) {
	var msg SetTimeOffsetMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := authorize(ctx, db, h.auth, roleOwner); err != nil {
		return nil, err
	}
	return &msg, nil
}

type enableContinuousHandler struct {
	auth x.Authenticator
	c    *Coordinator
}

func (h *enableContinuousHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &dividends.CheckResult{}, nil
}

func (h *enableContinuousHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	if err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	if err := h.c.EnableContinuous(ctx, db); err != nil {
		return nil, err
	}
	return &dividends.DeliverResult{}, nil
}

func (h *enableContinuousHandler) validate(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) error {
	var msg EnableContinuousMsg
	if err := dividends.LoadMsg(tx, &msg); err != nil {
		return errors.Wrap(err, "load msg")
	}
	_, err := authorize(ctx, db, h.auth, roleGovernance)
	return err
}

// updateConfigurationHandler lets the owner patch the configuration. The
// treasury, both categories and the length of a day are fixed at genesis,
// because the claim records and the day counter depend on them. The batch
// size and the switchover day can only be changed by the governance.
type updateConfigurationHandler struct {
	c     *Coordinator
	patch gconf.UpdateConfigurationHandler
}

func (h *updateConfigurationHandler) Check(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.CheckResult, error) {
	if err := h.validate(db, tx); err != nil {
		return nil, err
	}
	return h.patch.Check(ctx, db, tx)
}

func (h *updateConfigurationHandler) Deliver(ctx dividends.Context, db dividends.KVStore, tx dividends.Tx) (*dividends.DeliverResult, error) {
	if err := h.validate(db, tx); err != nil {
		return nil, err
	}
	return h.patch.Deliver(ctx, db, tx)
}

func (h *updateConfigurationHandler) validate(db dividends.ReadOnlyKVStore, tx dividends.Tx) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "load msg")
	}
	m, ok := msg.(*UpdateConfigurationMsg)
	if !ok {
		return errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	conf, err := loadConf(db)
	if err != nil {
		return err
	}

	p := m.Patch
	var errs error
	if len(p.Treasury) != 0 && !p.Treasury.Equals(conf.Treasury) {
		errs = errors.AppendField(errs, "Treasury", errors.ErrState)
	}
	if p.HolderCategory != "" && p.HolderCategory != conf.HolderCategory {
		errs = errors.AppendField(errs, "HolderCategory", errors.ErrState)
	}
	if p.DaoCategory != "" && p.DaoCategory != conf.DaoCategory {
		errs = errors.AppendField(errs, "DaoCategory", errors.ErrState)
	}
	if p.SecondsPerDay != 0 && p.SecondsPerDay != conf.SecondsPerDay {
		errs = errors.AppendField(errs, "SecondsPerDay", errors.ErrState)
	}
	if p.BatchSize != 0 && p.BatchSize != conf.BatchSize {
		errs = errors.AppendField(errs, "BatchSize", errors.ErrUnauthorized)
	}
	if p.SwitchoverDay != 0 && p.SwitchoverDay != conf.SwitchoverDay {
		errs = errors.AppendField(errs, "SwitchoverDay", errors.ErrUnauthorized)
	}
	if !p.ContinuousActivation.IsZero() && p.ContinuousActivation != conf.ContinuousActivation {
		mode, err := h.c.acc.Mode(db)
		if err != nil {
			return err
		}
		if mode == continuous.ModeContinuous {
			errs = errors.AppendField(errs, "ContinuousActivation", continuous.ErrModeActive)
		}
	}
	return errs
}

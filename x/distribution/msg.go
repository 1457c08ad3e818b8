package distribution

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/x/allocation"
	amino "github.com/tendermint/go-amino"
)

const (
	pathClaimMsg                  = "distribution/claim"
	pathSettleForRecipientMsg     = "distribution/settle"
	pathRevenueReceivedMsg        = "distribution/revenue"
	pathStakeChangedMsg           = "distribution/stake_changed"
	pathSetCategoryPercentagesMsg = "distribution/set_percentages"
	pathAddCategoryMsg            = "distribution/add_category"
	pathRemoveCategoryMsg         = "distribution/remove_category"
	pathAddTokenMsg               = "distribution/add_token"
	pathRemoveTokenMsg            = "distribution/remove_token"
	pathSetBatchSizeMsg           = "distribution/set_batch_size"
	pathSetSwitchoverDayMsg       = "distribution/set_switchover_day"
	pathSetTimeOffsetMsg          = "distribution/set_time_offset"
	pathEnableContinuousMsg       = "distribution/enable_continuous"
	pathUpdateConfigurationMsg    = "distribution/update_configuration"
)

// NewMsg returns an empty message instance for given path.
func NewMsg(path string) (dividends.Msg, error) {
	switch path {
	case pathClaimMsg:
		return &ClaimMsg{}, nil
	case pathSettleForRecipientMsg:
		return &SettleForRecipientMsg{}, nil
	case pathRevenueReceivedMsg:
		return &RevenueReceivedMsg{}, nil
	case pathStakeChangedMsg:
		return &StakeChangedMsg{}, nil
	case pathSetCategoryPercentagesMsg:
		return &SetCategoryPercentagesMsg{}, nil
	case pathAddCategoryMsg:
		return &AddCategoryMsg{}, nil
	case pathRemoveCategoryMsg:
		return &RemoveCategoryMsg{}, nil
	case pathAddTokenMsg:
		return &AddTokenMsg{}, nil
	case pathRemoveTokenMsg:
		return &RemoveTokenMsg{}, nil
	case pathSetBatchSizeMsg:
		return &SetBatchSizeMsg{}, nil
	case pathSetSwitchoverDayMsg:
		return &SetSwitchoverDayMsg{}, nil
	case pathSetTimeOffsetMsg:
		return &SetTimeOffsetMsg{}, nil
	case pathEnableContinuousMsg:
		return &EnableContinuousMsg{}, nil
	case pathUpdateConfigurationMsg:
		return &UpdateConfigurationMsg{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrMsg, "unknown path %q", path)
	}
}

// ClaimMsg settles the dividends of the signer for days [Start, End).
// Zero bounds are derived from the batch size and the current day.
type ClaimMsg struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

func (ClaimMsg) Path() string { return pathClaimMsg }

func (msg *ClaimMsg) Validate() error {
	if msg.Start != 0 && msg.End != 0 && msg.Start >= msg.End {
		return errors.Field("Start", errors.ErrMsg, "start must be before end")
	}
	return nil
}

func (msg *ClaimMsg) Marshal() ([]byte, error)   { return amino.MarshalBinaryBare(msg) }
func (msg *ClaimMsg) Unmarshal(raw []byte) error { return amino.UnmarshalBinaryBare(raw, msg) }

// SettleForRecipientMsg settles the dividends of a recipient. Anyone can
// send it, the payout always goes to the recipient.
type SettleForRecipientMsg struct {
	Recipient dividends.Address `json:"recipient"`
	Start     uint64            `json:"start"`
	End       uint64            `json:"end"`
}

func (SettleForRecipientMsg) Path() string { return pathSettleForRecipientMsg }

func (msg *SettleForRecipientMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Recipient", msg.Recipient.Validate())
	if msg.Start != 0 && msg.End != 0 && msg.Start >= msg.End {
		errs = errors.AppendField(errs, "Start", errors.ErrMsg)
	}
	return errs
}

func (msg *SettleForRecipientMsg) Marshal() ([]byte, error) { return amino.MarshalBinaryBare(msg) }
func (msg *SettleForRecipientMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

// RevenueReceivedMsg reports revenue received by the protocol. Amount is
// the decimal representation of the amount in the smallest token unit.
type RevenueReceivedMsg struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

func (RevenueReceivedMsg) Path() string { return pathRevenueReceivedMsg }

func (msg *RevenueReceivedMsg) Validate() error {
	var errs error
	if !coin.IsToken(msg.Token) {
		errs = errors.AppendField(errs, "Token", errors.ErrInput)
	}
	if amount, err := coin.ParseAmount(msg.Amount); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

func (msg *RevenueReceivedMsg) Marshal() ([]byte, error) { return amino.MarshalBinaryBare(msg) }
func (msg *RevenueReceivedMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

// StakeChangedMsg must be sent right before the stake of an account
// changes. BalanceBefore is the stake the account held until now.
type StakeChangedMsg struct {
	Account       dividends.Address `json:"account"`
	BalanceBefore string            `json:"balance_before"`
}

func (StakeChangedMsg) Path() string { return pathStakeChangedMsg }

func (msg *StakeChangedMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Account", msg.Account.Validate())
	if _, err := coin.ParseAmount(msg.BalanceBefore); err != nil {
		errs = errors.AppendField(errs, "BalanceBefore", err)
	}
	return errs
}

func (msg *StakeChangedMsg) Marshal() ([]byte, error)   { return amino.MarshalBinaryBare(msg) }
func (msg *StakeChangedMsg) Unmarshal(raw []byte) error { return amino.UnmarshalBinaryBare(raw, msg) }

// SetCategoryPercentagesMsg sets the percentages of all categories from
// the current day on.
type SetCategoryPercentagesMsg struct {
	Percentages []allocation.CategoryPercentage `json:"percentages"`
}

func (SetCategoryPercentagesMsg) Path() string { return pathSetCategoryPercentagesMsg }

func (msg *SetCategoryPercentagesMsg) Validate() error {
	if len(msg.Percentages) == 0 {
		return errors.Field("Percentages", errors.ErrEmpty, "required")
	}
	return allocation.ValidatePercentages(msg.Percentages)
}

func (msg *SetCategoryPercentagesMsg) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(msg)
}

func (msg *SetCategoryPercentagesMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

// AddCategoryMsg registers a new category with a zero percentage.
type AddCategoryMsg struct {
	Name string `json:"name"`
}

func (AddCategoryMsg) Path() string { return pathAddCategoryMsg }

func (msg *AddCategoryMsg) Validate() error {
	if !allocation.IsCategoryName(msg.Name) {
		return errors.Field("Name", allocation.ErrCategory, "invalid name %q", msg.Name)
	}
	return nil
}

func (msg *AddCategoryMsg) Marshal() ([]byte, error)   { return amino.MarshalBinaryBare(msg) }
func (msg *AddCategoryMsg) Unmarshal(raw []byte) error { return amino.UnmarshalBinaryBare(raw, msg) }

// RemoveCategoryMsg deletes a category whose current percentage is zero.
type RemoveCategoryMsg struct {
	Name string `json:"name"`
}

func (RemoveCategoryMsg) Path() string { return pathRemoveCategoryMsg }

func (msg *RemoveCategoryMsg) Validate() error {
	if !allocation.IsCategoryName(msg.Name) {
		return errors.Field("Name", allocation.ErrCategory, "invalid name %q", msg.Name)
	}
	return nil
}

func (msg *RemoveCategoryMsg) Marshal() ([]byte, error) { return amino.MarshalBinaryBare(msg) }
func (msg *RemoveCategoryMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

// AddTokenMsg adds a token to the accepted token list.
type AddTokenMsg struct {
	Token string `json:"token"`
}

func (AddTokenMsg) Path() string { return pathAddTokenMsg }

func (msg *AddTokenMsg) Validate() error {
	if !coin.IsToken(msg.Token) {
		return errors.Field("Token", errors.ErrInput, "invalid token %q", msg.Token)
	}
	return nil
}

func (msg *AddTokenMsg) Marshal() ([]byte, error)   { return amino.MarshalBinaryBare(msg) }
func (msg *AddTokenMsg) Unmarshal(raw []byte) error { return amino.UnmarshalBinaryBare(raw, msg) }

// RemoveTokenMsg removes a token from the accepted token list.
type RemoveTokenMsg struct {
	Token string `json:"token"`
}

func (RemoveTokenMsg) Path() string { return pathRemoveTokenMsg }

func (msg *RemoveTokenMsg) Validate() error {
	if !coin.IsToken(msg.Token) {
		return errors.Field("Token", errors.ErrInput, "invalid token %q", msg.Token)
	}
	return nil
}

func (msg *RemoveTokenMsg) Marshal() ([]byte, error)   { return amino.MarshalBinaryBare(msg) }
func (msg *RemoveTokenMsg) Unmarshal(raw []byte) error { return amino.UnmarshalBinaryBare(raw, msg) }

type SetBatchSizeMsg struct {
	BatchSize uint64 `json:"batch_size"`
}

func (SetBatchSizeMsg) Path() string { return pathSetBatchSizeMsg }

func (msg *SetBatchSizeMsg) Validate() error {
	if msg.BatchSize == 0 {
		return errors.Field("BatchSize", errors.ErrEmpty, "required")
	}
	return nil
}

func (msg *SetBatchSizeMsg) Marshal() ([]byte, error)   { return amino.MarshalBinaryBare(msg) }
func (msg *SetBatchSizeMsg) Unmarshal(raw []byte) error { return amino.UnmarshalBinaryBare(raw, msg) }

// SetSwitchoverDayMsg sets the first day liquidity pool stake stops
// counting. The day must not be before the current day.
type SetSwitchoverDayMsg struct {
	Day uint64 `json:"day"`
}

func (SetSwitchoverDayMsg) Path() string { return pathSetSwitchoverDayMsg }

func (msg *SetSwitchoverDayMsg) Validate() error {
	if msg.Day == 0 {
		return errors.Field("Day", errors.ErrEmpty, "required")
	}
	return nil
}

func (msg *SetSwitchoverDayMsg) Marshal() ([]byte, error) { return amino.MarshalBinaryBare(msg) }
func (msg *SetSwitchoverDayMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

// SetTimeOffsetMsg overrides the unix time of the beginning of day zero.
type SetTimeOffsetMsg struct {
	Offset int64 `json:"offset"`
}

func (SetTimeOffsetMsg) Path() string { return pathSetTimeOffsetMsg }

func (msg *SetTimeOffsetMsg) Validate() error {
	if msg.Offset < 0 {
		return errors.Field("Offset", errors.ErrInput, "must not be negative")
	}
	return nil
}

func (msg *SetTimeOffsetMsg) Marshal() ([]byte, error)   { return amino.MarshalBinaryBare(msg) }
func (msg *SetTimeOffsetMsg) Unmarshal(raw []byte) error { return amino.UnmarshalBinaryBare(raw, msg) }

// EnableContinuousMsg switches to the continuous accrual mode.
type EnableContinuousMsg struct{}

func (EnableContinuousMsg) Path() string     { return pathEnableContinuousMsg }
func (*EnableContinuousMsg) Validate() error { return nil }

func (msg *EnableContinuousMsg) Marshal() ([]byte, error) { return amino.MarshalBinaryBare(msg) }
func (msg *EnableContinuousMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

// UpdateConfigurationMsg patches the configuration with all non zero
// fields of Patch.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string { return pathUpdateConfigurationMsg }

func (msg *UpdateConfigurationMsg) Validate() error {
	if msg.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "required")
	}
	return nil
}

func (msg *UpdateConfigurationMsg) Marshal() ([]byte, error) { return amino.MarshalBinaryBare(msg) }
func (msg *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, msg)
}

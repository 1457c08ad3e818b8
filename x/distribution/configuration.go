package distribution

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/gconf"
	"github.com/iov-one/dividends/x/allocation"
	"github.com/iov-one/dividends/x/snapshot"
	amino "github.com/tendermint/go-amino"
)

const packageName = "distribution"

// DefaultSecondsPerDay is the length of a day when not configured.
const DefaultSecondsPerDay = 86400

// Configuration is the global configuration of the dividend distribution.
type Configuration struct {
	// Owner is the admin allowed to change the configuration, categories
	// and accepted tokens.
	Owner dividends.Address `json:"owner"`
	// Governance may change the batch size, the switchover day, the
	// category percentages and enable the continuous mode.
	Governance dividends.Address `json:"governance"`
	// Notifier reports received revenue and stake changes.
	Notifier dividends.Address `json:"notifier"`
	// Treasury receives the DAO category share.
	Treasury       dividends.Address `json:"treasury"`
	HolderCategory string            `json:"holder_category"`
	DaoCategory    string            `json:"dao_category"`
	// BatchSize is the maximum number of days settled by a single claim.
	BatchSize uint64 `json:"batch_size"`
	// SwitchoverDay is the first day liquidity pool stake does not count.
	// Zero means it is not set.
	SwitchoverDay uint64   `json:"switchover_day"`
	EligiblePools []uint64 `json:"eligible_pools"`
	SecondsPerDay int64    `json:"seconds_per_day"`
	// ContinuousActivation is used as the first update time of the
	// continuous index. When zero, the block time of enabling is used.
	ContinuousActivation dividends.UnixTime `json:"continuous_activation"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() dividends.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "Governance", c.Governance.Validate())
	errs = errors.AppendField(errs, "Notifier", c.Notifier.Validate())
	errs = errors.AppendField(errs, "Treasury", c.Treasury.Validate())
	if !allocation.IsCategoryName(c.HolderCategory) {
		errs = errors.AppendField(errs, "HolderCategory", allocation.ErrCategory)
	}
	if !allocation.IsCategoryName(c.DaoCategory) {
		errs = errors.AppendField(errs, "DaoCategory", allocation.ErrCategory)
	}
	if c.HolderCategory == c.DaoCategory {
		errs = errors.AppendField(errs, "DaoCategory", errors.ErrDuplicate)
	}
	if c.BatchSize == 0 {
		errs = errors.AppendField(errs, "BatchSize", errors.ErrEmpty)
	}
	if c.SecondsPerDay <= 0 {
		errs = errors.AppendField(errs, "SecondsPerDay", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "ContinuousActivation", c.ContinuousActivation.Validate())
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, c)
}

// SnapshotParams returns the values used by the snapshot engine.
func (c *Configuration) SnapshotParams() snapshot.Params {
	return snapshot.Params{
		HolderCategory: c.HolderCategory,
		DaoCategory:    c.DaoCategory,
		Treasury:       c.Treasury,
		SwitchoverDay:  c.SwitchoverDay,
		Pools:          c.EligiblePools,
	}
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

package distribution

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	"github.com/iov-one/dividends/gconf"
	"github.com/iov-one/dividends/x/allocation"
	"github.com/iov-one/dividends/x/feeledger"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ dividends.Initializer = (*Initializer)(nil)

// FromGenesis stores the configuration, the categories with their base
// percentages and the accepted tokens. The native token is always
// accepted.
func (*Initializer) FromGenesis(opts dividends.Options, db dividends.KVStore) error {
	conf := Configuration{SecondsPerDay: DefaultSecondsPerDay}
	if err := gconf.InitConfig(db, opts, packageName, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	var genesis struct {
		Categories []struct {
			Name       string `json:"name"`
			Percentage string `json:"percentage"`
		} `json:"categories"`
		Tokens []string `json:"tokens"`
	}
	if err := opts.ReadOptions(packageName, &genesis); err != nil {
		return errors.Wrap(err, "cannot load distribution")
	}

	pcts := make([]allocation.CategoryPercentage, 0, len(genesis.Categories))
	for i, c := range genesis.Categories {
		p, err := fixed.ParsePercent(c.Percentage)
		if err != nil {
			return errors.Wrapf(err, "category #%d", i)
		}
		pcts = append(pcts, allocation.CategoryPercentage{Category: c.Name, Percentage: p})
	}
	if err := allocation.ValidatePercentages(pcts); err != nil {
		return errors.Wrap(err, "genesis categories")
	}

	history := allocation.NewHistory()
	for _, p := range pcts {
		if err := history.AddCategory(db, p.Category, p.Percentage); err != nil {
			return errors.Wrapf(err, "category %q", p.Category)
		}
	}
	for _, name := range []string{conf.HolderCategory, conf.DaoCategory} {
		if _, err := history.Category(db, name); err != nil {
			return errors.Wrap(err, "configured category")
		}
	}

	tokens := feeledger.NewTokens()
	if err := tokens.Add(db, coin.NativeToken); err != nil {
		return errors.Wrap(err, "native token")
	}
	for _, t := range genesis.Tokens {
		if t == coin.NativeToken {
			continue
		}
		if err := tokens.Add(db, t); err != nil {
			return errors.Wrapf(err, "token %q", t)
		}
	}
	return nil
}

package divd

import (
	"encoding/json"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/app"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/x/distribution"
)

// Signer returns the condition of a named signer. Scripts refer to signers
// by name and the genesis file by the address of that condition.
func Signer(name string) dividends.Condition {
	return dividends.NewCondition(Name, "signer", []byte(name))
}

// GenInitOptions returns a genesis for a new chain. The configuration roles
// are given to the signers named after them and the revenue is split
// between holders and the dao.
func GenInitOptions(chainID string) (*app.Genesis, error) {
	if !dividends.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	conf := distribution.Configuration{
		Owner:          Signer("owner").Address(),
		Governance:     Signer("governance").Address(),
		Notifier:       Signer("notifier").Address(),
		Treasury:       Signer("treasury").Address(),
		HolderCategory: "holders",
		DaoCategory:    "dao",
		BatchSize:      100,
		SecondsPerDay:  distribution.DefaultSecondsPerDay,
	}
	rawConf, err := json.Marshal(map[string]interface{}{"distribution": conf})
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &app.Genesis{
		ChainID: chainID,
		AppState: dividends.Options{
			"conf": rawConf,
			"distribution": json.RawMessage(`{
				"categories": [
					{"name": "holders", "percentage": "60%"},
					{"name": "dao", "percentage": "40%"}
				],
				"tokens": []
			}`),
		},
	}, nil
}

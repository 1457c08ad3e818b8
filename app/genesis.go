package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/dividends"
	"github.com/pkg/errors"
)

// Genesis file format. AppState is passed to the initializers of all
// extensions.
type Genesis struct {
	ChainID  string            `json:"chain_id"`
	AppState dividends.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	bytes, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(err, "loading genesis file")
	}
	if err := json.Unmarshal(bytes, &gen); err != nil {
		return gen, errors.Wrap(err, "unmarshaling genesis file")
	}
	return gen, nil
}

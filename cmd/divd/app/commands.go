package divd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/dividends/app"
	"github.com/iov-one/dividends/x/oracle"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagChainID = "chain-id"
	flagForce   = "force"
	flagGenesis = "genesis"
	flagOracle  = "oracle"
	flagScript  = "script"
	flagDebug   = "debug"
	flagPath    = "path"
	flagData    = "data"
)

// OracleFile is the content of the oracle file: the time offset and the
// balance histories.
type OracleFile struct {
	TimeOffset int64 `json:"time_offset"`
	oracle.Document
}

// LoadOracles reads the oracle file. A missing file results in empty
// oracles.
func LoadOracles(path string) (Oracles, error) {
	raw, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return Oracles{}, nil
	}
	if err != nil {
		return Oracles{}, errors.Wrap(err, "loading oracle file")
	}
	var f OracleFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return Oracles{}, errors.Wrap(err, "unmarshaling oracle file")
	}
	stake, pools, err := oracle.Load(f.Document)
	if err != nil {
		return Oracles{}, err
	}
	return Oracles{Stake: stake, Pools: pools, TimeOffset: f.TimeOffset}, nil
}

// InitCmd writes a new genesis file to the home directory.
func InitCmd(logger log.Logger, home string, args []string) error {
	var chainID string
	var force bool
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.StringVar(&chainID, flagChainID, "divd-chain", "chain id of the new chain")
	fs.BoolVar(&force, flagForce, false, "overwrite an existing genesis file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	genFile := filepath.Join(home, "genesis.json")
	if _, err := os.Stat(genFile); err == nil && !force {
		return errors.Errorf("genesis file %s already exists", genFile)
	}

	gen, err := GenInitOptions(chainID)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling genesis")
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return errors.Wrap(err, "creating home directory")
	}
	if err := ioutil.WriteFile(genFile, raw, 0644); err != nil {
		return errors.Wrap(err, "writing genesis file")
	}
	logger.Info("Generated genesis file", "path", genFile, "chain_id", chainID)
	return nil
}

// ReplayCmd replays a script of blocks on top of the stored state. The
// chain is initialized from the genesis file on the first run.
func ReplayCmd(logger log.Logger, home string, args []string, out io.Writer) error {
	var genFile, oracleFile, scriptFile string
	var debug bool
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.StringVar(&genFile, flagGenesis, filepath.Join(home, "genesis.json"), "genesis file")
	fs.StringVar(&oracleFile, flagOracle, filepath.Join(home, "oracle.json"), "oracle file")
	fs.StringVar(&scriptFile, flagScript, "", "script of blocks to replay")
	fs.BoolVar(&debug, flagDebug, false, "call stack returned on error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if scriptFile == "" {
		return errors.New("script file required")
	}

	script, err := LoadScript(scriptFile)
	if err != nil {
		return err
	}
	if len(script.Blocks) == 0 {
		return errors.New("script has no blocks")
	}
	oracles, err := LoadOracles(oracleFile)
	if err != nil {
		return err
	}

	clock := clockwork.NewFakeClockAt(script.Blocks[0].Time.Time())
	a, err := GenerateApp(home, logger, debug, oracles, clock)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.GetChainID() == "" {
		gen, err := app.LoadGenesis(genFile)
		if err != nil {
			return err
		}
		// genesis state is committed with the first block
		if err := a.InitChain(gen.ChainID, gen.AppState); err != nil {
			return err
		}
		logger.Info("Initialized chain", "chain_id", gen.ChainID)
	}

	results, err := Replay(a, clock, script)
	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "writing result")
		}
	}
	return err
}

// QueryCmd queries the committed state and prints every returned key value
// pair on its own line.
func QueryCmd(logger log.Logger, home string, args []string, out io.Writer) error {
	var oracleFile, path, data string
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.StringVar(&oracleFile, flagOracle, filepath.Join(home, "oracle.json"), "oracle file")
	fs.StringVar(&path, flagPath, "/day", "query path")
	fs.StringVar(&data, flagData, "", "query data")
	if err := fs.Parse(args); err != nil {
		return err
	}

	oracles, err := LoadOracles(oracleFile)
	if err != nil {
		return err
	}
	a, err := GenerateApp(home, logger, false, oracles, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer a.Close()
	res, err := a.Query(path, []byte(data))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "height: %d\n", res.Height)
	for _, m := range res.Models {
		fmt.Fprintf(out, "%s: %s\n", m.Key, m.Value)
	}
	return nil
}

package distribution

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/x/allocation"
)

// RegisterQuery registers the read only views of the distribution state.
//
//	/percentages  <day>                percentage of every category
//	/claimed      <address>/<day>      "true" or "false"
//	/fees         <day>                revenue per token
//	/config                            configuration as JSON
//	/day                               current day
//	/preview      <address>[/<start>/<end>]  owed amount per token
func RegisterQuery(qr dividends.QueryRouter, c *Coordinator) {
	qr.Register("/percentages", dividends.QueryHandlerFunc(c.queryPercentages))
	qr.Register("/claimed", dividends.QueryHandlerFunc(c.queryClaimed))
	qr.Register("/fees", dividends.QueryHandlerFunc(c.queryFees))
	qr.Register("/config", dividends.QueryHandlerFunc(queryConfig))
	qr.Register("/day", dividends.QueryHandlerFunc(c.queryDay))
	qr.Register("/preview", dividends.QueryHandlerFunc(c.queryPreview))
}

func parseDay(raw string) (uint64, error) {
	day, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "invalid day %q", raw)
	}
	return day, nil
}

func (c *Coordinator) queryPercentages(db dividends.ReadOnlyKVStore, data []byte) ([]dividends.Model, error) {
	day, err := parseDay(string(data))
	if err != nil {
		return nil, err
	}
	pcts, err := c.history.PercentagesAt(db, day)
	if err != nil {
		return nil, err
	}
	res := make([]dividends.Model, len(pcts))
	for i, p := range pcts {
		res[i] = dividends.Pair([]byte(p.Category), []byte(strconv.FormatUint(p.Percentage, 10)))
	}
	return res, nil
}

func (c *Coordinator) queryClaimed(db dividends.ReadOnlyKVStore, data []byte) ([]dividends.Model, error) {
	parts := strings.Split(string(data), "/")
	if len(parts) != 2 {
		return nil, errors.Wrap(errors.ErrInput, "want <address>/<day>")
	}
	addr, err := dividends.ParseAddress(parts[0])
	if err != nil {
		return nil, err
	}
	day, err := parseDay(parts[1])
	if err != nil {
		return nil, err
	}
	ok, err := c.claimed.IsClaimed(db, addr, day)
	if err != nil {
		return nil, err
	}
	return []dividends.Model{dividends.Pair(data, []byte(strconv.FormatBool(ok)))}, nil
}

func coinModels(cs coin.Coins) []dividends.Model {
	res := make([]dividends.Model, len(cs))
	for i, c := range cs {
		res[i] = dividends.Pair([]byte(c.Token), []byte(coin.FormatAmount(c.Amount)))
	}
	return res
}

func (c *Coordinator) queryFees(db dividends.ReadOnlyKVStore, data []byte) ([]dividends.Model, error) {
	day, err := parseDay(string(data))
	if err != nil {
		return nil, err
	}
	fees, err := c.ledger.FeesForDay(db, day)
	if err != nil {
		return nil, err
	}
	return coinModels(fees), nil
}

func queryConfig(db dividends.ReadOnlyKVStore, _ []byte) ([]dividends.Model, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(conf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return []dividends.Model{dividends.Pair([]byte(packageName), raw)}, nil
}

func (c *Coordinator) queryDay(db dividends.ReadOnlyKVStore, _ []byte) ([]dividends.Model, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	day, err := c.today(db, conf)
	if err != nil {
		return nil, err
	}
	return []dividends.Model{dividends.Pair([]byte("day"), []byte(strconv.FormatUint(day, 10)))}, nil
}

func (c *Coordinator) queryPreview(db dividends.ReadOnlyKVStore, data []byte) ([]dividends.Model, error) {
	parts := strings.Split(string(data), "/")
	if len(parts) != 1 && len(parts) != 3 {
		return nil, errors.Wrap(errors.ErrInput, "want <address>[/<start>/<end>]")
	}
	addr, err := dividends.ParseAddress(parts[0])
	if err != nil {
		return nil, err
	}
	var start, end uint64
	if len(parts) == 3 {
		if start, err = parseDay(parts[1]); err != nil {
			return nil, err
		}
		if end, err = parseDay(parts[2]); err != nil {
			return nil, err
		}
	}
	owed, err := c.Preview(db, addr, start, end)
	if err != nil {
		return nil, err
	}
	return coinModels(owed), nil
}

// Snapshots returns the snapshot vector of a category.
func (c *Coordinator) Snapshots(db dividends.ReadOnlyKVStore, category string) ([]allocation.Snapshot, error) {
	return c.history.Snapshots(db, category)
}

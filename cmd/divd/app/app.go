/*
Package divd links together all the various components
to construct the divd application.
*/
package divd

import (
	"context"
	"io"
	"path/filepath"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/app"
	"github.com/iov-one/dividends/store/iavl"
	"github.com/iov-one/dividends/x"
	"github.com/iov-one/dividends/x/distribution"
	"github.com/iov-one/dividends/x/oracle"
	"github.com/jonboulle/clockwork"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is the application name reported by Info.
const Name = "divd"

// Oracles are the external data sources the distribution consults.
type Oracles struct {
	Stake *oracle.Stake
	Pools *oracle.Pools
	// TimeOffset is the unix time of the beginning of day zero.
	TimeOffset int64
}

// Application is the divd application together with the components tools
// need direct access to.
type Application struct {
	*app.BaseApp
	Coordinator *distribution.Coordinator
	Bank        *Bank
	Router      *app.Router

	closer io.Closer
}

// Close releases the database of an application created by GenerateApp.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Authenticator returns the authentication used by all handlers. Signers
// are declared by the caller delivering a message.
func Authenticator() x.Authenticator {
	return x.SignerAuth{}
}

// Router returns a router with the distribution handlers registered.
func Router(authFn x.Authenticator, c *distribution.Coordinator) *app.Router {
	r := app.NewRouter()
	distribution.RegisterRoutes(r, authFn, c)
	return r
}

// QueryRouter returns a default query router, allowing queries of the
// distribution state and of the payouts.
func QueryRouter(c *distribution.Coordinator, bank *Bank) dividends.QueryRouter {
	r := dividends.NewQueryRouter()
	r.RegisterAll(
		func(qr dividends.QueryRouter) { distribution.RegisterQuery(qr, c) },
		bank.RegisterQuery,
	)
	return r
}

// Initializers returns all the initializers of the extensions used.
func Initializers() dividends.Initializer {
	return dividends.ChainInitializers(
		&distribution.Initializer{},
	)
}

// GenerateApp is used to create a stub for the server with a persistent
// store in the data directory of home.
func GenerateApp(home string, logger log.Logger, debug bool, oracles Oracles, clock clockwork.Clock) (*Application, error) {
	dbPath := filepath.Join(home, "data")
	db, err := iavl.NewCommitStore(dbPath, Name)
	if err != nil {
		return nil, err
	}
	a := Build(db, logger, debug, oracles, clock)
	a.closer = db
	return a, nil
}

// Build wires the application on top of given store.
func Build(db dividends.CommitKVStore, logger log.Logger, debug bool, oracles Oracles, clock clockwork.Clock) *Application {
	if oracles.Stake == nil {
		oracles.Stake = oracle.NewStake()
	}
	if oracles.Pools == nil {
		oracles.Pools = oracle.NewPools()
	}
	timeOracle := &oracle.Time{
		Clock:         clock,
		Offset:        oracles.TimeOffset,
		SecondsPerDay: distribution.DefaultSecondsPerDay,
	}

	bank := NewBank()
	c := distribution.NewCoordinator(oracles.Stake, oracles.Pools, timeOracle, bank).WithClock(clock)
	r := Router(Authenticator(), c)

	store := app.NewStoreApp(Name, db, QueryRouter(c, bank), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger)
	return &Application{
		BaseApp:     app.NewBaseApp(store, r, clock, debug),
		Coordinator: c,
		Bank:        bank,
		Router:      r,
	}
}

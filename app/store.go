package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed to perform queries
// and to initialize the state from the genesis.
//
// It should be embedded in another struct that processes messages.
// Failures of steps that do not take user input, like InitChain, Commit
// or BeginBlock, cannot be handled gracefully and are returned to the
// caller that must stop the application.
type StoreApp struct {
	logger log.Logger

	// name is what is returned from Info
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// Code to initialize from a genesis file
	initializer dividends.Initializer

	// How to handle queries
	queryRouter dividends.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	// baseContext contains context info that is valid for
	// lifetime of this app (eg. chainID)
	baseContext dividends.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height, time), reset on BeginBlock
	blockContext dividends.Context
}

// NewStoreApp initializes this app into a ready state with some defaults
//
// panics if unable to properly load the state from the given store
func NewStoreApp(name string, store dividends.CommitKVStore,
	queryRouter dividends.QueryRouter, baseContext dividends.Context) *StoreApp {
	s := &StoreApp{
		name: name,
		// note: panics if trouble initializing from store
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	s.chainID = mustLoadChainID(s.DeliverStore())
	if s.chainID != "" {
		s.baseContext = dividends.WithChainID(s.baseContext, s.chainID)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.blockContext = dividends.WithHeight(s.baseContext, info.Version)
	return s
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init dividends.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization
//
// also sets baseContext logger
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = dividends.WithLogger(s.baseContext, logger)
	if s.blockContext != nil {
		s.blockContext = dividends.WithLogger(s.blockContext, logger)
	}
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the block context for public use
func (s *StoreApp) BlockContext() dividends.Context {
	return s.blockContext
}

// DeliverStore returns the current deliver cache for methods
func (s *StoreApp) DeliverStore() dividends.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current check cache for methods
func (s *StoreApp) CheckStore() dividends.CacheableKVStore {
	return s.store.CheckStore()
}

// Info returns the name of the application and the height and hash of the
// last commit.
func (s *StoreApp) Info() (string, dividends.CommitID, error) {
	info, err := s.store.CommitInfo()
	if err != nil {
		return s.name, info, err
	}
	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))
	return s.name, info, nil
}

// InitChain stores the chain id and initializes all extensions from the
// application state. It is called once, the first time the chain starts,
// and not on restarts.
func (s *StoreApp) InitChain(chainID string, appState dividends.Options) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %s", s.chainID)
	}
	if len(appState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app state not set in genesis, please initialize application before launching")
	}
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = dividends.WithChainID(s.baseContext, chainID)
	s.blockContext = dividends.WithChainID(s.blockContext, chainID)

	if s.initializer == nil {
		return nil
	}
	if err := s.initializer.FromGenesis(appState, s.DeliverStore()); err != nil {
		return errors.Wrap(err, "genesis")
	}
	return nil
}

// BeginBlock sets up the block context with given height and time.
func (s *StoreApp) BeginBlock(height int64, now time.Time) {
	ctx := dividends.WithHeight(s.baseContext, height)
	ctx = dividends.WithBlockTime(ctx, now)
	s.blockContext = ctx
}

// Commit flushes the deliver state to disk and returns the new commit
// info.
func (s *StoreApp) Commit() (dividends.CommitID, error) {
	commitID, err := s.store.Commit()
	if err != nil {
		return commitID, err
	}
	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return commitID, nil
}

// QueryResult is the response to a query.
type QueryResult struct {
	// Height is the version of the state the query was run against.
	Height int64
	Models []dividends.Model
}

// Query gets data from the committed state. Path selects the query
// handler, data is interpreted by that handler. Path may be followed by a
// "?modifier" that is stripped before the handler lookup.
func (s *StoreApp) Query(path string, data []byte) (*QueryResult, error) {
	path, _ = splitPath(path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return nil, errors.Wrapf(ErrNoSuchPath, "query %q", path)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	db := s.store.committed.CacheWrap()
	defer db.Discard()

	models, err := qh.Query(db, data)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Height: info.Version, Models: models}, nil
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}

package app

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
)

// CommitStore keeps the ledger state of a block. Deliver and check run on
// separate caches over the last committed version so that a rejected
// claim or settlement leaves nothing behind.
type CommitStore struct {
	committed dividends.CommitKVStore
	deliver   dividends.KVCacheWrap
	check     dividends.KVCacheWrap
}

// NewCommitStore panics if the latest version cannot be loaded.
func NewCommitStore(store dividends.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

func (cs *CommitStore) CommitInfo() (dividends.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists every delivered transaction of the block and starts both
// caches over from the new version. Pending checks are dropped.
func (cs *CommitStore) Commit() (dividends.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return dividends.CommitID{}, err
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

func (cs *CommitStore) CheckStore() dividends.CacheableKVStore {
	return cs.check
}

func (cs *CommitStore) DeliverStore() dividends.CacheableKVStore {
	return cs.deliver
}

// The _dv: prefix is reserved for data of the application itself, it never
// collides with an extension bucket.
const chainIDKey = "_dv:chainID"

// mustLoadChainID returns an empty string before genesis.
func mustLoadChainID(kv dividends.ReadOnlyKVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID is called once, from genesis.
func saveChainID(kv dividends.KVStore, chainID string) error {
	if !dividends.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}

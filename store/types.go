/*
Package store provides the key value stores the application runs on: an
in-memory btree store, cache wraps that keep uncommitted writes of a single
message, and the shared test suite every store implementation must pass.
*/
package store

import "github.com/iov-one/dividends"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = dividends.ReadOnlyKVStore
type SetDeleter = dividends.SetDeleter
type KVStore = dividends.KVStore
type Iterator = dividends.Iterator
type CacheableKVStore = dividends.CacheableKVStore
type KVCacheWrap = dividends.KVCacheWrap
type CommitKVStore = dividends.CommitKVStore
type CommitID = dividends.CommitID
type Model = dividends.Model

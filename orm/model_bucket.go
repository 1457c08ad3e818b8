package orm

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
)

// schemaVersion prefixes every stored model. It also guarantees that a
// model with all default fields is never stored as an empty value.
const schemaVersion byte = 1

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	dividends.Persistent
	Validate() error
}

// ModelBucket stores models of a single type under a common key prefix.
type ModelBucket struct {
	prefix []byte
}

// NewModelBucket returns a bucket that keeps its models under the
// "<name>:" key prefix.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	return ModelBucket{prefix: []byte(name + ":")}
}

// DBKey returns the full database key of given model key.
func (b ModelBucket) DBKey(key []byte) []byte {
	return append(append([]byte{}, b.prefix...), key...)
}

// One query the database for a single model instance. Lookup is done
// by the primary key. Result is loaded into given destination model.
// This method returns ErrNotFound if the entity does not exist in the
// database.
func (b ModelBucket) One(db dividends.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T %q not in the store", dest, key)
	}
	return Decode(raw, dest)
}

// Has returns true if a model with given key exists.
func (b ModelBucket) Has(db dividends.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put saves given model in the database. The model is validated first.
func (b ModelBucket) Put(db dividends.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", m, err)
	}
	raw = append([]byte{schemaVersion}, raw...)
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (b ModelBucket) Delete(db dividends.KVStore, key []byte) error {
	ok, err := b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%q not in the store", key)
	}
	return db.Delete(b.DBKey(key))
}

// Each calls fn with the key (without the bucket prefix) and the raw value
// of every model held by this bucket, in key order. Use Decode to load the
// raw value into a model.
func (b ModelBucket) Each(db dividends.ReadOnlyKVStore, fn func(key, raw []byte) error) error {
	return b.EachPrefix(db, nil, fn)
}

// EachPrefix works like Each, but only visits keys starting with given
// prefix.
func (b ModelBucket) EachPrefix(db dividends.ReadOnlyKVStore, prefix []byte, fn func(key, raw []byte) error) error {
	start := b.DBKey(prefix)
	return dividends.Each(db, start, dividends.PrefixEnd(start), func(key, value []byte) error {
		return fn(key[len(b.prefix):], value)
	})
}

// Decode loads a raw value passed to an Each callback into given model.
func Decode(raw []byte, dest Model) error {
	if len(raw) == 0 || raw[0] != schemaVersion {
		return errors.Wrapf(errors.ErrModel, "unknown schema of %T", dest)
	}
	if err := dest.Unmarshal(raw[1:]); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

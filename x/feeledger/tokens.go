package feeledger

import (
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/orm"
)

const bucketName = "fee"

var tokensKey = []byte("tokens")

// Tokens is the accepted token allow list.
type Tokens struct {
	bucket orm.ModelBucket
}

func NewTokens() *Tokens {
	return &Tokens{bucket: orm.NewModelBucket(bucketName)}
}

func (t *Tokens) load(db dividends.ReadOnlyKVStore) (*TokenList, error) {
	var l TokenList
	switch err := t.bucket.One(db, tokensKey, &l); {
	case err == nil:
		return &l, nil
	case errors.ErrNotFound.Is(err):
		return &TokenList{}, nil
	default:
		return nil, err
	}
}

// List returns all accepted tokens in the order they were added.
func (t *Tokens) List(db dividends.ReadOnlyKVStore) ([]string, error) {
	l, err := t.load(db)
	if err != nil {
		return nil, err
	}
	return l.Tokens, nil
}

// IsAccepted returns true if revenue in given token can be recorded.
func (t *Tokens) IsAccepted(db dividends.ReadOnlyKVStore, token string) (bool, error) {
	l, err := t.load(db)
	if err != nil {
		return false, err
	}
	return l.index(token) >= 0, nil
}

// Add appends a token to the allow list.
func (t *Tokens) Add(db dividends.KVStore, token string) error {
	if !coin.IsToken(token) {
		return errors.Wrapf(errors.ErrInput, "invalid token %q", token)
	}
	l, err := t.load(db)
	if err != nil {
		return err
	}
	if l.index(token) >= 0 {
		return errors.Wrapf(errors.ErrDuplicate, "token %q", token)
	}
	l.Tokens = append(l.Tokens, token)
	return t.bucket.Put(db, tokensKey, l)
}

// Remove drops a token from the allow list. Revenue already recorded for
// that token stays in the ledger. The native token cannot be removed.
func (t *Tokens) Remove(db dividends.KVStore, token string) error {
	if token == coin.NativeToken {
		return errors.Wrap(errors.ErrInput, "native token cannot be removed")
	}
	l, err := t.load(db)
	if err != nil {
		return err
	}
	i := l.index(token)
	if i < 0 {
		return errors.Wrapf(errors.ErrNotFound, "token %q", token)
	}
	l.Tokens = append(l.Tokens[:i], l.Tokens[i+1:]...)
	return t.bucket.Put(db, tokensKey, l)
}

package claims

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/coin"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/orm"
)

const wordBits = 256

// Bitmap is the per account record of settled days.
type Bitmap struct{}

func NewBitmap() *Bitmap {
	return &Bitmap{}
}

func wordKey(account dividends.Address, word uint64) []byte {
	key := make([]byte, 0, 6+len(account)+1+8)
	key = append(key, "claim:"...)
	key = append(key, account...)
	key = append(key, ':')
	return append(key, orm.EncodeSequence(word)...)
}

func (b *Bitmap) word(db dividends.ReadOnlyKVStore, account dividends.Address, idx uint64) (*uint256.Int, error) {
	raw, err := db.Get(wordKey(account, idx))
	if err != nil {
		return nil, errors.Wrap(err, "cannot read claim word")
	}
	w, err := coin.DecodeAmount(raw)
	if err != nil {
		return nil, errors.Wrap(err, "claim word")
	}
	return w, nil
}

func bit(day uint64) *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(1), uint(day%wordBits))
}

// IsClaimed returns true if given day was settled for the account.
func (b *Bitmap) IsClaimed(db dividends.ReadOnlyKVStore, account dividends.Address, day uint64) (bool, error) {
	w, err := b.word(db, account, day/wordBits)
	if err != nil {
		return false, err
	}
	return !new(uint256.Int).And(w, bit(day)).IsZero(), nil
}

// MarkClaimed records given day as settled for the account. Marking a day
// twice has no effect.
func (b *Bitmap) MarkClaimed(db dividends.KVStore, account dividends.Address, day uint64) error {
	if err := account.Validate(); err != nil {
		return errors.Wrap(err, "account")
	}
	idx := day / wordBits
	w, err := b.word(db, account, idx)
	if err != nil {
		return err
	}
	w.Or(w, bit(day))
	if err := db.Set(wordKey(account, idx), coin.EncodeAmount(w)); err != nil {
		return errors.Wrap(err, "cannot save claim word")
	}
	return nil
}

// ClaimedDays returns the settled days of an account within [start, end).
func (b *Bitmap) ClaimedDays(db dividends.ReadOnlyKVStore, account dividends.Address, start, end uint64) ([]uint64, error) {
	var (
		days []uint64
		w    *uint256.Int
		idx  uint64
	)
	for day := start; day < end; day++ {
		if w == nil || day/wordBits != idx {
			idx = day / wordBits
			var err error
			if w, err = b.word(db, account, idx); err != nil {
				return nil, err
			}
		}
		if !new(uint256.Int).And(w, bit(day)).IsZero() {
			days = append(days, day)
		}
	}
	return days, nil
}

package allocation

import (
	"sort"

	"github.com/iov-one/dividends"
	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	"github.com/iov-one/dividends/orm"
)

const bucketName = "alloc"

var registryKey = []byte("reg")

// History gives access to the categories and their percentage snapshots.
type History struct {
	bucket orm.ModelBucket
}

// NewHistory returns a History using the "alloc" key space.
func NewHistory() *History {
	return &History{bucket: orm.NewModelBucket(bucketName)}
}

func categoryKey(name string) []byte {
	return []byte("cat:" + name)
}

func snapshotKey(name string, idx uint64) []byte {
	return append([]byte("snap:"+name+":"), orm.EncodeSequence(idx)...)
}

func snapshotCount(name string) orm.Sequence {
	return orm.NewSequence(bucketName, name)
}

func (h *History) registry(db dividends.ReadOnlyKVStore) (*Registry, error) {
	var r Registry
	switch err := h.bucket.One(db, registryKey, &r); {
	case err == nil:
		return &r, nil
	case errors.ErrNotFound.Is(err):
		return &Registry{}, nil
	default:
		return nil, errors.Wrap(err, "cannot load registry")
	}
}

// Category returns the category with given name.
func (h *History) Category(db dividends.ReadOnlyKVStore, name string) (*Category, error) {
	var c Category
	if err := h.bucket.One(db, categoryKey(name), &c); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "category %q", name)
		}
		return nil, err
	}
	return &c, nil
}

// Categories returns the names of all categories in registration order.
func (h *History) Categories(db dividends.ReadOnlyKVStore) ([]string, error) {
	r, err := h.registry(db)
	if err != nil {
		return nil, err
	}
	return r.Names, nil
}

// AddCategory registers a new category. Until the first snapshot is
// recorded the category is active with the base percentage.
func (h *History) AddCategory(db dividends.KVStore, name string, base uint64) error {
	c := Category{Name: name, BasePercentage: base}
	if err := c.Validate(); err != nil {
		return err
	}
	r, err := h.registry(db)
	if err != nil {
		return err
	}
	if r.has(name) {
		return errors.Wrapf(errors.ErrDuplicate, "category %q", name)
	}
	if err := h.bucket.Put(db, categoryKey(name), &c); err != nil {
		return errors.Wrap(err, "cannot save category")
	}
	r.Names = append(r.Names, name)
	if err := h.bucket.Put(db, registryKey, r); err != nil {
		return errors.Wrap(err, "cannot save registry")
	}
	return nil
}

// RemoveCategory deletes a category together with its history. Only a
// category whose percentage active on given day is zero can be removed.
func (h *History) RemoveCategory(db dividends.KVStore, name string, day uint64) error {
	r, err := h.registry(db)
	if err != nil {
		return err
	}
	if !r.has(name) {
		return errors.Wrapf(errors.ErrNotFound, "category %q", name)
	}
	pct, err := h.PercentageAt(db, name, day)
	if err != nil {
		return err
	}
	if pct != 0 {
		return errors.Wrapf(ErrCategoryInUse, "%q percentage is %s", name, fixed.Format(pct))
	}

	n, err := snapshotCount(name).Latest(db)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		if err := h.bucket.Delete(db, snapshotKey(name, i)); err != nil {
			return errors.Wrap(err, "cannot delete snapshot")
		}
	}
	if err := snapshotCount(name).Reset(db); err != nil {
		return err
	}
	if err := h.bucket.Delete(db, categoryKey(name)); err != nil {
		return errors.Wrap(err, "cannot delete category")
	}

	names := r.Names[:0]
	for _, n := range r.Names {
		if n != name {
			names = append(names, n)
		}
	}
	r.Names = names
	if err := h.bucket.Put(db, registryKey, r); err != nil {
		return errors.Wrap(err, "cannot save registry")
	}
	return nil
}

// SetPercentage records the percentage of a category that is active from
// given day on. When the last snapshot was recorded on the same day it is
// amended, otherwise a new snapshot is appended. Going back in time is not
// allowed.
func (h *History) SetPercentage(db dividends.KVStore, name string, day, pct uint64) error {
	if _, err := h.Category(db, name); err != nil {
		return err
	}
	s := Snapshot{Day: day, Percentage: pct}
	if err := s.Validate(); err != nil {
		return err
	}

	seq := snapshotCount(name)
	n, err := seq.Latest(db)
	if err != nil {
		return err
	}
	if n > 0 {
		last, err := h.snapshot(db, name, n-1)
		if err != nil {
			return err
		}
		switch {
		case last.Day == day:
			return h.bucket.Put(db, snapshotKey(name, n-1), &s)
		case last.Day > day:
			return errors.Wrapf(ErrTimeTravel, "last snapshot of %q is on day %d, got day %d", name, last.Day, day)
		}
	}

	if _, err := seq.NextInt(db); err != nil {
		return err
	}
	return h.bucket.Put(db, snapshotKey(name, n), &s)
}

func (h *History) snapshot(db dividends.ReadOnlyKVStore, name string, idx uint64) (*Snapshot, error) {
	var s Snapshot
	if err := h.bucket.One(db, snapshotKey(name, idx), &s); err != nil {
		return nil, errors.Wrapf(err, "snapshot %d of %q", idx, name)
	}
	return &s, nil
}

// PercentageAt returns the percentage of a category active on given day.
// That is the percentage of the latest snapshot recorded on or before that
// day, or the base percentage if no such snapshot exists.
func (h *History) PercentageAt(db dividends.ReadOnlyKVStore, name string, day uint64) (uint64, error) {
	c, err := h.Category(db, name)
	if err != nil {
		return 0, err
	}
	n, err := snapshotCount(name).Latest(db)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return c.BasePercentage, nil
	}

	// Most queries are about a recent day.
	last, err := h.snapshot(db, name, n-1)
	if err != nil {
		return 0, err
	}
	if last.Day <= day {
		return last.Percentage, nil
	}
	first, err := h.snapshot(db, name, 0)
	if err != nil {
		return 0, err
	}
	if day < first.Day {
		return c.BasePercentage, nil
	}

	// first.Day <= day < last.Day, find the greatest snapshot day <= day
	lo, hi := uint64(0), n-1
	for lo < hi {
		mid := hi - (hi-lo)/2
		s, err := h.snapshot(db, name, mid)
		if err != nil {
			return 0, err
		}
		switch {
		case s.Day == day:
			return s.Percentage, nil
		case s.Day < day:
			lo = mid
		default:
			hi = mid - 1
		}
	}
	s, err := h.snapshot(db, name, lo)
	if err != nil {
		return 0, err
	}
	return s.Percentage, nil
}

// PercentagesAt returns the percentage of every category active on given
// day, in registration order.
func (h *History) PercentagesAt(db dividends.ReadOnlyKVStore, day uint64) ([]CategoryPercentage, error) {
	names, err := h.Categories(db)
	if err != nil {
		return nil, err
	}
	res := make([]CategoryPercentage, 0, len(names))
	for _, name := range names {
		pct, err := h.PercentageAt(db, name, day)
		if err != nil {
			return nil, err
		}
		res = append(res, CategoryPercentage{Category: name, Percentage: pct})
	}
	return res, nil
}

// SetCategoryPercentages updates all categories at once. Exactly one entry
// for every registered category must be provided and the percentages must
// sum to exactly 100%. Either all categories are updated or none.
func (h *History) SetCategoryPercentages(db dividends.KVStore, day uint64, pcts []CategoryPercentage) error {
	if err := ValidatePercentages(pcts); err != nil {
		return err
	}
	names, err := h.Categories(db)
	if err != nil {
		return err
	}
	if len(names) != len(pcts) {
		return errors.Wrapf(ErrCategory, "want %d categories, got %d", len(names), len(pcts))
	}
	registered := make(map[string]struct{}, len(names))
	for _, n := range names {
		registered[n] = struct{}{}
	}
	for _, p := range pcts {
		if _, ok := registered[p.Category]; !ok {
			return errors.Wrapf(ErrCategory, "unknown category %q", p.Category)
		}
	}

	// Validate every snapshot before writing anything.
	for _, p := range pcts {
		if err := h.checkDay(db, p.Category, day); err != nil {
			return err
		}
	}
	for _, p := range pcts {
		if err := h.SetPercentage(db, p.Category, day, p.Percentage); err != nil {
			return errors.Wrapf(err, "category %q", p.Category)
		}
	}
	return nil
}

func (h *History) checkDay(db dividends.ReadOnlyKVStore, name string, day uint64) error {
	n, err := snapshotCount(name).Latest(db)
	if err != nil || n == 0 {
		return err
	}
	last, err := h.snapshot(db, name, n-1)
	if err != nil {
		return err
	}
	if last.Day > day {
		return errors.Wrapf(ErrTimeTravel, "last snapshot of %q is on day %d, got day %d", name, last.Day, day)
	}
	return nil
}

// ValidatePercentages checks that category names do not repeat and that
// the percentages sum to exactly 100%.
func ValidatePercentages(pcts []CategoryPercentage) error {
	seen := make(map[string]struct{}, len(pcts))
	values := make([]uint64, 0, len(pcts))
	for _, p := range pcts {
		if !IsCategoryName(p.Category) {
			return errors.Wrapf(ErrCategory, "invalid name %q", p.Category)
		}
		if _, ok := seen[p.Category]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "category %q", p.Category)
		}
		seen[p.Category] = struct{}{}
		if err := fixed.ValidatePercent(p.Percentage); err != nil {
			return errors.Wrapf(err, "category %q", p.Category)
		}
		values = append(values, p.Percentage)
	}
	sum, err := fixed.Sum(values...)
	if err != nil {
		return errors.Wrap(ErrPercentageSum, err.Error())
	}
	if sum != fixed.One {
		return errors.Wrapf(ErrPercentageSum, "got %s", fixed.Format(sum))
	}
	return nil
}

// Snapshots returns the whole snapshot vector of a category.
func (h *History) Snapshots(db dividends.ReadOnlyKVStore, name string) ([]Snapshot, error) {
	if _, err := h.Category(db, name); err != nil {
		return nil, err
	}
	n, err := snapshotCount(name).Latest(db)
	if err != nil {
		return nil, err
	}
	res := make([]Snapshot, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := h.snapshot(db, name, i)
		if err != nil {
			return nil, err
		}
		res = append(res, *s)
	}
	return res, nil
}

// SortPercentages orders the entries by category name.
func SortPercentages(pcts []CategoryPercentage) {
	sort.Slice(pcts, func(i, j int) bool { return pcts[i].Category < pcts[j].Category })
}

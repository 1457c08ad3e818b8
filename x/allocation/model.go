package allocation

import (
	"regexp"
	"strconv"

	"github.com/iov-one/dividends/errors"
	"github.com/iov-one/dividends/fixed"
	amino "github.com/tendermint/go-amino"
)

// IsCategoryName is the RegExp to ensure valid category names.
var IsCategoryName = regexp.MustCompile(`^[a-z0-9_]{1,32}$`).MatchString

// Category is a named recipient bucket of the revenue split.
type Category struct {
	Name string
	// BasePercentage is active on every day preceding the first snapshot.
	BasePercentage uint64
}

// Validate returns an error if the category is not valid.
func (c *Category) Validate() error {
	if !IsCategoryName(c.Name) {
		return errors.Wrapf(ErrCategory, "invalid name %q", c.Name)
	}
	if err := fixed.ValidatePercent(c.BasePercentage); err != nil {
		return errors.Wrap(err, "base percentage")
	}
	return nil
}

func (c *Category) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(c)
}

func (c *Category) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, c)
}

// Snapshot records the percentage of a category that became active on a
// given day.
type Snapshot struct {
	Day        uint64 `json:"day"`
	Percentage uint64 `json:"percentage"`
}

// Validate returns an error if the snapshot is not valid.
func (s *Snapshot) Validate() error {
	return fixed.ValidatePercent(s.Percentage)
}

func (s *Snapshot) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(s)
}

func (s *Snapshot) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, s)
}

// Registry holds the names of all categories in the order of their
// registration.
type Registry struct {
	Names []string
}

// Validate returns an error if the registry contains invalid or repeated
// names.
func (r *Registry) Validate() error {
	seen := make(map[string]struct{}, len(r.Names))
	for i, n := range r.Names {
		if !IsCategoryName(n) {
			return errors.Field("Names."+strconv.Itoa(i), ErrCategory, "invalid name %q", n)
		}
		if _, ok := seen[n]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "category %q", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func (r *Registry) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(r)
}

func (r *Registry) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, r)
}

func (r *Registry) has(name string) bool {
	for _, n := range r.Names {
		if n == name {
			return true
		}
	}
	return false
}

// CategoryPercentage is a category name paired with a percentage.
type CategoryPercentage struct {
	Category   string `json:"category"`
	Percentage uint64 `json:"percentage"`
}

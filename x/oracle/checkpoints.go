package oracle

import (
	"sort"

	"github.com/holiman/uint256"
)

// Checkpoints is a value history ordered by day.
type Checkpoints struct {
	days   []uint64
	values []*uint256.Int
}

// Set records the value from given day on. Setting a day twice replaces
// the previous value.
func (c *Checkpoints) Set(day uint64, v *uint256.Int) {
	i := sort.Search(len(c.days), func(i int) bool { return c.days[i] >= day })
	if i < len(c.days) && c.days[i] == day {
		c.values[i] = new(uint256.Int).Set(v)
		return
	}
	c.days = append(c.days, 0)
	c.values = append(c.values, nil)
	copy(c.days[i+1:], c.days[i:])
	copy(c.values[i+1:], c.values[i:])
	c.days[i], c.values[i] = day, new(uint256.Int).Set(v)
}

// At returns the value set on the greatest day not after given day, or
// zero if there is none.
func (c *Checkpoints) At(day uint64) *uint256.Int {
	i := sort.Search(len(c.days), func(i int) bool { return c.days[i] > day })
	if i == 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(c.values[i-1])
}

// Len returns the number of checkpoints.
func (c *Checkpoints) Len() int {
	return len(c.days)
}

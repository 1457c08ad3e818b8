package store

import (
	"bytes"

	"github.com/iov-one/dividends/errors"
)

// cacheIterator merges the items held by a cache with an iterator of the
// backing store. Cached items take precedence and deleted items hide the
// backing value.
type cacheIterator struct {
	items   []keyer
	pos     int
	parent  Iterator
	reverse bool

	// head of the parent iterator
	pkey, pvalue []byte
	loaded, done bool
}

var _ Iterator = (*cacheIterator)(nil)

func newCacheIterator(items []keyer, parent Iterator, reverse bool) *cacheIterator {
	return &cacheIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

func (c *cacheIterator) loadParent() error {
	if c.loaded || c.done {
		return nil
	}
	key, value, err := c.parent.Next()
	switch {
	case err == nil:
		c.pkey, c.pvalue, c.loaded = key, value, true
	case errors.ErrIteratorDone.Is(err):
		c.done = true
	default:
		return err
	}
	return nil
}

// Next returns the next key value pair in iteration order.
func (c *cacheIterator) Next() ([]byte, []byte, error) {
	for {
		if err := c.loadParent(); err != nil {
			return nil, nil, err
		}

		if c.pos >= len(c.items) {
			if c.done {
				return nil, nil, errors.ErrIteratorDone
			}
			c.loaded = false
			return c.pkey, c.pvalue, nil
		}

		item := c.items[c.pos]
		if !c.done {
			cmp := bytes.Compare(item.Key(), c.pkey)
			if c.reverse {
				cmp = -cmp
			}
			if cmp > 0 {
				c.loaded = false
				return c.pkey, c.pvalue, nil
			}
			if cmp == 0 {
				// cache overrides the parent value
				c.loaded = false
			}
		}

		c.pos++
		if set, ok := item.(setItem); ok {
			return set.key, set.value, nil
		}
		// deleted items are skipped
	}
}

// Release releases the parent iterator.
func (c *cacheIterator) Release() {
	c.parent.Release()
}

package store

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/iov-one/dividends/errors"
)

// TestStoreConstructor returns a fresh store instance for each test.
type TestStoreConstructor func() CacheableKVStore

// TestSuite runs the shared checks every store implementation must pass.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// NewTestSuite returns a suite for the given store constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks reading and writing through nested cache wraps.
func (s *TestSuite) GetSet(t *testing.T) {
	base := s.makeBase()
	k, v := []byte("french"), []byte("fry")
	s.AssertGetHas(t, base, k, nil, false)
	mustNil(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	k2, v2 := []byte("LA"), []byte("Dodgers")
	mustNil(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	mustNil(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	mustNil(t, c2.Set(k3, v3))
	c2.Discard()
	s.AssertGetHas(t, base, k3, nil, false)

	c3 := base.CacheWrap()
	mustNil(t, c3.Delete(k))
	s.AssertGetHas(t, c3, k, nil, false)
	s.AssertGetHas(t, base, k, v, true)
	mustNil(t, c3.Write())
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
}

// CacheConflicts checks that overwrites and deletes in a cache shadow the
// parent values.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	base := s.makeBase()
	mustNil(t, base.Set([]byte("a"), []byte("1")))
	mustNil(t, base.Set([]byte("b"), []byte("2")))
	mustNil(t, base.Set([]byte("c"), []byte("3")))

	cache := base.CacheWrap()
	mustNil(t, cache.Set([]byte("b"), []byte("22")))
	mustNil(t, cache.Delete([]byte("c")))
	mustNil(t, cache.Set([]byte("d"), []byte("4")))

	s.AssertIterator(t, cache, nil, nil, false, []Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("22")},
		{Key: []byte("d"), Value: []byte("4")},
	})
	s.AssertIterator(t, cache, nil, nil, true, []Model{
		{Key: []byte("d"), Value: []byte("4")},
		{Key: []byte("b"), Value: []byte("22")},
		{Key: []byte("a"), Value: []byte("1")},
	})
	s.AssertIterator(t, cache, []byte("b"), []byte("d"), false, []Model{
		{Key: []byte("b"), Value: []byte("22")},
	})
	s.AssertIterator(t, base, nil, nil, false, []Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("c"), Value: []byte("3")},
	})
}

// IteratorRanges checks range boundaries over many keys split between the
// parent and the cache.
func (s *TestSuite) IteratorRanges(t *testing.T) {
	base := s.makeBase()
	var all []Model
	for i := 0; i < 40; i++ {
		m := Model{Key: []byte(fmt.Sprintf("key-%03d", i)), Value: []byte{byte(i)}}
		all = append(all, m)
		if i%2 == 0 {
			mustNil(t, base.Set(m.Key, m.Value))
		}
	}
	cache := base.CacheWrap()
	for i := 1; i < 40; i += 2 {
		mustNil(t, cache.Set(all[i].Key, all[i].Value))
	}

	s.AssertIterator(t, cache, nil, nil, false, all)
	s.AssertIterator(t, cache, all[5].Key, all[17].Key, false, all[5:17])
	s.AssertIterator(t, cache, all[5].Key, nil, false, all[5:])
	s.AssertIterator(t, cache, nil, all[5].Key, false, all[:5])
	s.AssertIterator(t, cache, all[10].Key, all[20].Key, true, reverse(all[10:20]))
}

// AssertGetHas checks both Get and Has for the given key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	mustNil(t, err)
	if !bytes.Equal(val, got) {
		t.Fatalf("%q: want %q, got %q", key, val, got)
	}
	exists, err := kv.Has(key)
	mustNil(t, err)
	if exists != has {
		t.Fatalf("%q: want has %v", key, has)
	}
}

// AssertIterator reads the whole range and compares it with the expected
// result.
func (s *TestSuite) AssertIterator(t testing.TB, kv ReadOnlyKVStore, start, end []byte, reversed bool, want []Model) {
	t.Helper()
	var (
		it  Iterator
		err error
	)
	if reversed {
		it, err = kv.ReverseIterator(start, end)
	} else {
		it, err = kv.Iterator(start, end)
	}
	mustNil(t, err)
	defer it.Release()

	var got []Model
	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		mustNil(t, err)
		got = append(got, Model{Key: k, Value: v})
	}
	if len(got) != len(want) {
		t.Fatalf("want %d models, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(want[i].Key, got[i].Key) || !bytes.Equal(want[i].Value, got[i].Value) {
			t.Fatalf("model %d: want %q=%q, got %q=%q", i, want[i].Key, want[i].Value, got[i].Key, got[i].Value)
		}
	}
}

func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.SliceStable(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) > 0
	})
	return res
}

func mustNil(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
}

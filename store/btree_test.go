package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorum-one/vault/errors"
)

// TestBTreeCacheGetSet does basic sanity checks on our cache
//
// Other tests handle deletes, iterating over ranges, and layering.
func TestBTreeCacheGetSet(t *testing.T) {
	// devnull is a black hole, just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()

	// make sure the btree is empty at start but returns results
	// that are writen to it
	k, v := []byte("french"), []byte("fry")
	got, err := base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := base.Has(k)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, base.Set(k, v))
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	got, err = cache.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	require.NoError(t, cache.Set(k2, v2))
	got, err = cache.Get(k2)
	require.NoError(t, err)
	assert.Equal(t, v2, got)
	got, err = base.Get(k2)
	require.NoError(t, err)
	assert.Nil(t, got)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	got, err = base.Get(k2)
	require.NoError(t, err)
	assert.Equal(t, v2, got)

	// we can discard a layer without touching the base
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()
	got, err = base.Get(k3)
	require.NoError(t, err)
	assert.Nil(t, got)

	// and commit deletions
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Write())
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = base.Get(k2)
	require.NoError(t, err)
	assert.Equal(t, v2, got)
}

func TestMemStoreIsolation(t *testing.T) {
	db := MemStore()

	require.NoError(t, db.Set([]byte("a"), []byte("1")))

	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("2")))
	require.NoError(t, cache.Delete([]byte("a")))

	// the cache sees its own writes, the parent does not
	has, err := cache.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
	has, err = db.Has([]byte("a"))
	require.NoError(t, err)
	assert.True(t, has)
	has, err = db.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, cache.Write())
	has, err = db.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
	got, err := db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestMemStoreIterator(t *testing.T) {
	db := MemStore()
	models := []Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("c"), Value: []byte("3")},
		{Key: []byte("d"), Value: []byte("4")},
	}
	// insert out of order, iteration must sort
	for _, i := range []int{2, 0, 3, 1} {
		require.NoError(t, db.Set(models[i].Key, models[i].Value))
	}

	collect := func(it Iterator, err error) []Model {
		require.NoError(t, err)
		defer it.Release()
		var res []Model
		for {
			k, v, err := it.Next()
			if err != nil {
				assert.True(t, errors.ErrIteratorDone.Is(err), "unexpected error: %+v", err)
				return res
			}
			res = append(res, Model{Key: k, Value: v})
		}
	}

	assert.Equal(t, models, collect(db.Iterator(nil, nil)))

	// range is [start, end)
	assert.Equal(t, models[1:3], collect(db.Iterator([]byte("b"), []byte("d"))))

	reversed := collect(db.ReverseIterator(nil, nil))
	require.Len(t, reversed, len(models))
	for i := range models {
		assert.Equal(t, models[len(models)-1-i], reversed[i])
	}
}

func TestCacheIteratorShadowsParent(t *testing.T) {
	db := MemStore()
	require.NoError(t, db.Set([]byte("a"), []byte("base-a")))
	require.NoError(t, db.Set([]byte("b"), []byte("base-b")))
	require.NoError(t, db.Set([]byte("c"), []byte("base-c")))

	cache := db.CacheWrap()
	// overwrite one, delete another, add a third
	require.NoError(t, cache.Set([]byte("b"), []byte("cache-b")))
	require.NoError(t, cache.Delete([]byte("c")))
	require.NoError(t, cache.Set([]byte("d"), []byte("cache-d")))

	it, err := cache.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Release()

	want := []Model{
		{Key: []byte("a"), Value: []byte("base-a")},
		{Key: []byte("b"), Value: []byte("cache-b")},
		{Key: []byte("d"), Value: []byte("cache-d")},
	}
	for _, w := range want {
		k, v, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, w.Key, k)
		assert.Equal(t, w.Value, v)
	}
	_, _, err = it.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err), "unexpected error: %+v", err)
}

func TestSliceIterator(t *testing.T) {
	models := []Model{
		{Key: []byte("one"), Value: []byte("1")},
		{Key: []byte("two"), Value: []byte("2")},
	}
	it := NewSliceIterator(models)

	k, v, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), k)
	assert.Equal(t, []byte("1"), v)

	// releasing stops the iteration early
	it.Release()
	_, _, err = it.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err), "unexpected error: %+v", err)

	// releasing twice is fine
	it.Release()
}

package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/quorum-one/vault/errors"
)

// cacheIter walks over a snapshot of the btree cache content within the
// requested range. The snapshot approach keeps the iterator contract simple:
// writes performed after the iterator was created are not observed.
type cacheIter struct {
	items   []btree.Item
	idx     int
	reverse bool
}

func ascendBtree(bt *btree.BTree, start, end []byte) *cacheIter {
	iter := &cacheIter{}
	collect := func(item btree.Item) bool {
		iter.items = append(iter.items, item)
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil: // end != nil
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil: // start != nil
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return iter
}

func descendBtree(bt *btree.BTree, start, end []byte) *cacheIter {
	iter := &cacheIter{reverse: true}
	collect := func(item btree.Item) bool {
		iter.items = append(iter.items, item)
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Descend(collect)
	case start == nil: // end != nil
		bt.DescendLessOrEqual(bkeyLess{end}, collect)
	case end == nil: // start != nil
		bt.DescendGreaterThan(bkeyLess{start}, collect)
	default:
		bt.DescendRange(bkeyLess{end}, bkeyLess{start}, collect)
	}
	return iter
}

func (c *cacheIter) peek() (btree.Item, bool) {
	if c.idx >= len(c.items) {
		return nil, false
	}
	return c.items[c.idx], true
}

func (c *cacheIter) advance() {
	c.idx++
}

// wrap combines the cache content with a parent iterator. Cache items shadow
// parent items with an equal key, deleted cache items suppress them.
func (c *cacheIter) wrap(parent Iterator) Iterator {
	return &itemIter{
		cache:  c,
		parent: parent,
	}
}

type itemIter struct {
	cache  *cacheIter
	parent Iterator

	// read-ahead of the parent iterator
	parentKey   []byte
	parentValue []byte
	parentRead  bool
	parentDone  bool
}

var _ Iterator = (*itemIter)(nil)

// Next returns the next key/value pair in the merged iteration order, or
// ErrIteratorDone when both sources are exhausted.
func (i *itemIter) Next() ([]byte, []byte, error) {
	for {
		if err := i.readParent(); err != nil {
			return nil, nil, err
		}
		cached, hasCache := i.cache.peek()

		// Neither source has data left.
		if !hasCache && i.parentDone {
			return nil, nil, errors.ErrIteratorDone
		}

		// Only the parent has data left.
		if !hasCache {
			return i.takeParent(), i.parentValue, nil
		}

		key := cached.(keyer).Key()
		if !i.parentDone {
			switch cmp := i.compare(key, i.parentKey); {
			case cmp > 0:
				// Parent item comes first and is not shadowed.
				return i.takeParent(), i.parentValue, nil
			case cmp == 0:
				// Cache shadows the parent item.
				i.parentRead = false
			}
		}

		i.cache.advance()
		if set, ok := cached.(setItem); ok {
			return set.bkey.key, set.value, nil
		}
		// A deleted item suppresses any output for this key.
	}
}

// compare orders two keys honoring the iteration direction.
func (i *itemIter) compare(a, b []byte) int {
	if i.cache.reverse {
		return bytes.Compare(b, a)
	}
	return bytes.Compare(a, b)
}

// readParent ensures the read-ahead buffer is filled, unless the parent
// iterator is exhausted.
func (i *itemIter) readParent() error {
	if i.parentRead || i.parentDone {
		return nil
	}
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.parentKey, i.parentValue, i.parentRead = key, value, true
	case errors.ErrIteratorDone.Is(err):
		i.parentDone = true
	default:
		return err
	}
	return nil
}

// takeParent consumes the buffered parent item.
func (i *itemIter) takeParent() []byte {
	i.parentRead = false
	return i.parentKey
}

// Release frees the parent iterator.
func (i *itemIter) Release() {
	i.parent.Release()
	i.cache.items = nil
}

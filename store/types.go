//nolint
package store

import "github.com/quorum-one/vault"

// Move references for all storage types into this package
// for shorter names everywhere.

type ReadOnlyKVStore = vault.ReadOnlyKVStore
type KVStore = vault.KVStore
type SetDeleter = vault.SetDeleter
type Batch = vault.Batch
type Iterator = vault.Iterator
type CacheableKVStore = vault.CacheableKVStore
type KVCacheWrap = vault.KVCacheWrap

// Model groups a key with its stored value.
type Model struct {
	Key   []byte
	Value []byte
}

package cache

import (
	"sync"

	"github.com/cespare/xxhash"
)

// LockTable hands out a mutex per key from a fixed set of shards. Keys that
// hash to the same shard wait for each other.
type LockTable struct {
	shards []sync.Mutex
}

// NewLockTable creates a table with n shards (at least one).
func NewLockTable(n int) *LockTable {
	if n < 1 {
		n = 1
	}
	return &LockTable{shards: make([]sync.Mutex, n)}
}

func (t *LockTable) shard(key string) *sync.Mutex {
	return &t.shards[xxhash.Sum64([]byte(key))%uint64(len(t.shards))]
}

// Lock blocks until the key's shard is free and returns the function that
// releases it.
func (t *LockTable) Lock(key string) (unlock func()) {
	mu := t.shard(key)
	mu.Lock()
	return mu.Unlock
}

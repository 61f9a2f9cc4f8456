// Package sync serializes work per key without a global lock.
package sync

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 64

// KeyedMutex spreads keys over a fixed set of mutexes. Two keys on the same
// shard serialize each other; a key never runs concurrently with itself.
type KeyedMutex struct {
	shards []sync.Mutex
}

// NewKeyedMutex returns a KeyedMutex with n shards, or 64 when n < 1.
func NewKeyedMutex(n int) *KeyedMutex {
	if n < 1 {
		n = defaultShards
	}
	return &KeyedMutex{shards: make([]sync.Mutex, n)}
}

func (m *KeyedMutex) Lock(key string) {
	m.shards[m.shard(key)].Lock()
}

func (m *KeyedMutex) Unlock(key string) {
	m.shards[m.shard(key)].Unlock()
}

// With runs fn while holding key's shard.
func (m *KeyedMutex) With(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

func (m *KeyedMutex) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}

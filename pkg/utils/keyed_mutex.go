package utils

import (
	"hash/fnv"
	"sync"
)

// KeyedMutex serializes work per key using a fixed set of striped locks.
// Distinct keys may share a stripe; callers must not hold two stripes at once.
type KeyedMutex struct {
	stripes []sync.Mutex
}

// NewKeyedMutex creates a KeyedMutex with n stripes.
func NewKeyedMutex(n int) *KeyedMutex {
	if n <= 0 {
		n = 256
	}
	return &KeyedMutex{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%uint32(len(k.stripes))]
	m.Lock()
	return m.Unlock
}

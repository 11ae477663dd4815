package memory

import (
	"context"

	"socialhub/pkg/utils"
)

// PairLocker adapts a striped KeyedMutex to ports.PairLocker
type PairLocker struct {
	mu *utils.KeyedMutex
}

// NewPairLocker creates a process-local locker with the given stripe count
func NewPairLocker(stripes int) *PairLocker {
	return &PairLocker{mu: utils.NewKeyedMutex(stripes)}
}

// Lock blocks until key's stripe is held. ctx is checked once acquired.
func (l *PairLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlock := l.mu.Lock(key)
	if err := ctx.Err(); err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

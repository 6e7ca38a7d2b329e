// Package lease serializes work on a key (a matching category) across
// goroutines, or across processes when backed by Redis.
package lease

import (
	"context"
	"errors"
	"sync"
)

// ErrHeld is returned when another holder owns the lease and the locker does
// not wait for it.
var ErrHeld = errors.New("lease held by another worker")

type Locker interface {
	// Acquire obtains the lease for key. The returned release func is safe
	// to call more than once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process keyed mutex. Acquire waits until the key is free or
// ctx is done.
type Local struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{keys: make(map[string]chan struct{})}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.keys[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.keys[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

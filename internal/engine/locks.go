package engine

import (
	"context"
	"sync"
	"time"

	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// LockArena serializes signal processing per strategy. Each key owns a
// one-slot semaphore; concurrent requests for the same strategy queue on
// it, while distinct strategies proceed in parallel.
type LockArena struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLockArena creates an empty arena.
func NewLockArena() *LockArena {
	return &LockArena{
		slots: make(map[string]chan struct{}),
	}
}

func (a *LockArena) slot(key string) chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, ok := a.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		a.slots[key] = slot
	}

	return slot
}

// Acquire takes the strategy's slot, waiting up to timeout. It returns a
// release function on success. A request that cannot acquire the slot in
// time fails with ErrCodeStrategyBusy and must leave no trace in the call
// log.
func (a *LockArena) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	slot := a.slot(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-timer.C:
		return nil, errors.Newf(errors.ErrCodeStrategyBusy, "strategy %s is busy processing another signal", key)
	case <-ctx.Done():
		return nil, errors.Wrapf(errors.ErrCodeStrategyBusy, ctx.Err(), "request cancelled while waiting for strategy %s", key)
	}
}

// Forget drops the slot for a deleted strategy. A holder of the old slot
// still releases into it safely.
func (a *LockArena) Forget(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.slots, key)
}

package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// seatLocks hands out one lock per (slot, seat) key so that the
// check-then-act sequence for a seat is serialized against every other
// book/cancel attempt on the same key.  Locks are buffered channels rather
// than sync.Mutex so acquisition can be bounded by a timeout; a caller that
// cannot get the lock in time receives ErrSeatBusy instead of blocking
// behind a slow transaction.
type seatLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newSeatLocks() *seatLocks {
	return &seatLocks{locks: make(map[string]chan struct{})}
}

func seatKey(slot string, seatNumber uint32) string {
	return fmt.Sprintf("%s#%d", slot, seatNumber)
}

func (s *seatLocks) get(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// acquire takes the lock for key, waiting at most wait.  It returns a
// release func on success and ErrSeatBusy when the lock stays contested.
// Context cancellation is honored while waiting; once acquired, the caller
// runs to completion regardless of the context so no half-applied state can
// be observed.
func (s *seatLocks) acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	ch := s.get(key)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, ErrSeatBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

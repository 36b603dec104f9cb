package storage

import (
	"sync"
	"sync/atomic"

	"github.com/mcoot/lifeboard/internal/model"
)

// Feed is the Subscription implementation shared by the backends.
// It drops snapshots older than the newest one already delivered.
type Feed struct {
	onSnapshot SnapshotFunc
	stop       func()

	// deliverMu is held across the stopped check and the callback
	deliverMu sync.Mutex
	lastRev   int64
	delivered bool

	stopped   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// NewFeed creates a Feed; stop releases the backend resources and may be nil.
// onSnapshot must not call Unsubscribe on its own feed.
func NewFeed(onSnapshot SnapshotFunc, stop func()) *Feed {
	return &Feed{
		onSnapshot: onSnapshot,
		stop:       stop,
		done:       make(chan struct{}),
	}
}

// Ensure Feed implements Subscription
var _ Subscription = (*Feed)(nil)

// Deliver hands a snapshot to the subscriber unless it is stale or the feed has stopped.
// Deliveries are serialized.
func (f *Feed) Deliver(game *model.Game) bool {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	if f.stopped.Load() {
		return false
	}
	if f.delivered && game.Revision < f.lastRev {
		return false
	}
	f.delivered = true
	f.lastRev = game.Revision

	f.onSnapshot(game)
	return true
}

// End terminates the feed with the given reason
func (f *Feed) End(err error) {
	f.closeOnce.Do(func() {
		f.stopped.Store(true)
		f.err = err
		close(f.done)
	})
}

// Unsubscribe stops the feed and releases backend resources.
// It waits for a delivery already in progress to finish.
func (f *Feed) Unsubscribe() {
	f.deliverMu.Lock()
	f.stopped.Store(true)
	f.deliverMu.Unlock()

	if f.stop != nil {
		f.stop()
	}
	f.End(nil)
}

// Done is closed when the feed ends
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

// Err returns the reason the feed ended
func (f *Feed) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

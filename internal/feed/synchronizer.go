// Package feed owns the canonical ordered list of reels. It holds the
// single store subscription for the life of the view and is the only
// component that mutates the feed.
package feed

import (
	"context"
	"sync"

	"github.com/tahmid-dev/reelview/internal/logging"
	"github.com/tahmid-dev/reelview/internal/model"
	"github.com/tahmid-dev/reelview/internal/remote"
)

// NotifyFunc receives each new canonical feed. The slice is owned by
// the receiver's side of the contract only for reading; the
// synchronizer never mutates a delivered slice.
type NotifyFunc func(reels []model.Reel)

// Synchronizer subscribes once to the reel collection and converts
// every raw snapshot into the normalized, newest-first feed.
type Synchronizer struct {
	client remote.Client
	notify NotifyFunc

	mu      sync.Mutex
	stopped bool
	unsub   func()
}

// New creates a Synchronizer delivering feeds to notify.
func New(client remote.Client, notify NotifyFunc) *Synchronizer {
	return &Synchronizer{client: client, notify: notify}
}

// Start subscribes to the store. The subscription's initial snapshot
// arrives through notify before or shortly after Start returns. On
// subscription failure the feed fails open: notify receives an empty
// feed and the error is returned for logging, not for display.
func (s *Synchronizer) Start(ctx context.Context) error {
	unsub, err := s.client.Subscribe(ctx, model.ReelsPath, s.onSnapshot)
	if err != nil {
		s.notify(nil)
		return err
	}

	s.mu.Lock()
	if s.stopped {
		// Stopped while subscribing; tear the subscription down again.
		s.mu.Unlock()
		unsub()
		return nil
	}
	s.unsub = unsub
	s.mu.Unlock()
	return nil
}

// onSnapshot normalizes one raw snapshot and delivers it. Snapshots
// are applied in receipt order; each fully replaces the prior feed.
// A subscription error degrades to an empty feed rather than
// surfacing an error state.
func (s *Synchronizer) onSnapshot(snap remote.Snapshot, err error) {
	s.mu.Lock()
	if s.stopped {
		// Late-arriving callback racing teardown: drop it.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err != nil {
		logging.Error("feed subscription failed", "err", err)
		s.notify(nil)
		return
	}
	s.notify(model.ReelsFromSnapshot(snap))
}

// Stop unsubscribes from the store. Idempotent: safe to call multiple
// times or after the owning view has torn down. After Stop returns,
// notify is never invoked again.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

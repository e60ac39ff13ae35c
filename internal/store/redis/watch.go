package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/shelfmark/shelfmark/internal/domain"
)

// Subscription is a live view over one user's bookmark collection.
//
// Snapshots delivers the full ordered list again after every mutation (it
// fires once immediately with the current state). Errs delivers at most one
// error, after which no further snapshots arrive; there is no automatic
// resubscription. Unsubscribe is idempotent and must be called on teardown
// to release the pub/sub registration.
type Subscription struct {
	Snapshots <-chan []*domain.Bookmark
	Errs      <-chan error

	once sync.Once
	stop func()
}

// Unsubscribe tears the subscription down. Safe to call more than once.
func (sub *Subscription) Unsubscribe() {
	sub.once.Do(sub.stop)
}

// Watch subscribes to a user's bookmark collection.
//
// Snapshots are re-read from the store on every published event rather than
// patched incrementally, so a subscriber always observes a consistent
// ordered list regardless of event delivery order.
func (s *Store) Watch(ctx context.Context, uid string) (*Subscription, error) {
	ps := s.client.Subscribe(ctx, EventsChannel(uid))
	// Force the SUBSCRIBE round trip so registration failures surface here,
	// not as a silent dead channel.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to bookmark events: %w", err)
	}

	snapshots := make(chan []*domain.Bookmark)
	errs := make(chan error, 1)
	done := make(chan struct{})

	sub := &Subscription{
		Snapshots: snapshots,
		Errs:      errs,
		stop: func() {
			close(done)
			_ = ps.Close()
		},
	}

	go func() {
		defer close(snapshots)

		deliver := func() bool {
			list, err := s.List(ctx, uid)
			if err != nil {
				errs <- err
				return false
			}
			select {
			case snapshots <- list:
				return true
			case <-done:
				return false
			case <-ctx.Done():
				return false
			}
		}

		// Initial snapshot before any event.
		if !deliver() {
			return
		}

		msgs := ps.Channel()
		for {
			select {
			case _, ok := <-msgs:
				if !ok {
					return
				}
				if !deliver() {
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}

package queue

import (
	"context"
	"sync"
)

// notifier wakes watchers after writes. Signals coalesce: a watcher that is
// busy re-reading sees at most one pending wake-up.
type notifier struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[chan struct{}]struct{})}
}

func (n *notifier) subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	return ch, func() {
		n.mu.Lock()
		delete(n.subs, ch)
		n.mu.Unlock()
	}
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *SQLiteRepository) WatchCounts(ctx context.Context) <-chan Counts {
	out := make(chan Counts, 1)
	wake, cancel := r.notifier.subscribe()

	go func() {
		defer close(out)
		defer cancel()

		var last *Counts
		for {
			c, err := r.counts(ctx)
			if err == nil && (last == nil || *last != c) {
				select {
				case out <- c:
					last = &c
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-wake:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

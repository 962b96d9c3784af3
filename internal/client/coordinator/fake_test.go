package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/connectivity"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/queue"
)

type fakeConn struct {
	online atomic.Bool

	mu     sync.Mutex
	subs   map[int]func(bool)
	nextID int
}

func newFakeConn(online bool) *fakeConn {
	c := &fakeConn{subs: make(map[int]func(bool))}
	c.online.Store(online)
	return c
}

func (c *fakeConn) IsOnline() bool { return c.online.Load() }

func (c *fakeConn) set(v bool) {
	if c.online.Swap(v) == v {
		return
	}
	c.mu.Lock()
	fns := make([]func(bool), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

type fakeSub func()

func (f fakeSub) Cancel() { f() }

func (c *fakeConn) Subscribe(fn func(bool)) connectivity.Subscription {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	fn(c.IsOnline())

	return fakeSub(func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	})
}

// fakeProcessor records outcomes on the queue the way the real processor
// does. fn decides the outcome of each entry.
type fakeProcessor struct {
	queue queue.Repository
	fn    func(ctx context.Context, e *models.QueueEntry) error

	mu    sync.Mutex
	calls []int64
}

func (p *fakeProcessor) Process(ctx context.Context, e *models.QueueEntry) bool {
	p.mu.Lock()
	p.calls = append(p.calls, e.ID)
	p.mu.Unlock()

	var err error
	if p.fn != nil {
		err = p.fn(ctx, e)
	}
	if err != nil {
		_ = p.queue.MarkFailed(ctx, e.ID, models.Classify(err))
		return false
	}
	now := time.Now()
	_ = p.queue.MarkStatus(ctx, e.ID, models.StatusCompleted, &now)
	return true
}

func (p *fakeProcessor) called() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.calls...)
}

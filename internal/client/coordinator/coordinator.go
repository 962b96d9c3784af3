// Package coordinator drains the sync queue against the remote API.
//
// A Coordinator owns the SyncStatus of the engine. Drain cycles are started
// by SyncNow, by the periodic scheduler and by connectivity coming back; at
// most one cycle runs at a time and triggers that arrive while one is
// running are dropped.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/connectivity"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/queue"
	"github.com/dmitrijs2005/nutrisync/internal/config"
	"github.com/dmitrijs2005/nutrisync/internal/logging"
	"golang.org/x/sync/semaphore"
)

// Processor applies a single queue entry and records the outcome on it.
type Processor interface {
	Process(ctx context.Context, e *models.QueueEntry) bool
}

// Connectivity is the part of connectivity.Observer the coordinator needs.
type Connectivity interface {
	IsOnline() bool
	Subscribe(fn func(online bool)) connectivity.Subscription
}

type Coordinator struct {
	queue     queue.Repository
	processor Processor
	conn      Connectivity
	logger    logging.Logger

	batchSize          int
	maxRetries         int
	syncedDisplay      time.Duration
	completedRetention time.Duration
	backoff            Backoff

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	sem    *semaphore.Weighted
	status *statusHub

	// gen invalidates a pending Synced -> Idle revert once any newer status
	// has been published.
	mu     sync.Mutex
	gen    uint64
	revert *time.Timer
}

type Option func(*Coordinator)

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithConfig applies the batch, retry and timing settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(c *Coordinator) {
		c.batchSize = cfg.BatchSize
		c.maxRetries = cfg.MaxRetries
		c.syncedDisplay = cfg.SyncedDisplay
		c.completedRetention = cfg.CompletedRetention
		c.backoff.Base = cfg.BaseDelay
		c.backoff.Max = cfg.MaxDelay
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithSleep replaces the wait used between retries.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Coordinator) { c.sleep = fn }
}

// WithJitter replaces the random source of the retry backoff.
func WithJitter(fn func(n int64) int64) Option {
	return func(c *Coordinator) { c.backoff.Jitter = fn }
}

func New(q queue.Repository, p Processor, conn Connectivity, opts ...Option) *Coordinator {
	defaults := config.Default()

	c := &Coordinator{
		queue:     q,
		processor: p,
		conn:      conn,
		logger:    logging.NewNop(),
		now:       time.Now,
		sleep:     sleepContext,
		sem:       semaphore.NewWeighted(1),
		status:    newStatusHub(),
	}
	WithConfig(defaults)(c)
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("module", "coordinator")
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current status.
func (c *Coordinator) Status() models.SyncStatus {
	return c.status.get()
}

// Subscribe returns a channel that receives the current status immediately
// and every later change. Call cancel to stop delivery and close the channel.
func (c *Coordinator) Subscribe() (<-chan models.SyncStatus, func()) {
	return c.status.subscribe()
}

func (c *Coordinator) setStatus(s models.SyncStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishLocked(s)
}

// setSynced publishes Synced and schedules the return to Idle.
func (c *Coordinator) setSynced() {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.publishLocked(models.Synced())
	c.revert = time.AfterFunc(c.syncedDisplay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen == gen {
			c.publishLocked(models.Idle())
		}
	})
}

func (c *Coordinator) publishLocked(s models.SyncStatus) uint64 {
	c.gen++
	if c.revert != nil {
		c.revert.Stop()
		c.revert = nil
	}
	c.status.publish(s)
	return c.gen
}

// GetPendingCount returns the number of entries still waiting for the
// remote side, failed ones included.
func (c *Coordinator) GetPendingCount(ctx context.Context) (int, error) {
	return c.queue.CountPendingOrFailed(ctx)
}

// ClearPending deletes the whole queue, completed history included, and
// resets the status to Idle. Local changes that were not synced yet are lost.
func (c *Coordinator) ClearPending(ctx context.Context) error {
	n, err := c.queue.DeleteAll(ctx)
	if err != nil {
		return err
	}
	c.logger.Warn(ctx, "sync queue cleared", "deleted", n)
	c.setStatus(models.Idle())
	return nil
}

// SyncNow runs one drain cycle unless one is already running. It reports
// whether this call ran the cycle.
func (c *Coordinator) SyncNow(ctx context.Context) bool {
	if !c.sem.TryAcquire(1) {
		c.logger.Debug(ctx, "sync already running, trigger dropped")
		return false
	}
	defer c.sem.Release(1)

	c.drain(ctx)
	return true
}

// Run triggers a drain every time connectivity becomes available, including
// at startup when already online, until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		online bool
	)

	sub := c.conn.Subscribe(func(v bool) {
		mu.Lock()
		restored := v && !online
		online = v
		mu.Unlock()

		if !restored {
			return
		}
		c.logger.Info(ctx, "connectivity restored, starting sync")
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SyncNow(ctx)
		}()
	})

	<-ctx.Done()
	sub.Cancel()
	wg.Wait()

	c.mu.Lock()
	if c.revert != nil {
		c.revert.Stop()
		c.revert = nil
	}
	c.mu.Unlock()

	return nil
}

type cycle struct {
	dispatched map[int64]struct{}
	total      int
	succeeded  int
	failed     int
	aborted    bool
}

func (cy *cycle) remaining() int {
	return max(cy.total-cy.succeeded-cy.failed, 0)
}

func (c *Coordinator) drain(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(ctx, "sync cycle panicked", "panic", r)
			c.setStatus(models.Errored(0, fmt.Sprint(r)))
		}
	}()

	if err := c.runCycle(ctx); err != nil {
		c.logger.Error(ctx, "sync cycle failed", "error", err)
		c.setStatus(models.Errored(0, err.Error()))
	}
}

func (c *Coordinator) runCycle(ctx context.Context) error {
	if !c.conn.IsOnline() {
		c.logger.Debug(ctx, "offline, sync deferred")
		c.setStatus(models.Idle())
		return nil
	}

	total, err := c.queue.CountPendingOrFailed(ctx)
	if err != nil {
		return fmt.Errorf("count queue: %w", err)
	}
	if total == 0 {
		c.setSynced()
		c.purgeCompleted(ctx)
		return nil
	}

	cy := &cycle{dispatched: make(map[int64]struct{}), total: total}
	c.setStatus(models.Syncing(total))
	c.logger.Info(ctx, "sync started", "queued", total)

	if err := c.drainPending(ctx, cy); err != nil {
		return err
	}
	if !cy.aborted {
		if err := c.retryFailed(ctx, cy); err != nil {
			return err
		}
	}

	if err := c.finish(ctx, cy); err != nil {
		return err
	}
	c.purgeCompleted(ctx)
	return nil
}

// drainPending dispatches pending entries oldest first, one batch after
// another. Each batch starts after the last entry of the previous one, so
// entries left pending by a failed status update do not hide newer ones.
func (c *Coordinator) drainPending(ctx context.Context, cy *cycle) error {
	var last *models.QueueEntry
	for {
		var (
			batch []*models.QueueEntry
			err   error
		)
		if last == nil {
			batch, err = c.queue.ListPending(ctx, c.batchSize)
		} else {
			batch, err = c.queue.ListPendingAfter(ctx, last.CreatedAt, last.ID, c.batchSize)
		}
		if err != nil {
			return fmt.Errorf("list pending: %w", err)
		}

		for _, e := range batch {
			last = e
			if _, seen := cy.dispatched[e.ID]; seen {
				continue
			}
			if !c.dispatch(ctx, cy, e) {
				return nil
			}
		}

		if len(batch) < c.batchSize {
			return nil
		}
	}
}

// retryFailed gives one batch of failed entries below the retry cap another
// attempt, waiting out the backoff of each first. Entries that already ran
// in this cycle are skipped.
func (c *Coordinator) retryFailed(ctx context.Context, cy *cycle) error {
	batch, err := c.queue.ListFailed(ctx, c.maxRetries, c.batchSize)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	for _, e := range batch {
		if _, seen := cy.dispatched[e.ID]; seen {
			continue
		}

		delay := c.backoff.Delay(e.RetryCount)
		c.logger.Debug(ctx, "retry backoff", "entry_id", e.ID, "retry_count", e.RetryCount, "delay", delay)
		if err := c.sleep(ctx, delay); err != nil {
			c.logger.Info(ctx, "sync interrupted during backoff", "error", err)
			cy.aborted = true
			return nil
		}

		if !c.dispatch(ctx, cy, e) {
			return nil
		}
	}
	return nil
}

// dispatch processes e unless connectivity is gone, in which case it marks
// the cycle aborted and returns false.
func (c *Coordinator) dispatch(ctx context.Context, cy *cycle, e *models.QueueEntry) bool {
	if ctx.Err() != nil || !c.conn.IsOnline() {
		c.logger.Info(ctx, "connectivity lost, sync aborted", "remaining", cy.remaining())
		cy.aborted = true
		return false
	}

	cy.dispatched[e.ID] = struct{}{}
	if c.processor.Process(ctx, e) {
		cy.succeeded++
	} else {
		cy.failed++
	}

	c.setStatus(models.Syncing(cy.remaining()))
	return true
}

func (c *Coordinator) finish(ctx context.Context, cy *cycle) error {
	left, err := c.queue.CountPendingOrFailed(ctx)
	if err != nil {
		return fmt.Errorf("count queue: %w", err)
	}

	c.logger.Info(ctx, "sync finished",
		"succeeded", cy.succeeded, "failed", cy.failed, "remaining", left, "aborted", cy.aborted)

	switch {
	case left == 0:
		c.setSynced()
	case cy.aborted:
		c.setStatus(models.Idle())
	default:
		summary, err := c.queue.FailureSummary(ctx)
		if err != nil {
			return fmt.Errorf("failure summary: %w", err)
		}
		if cy.failed > 0 || summary.Failed > 0 {
			c.setStatus(models.Errored(summary.Failed, summary.LastError))
		} else {
			c.setStatus(models.Idle())
		}
	}
	return nil
}

func (c *Coordinator) purgeCompleted(ctx context.Context) {
	threshold := c.now().Add(-c.completedRetention)
	n, err := c.queue.DeleteCompletedOlderThan(ctx, threshold)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn(ctx, "failed to purge completed entries", "error", err)
		return
	}
	if n > 0 {
		c.logger.Debug(ctx, "purged completed entries", "deleted", n)
	}
}

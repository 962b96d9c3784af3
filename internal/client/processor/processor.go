// Package processor applies queue entries to the remote API.
//
// Each entry is dispatched through a Registry keyed by entity type and
// operation. Handlers call the remote API and reconcile the local store with
// the server's answer: placeholder records are replaced by server records,
// updates overwrite local copies and deletes remove them. Failures never
// escape Process; they are recorded on the entry instead.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/client"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/queue"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/records"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/users"
	"github.com/dmitrijs2005/nutrisync/internal/common"
	"github.com/dmitrijs2005/nutrisync/internal/logging"
	"github.com/go-playground/validator/v10"
)

// ErrNoHandler is recorded on entries whose entity type and operation have
// no registered handler.
var ErrNoHandler = errors.New("no handler registered")

// ErrNoUser is returned when a payload needs the signed-in user and there
// is none.
var ErrNoUser = errors.New("no signed-in user")

type Processor struct {
	queue     queue.Repository
	api       client.Client
	records   *records.Repositories
	users     users.Repository
	registry  *Registry
	conflicts *Conflicts
	validate  *validator.Validate
	logger    logging.Logger
	now       func() time.Time
}

type Option func(*Processor)

func WithLogger(l logging.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func WithConflicts(c *Conflicts) Option {
	return func(p *Processor) { p.conflicts = c }
}

// New builds a Processor with handlers for every entity type registered.
func New(q queue.Repository, api client.Client, recs *records.Repositories, u users.Repository, opts ...Option) *Processor {
	p := &Processor{
		queue:    q,
		api:      api,
		records:  recs,
		users:    u,
		registry: NewRegistry(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.conflicts == nil {
		p.conflicts = NewConflicts(16)
	}
	p.logger = p.logger.With("module", "processor")

	p.registerDefaults()
	return p
}

func (p *Processor) Registry() *Registry {
	return p.registry
}

func (p *Processor) Conflicts() *Conflicts {
	return p.conflicts
}

// NotifyConflict broadcasts an advisory conflict notice.
func (p *Processor) NotifyConflict(c models.SyncConflict) {
	p.logger.Warn(context.Background(), "sync conflict",
		"entity_type", c.EntityType, "entity_id", c.EntityID, "message", c.Message)
	p.conflicts.Notify(c)
}

// Process applies e and records the outcome on the queue. It reports whether
// the remote side now reflects the entry.
func (p *Processor) Process(ctx context.Context, e *models.QueueEntry) (ok bool) {
	log := p.logger.With("entry_id", e.ID, "entity_type", e.EntityType, "entity_id", e.EntityID, "operation", e.Operation)

	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "handler panicked", "panic", r)
			p.fail(ctx, log, e, fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()

	h, found := p.registry.Lookup(e.EntityType, e.Operation)
	if !found {
		p.fail(ctx, log, e, fmt.Errorf("%w for %s/%s", ErrNoHandler, e.EntityType, e.Operation))
		return false
	}

	if err := h(ctx, e); err != nil {
		p.fail(ctx, log, e, err)
		return false
	}

	if e.Status == models.StatusCompleted {
		log.Debug(ctx, "entry processed")
		return true
	}

	now := p.now()
	if err := p.queue.MarkStatus(ctx, e.ID, models.StatusCompleted, &now); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			p.fail(ctx, log, e, fmt.Errorf("mark completed: %w", err))
			return false
		}
		log.Debug(ctx, "entry removed while processing")
	}

	log.Debug(ctx, "entry processed")
	return true
}

func (p *Processor) fail(ctx context.Context, log logging.Logger, e *models.QueueEntry, err error) {
	se := models.Classify(err)
	log.Warn(ctx, "entry failed", "kind", se.Kind, "error", se.Message, "retry_count", e.RetryCount+1)

	if mErr := p.queue.MarkFailed(ctx, e.ID, se); mErr != nil && !errors.Is(mErr, common.ErrNotFound) {
		log.Error(ctx, "failed to record failure", "error", mErr)
	}
}

func (p *Processor) currentUserID(ctx context.Context) (string, error) {
	if p.users == nil {
		return "", ErrNoUser
	}
	u, err := p.users.Current(ctx)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrNoUser
	}
	return u.ID, nil
}

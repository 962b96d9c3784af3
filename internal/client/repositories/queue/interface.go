package queue

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// Counts is a snapshot of queue sizes.
type Counts struct {
	Pending         int
	PendingOrFailed int
}

type Repository interface {
	// Enqueue inserts e and returns its id.
	Enqueue(ctx context.Context, e *models.QueueEntry) (int64, error)
	// Replace removes unprocessed entries for e's entity and inserts e in one
	// transaction. An Update replacing a Create is stored as a Create with
	// the original created_at, since the record does not exist remotely yet.
	// For entities with partial updates the Update's fields are merged into
	// the Create payload.
	Replace(ctx context.Context, e *models.QueueEntry) (int64, error)

	Get(ctx context.Context, id int64) (*models.QueueEntry, error)
	List(ctx context.Context, limit int) ([]*models.QueueEntry, error)
	ListPending(ctx context.Context, limit int) ([]*models.QueueEntry, error)
	// ListPendingAfter continues a ListPending listing after the entry at
	// (createdAt, id).
	ListPendingAfter(ctx context.Context, createdAt time.Time, id int64, limit int) ([]*models.QueueEntry, error)
	ListFailed(ctx context.Context, maxRetries, limit int) ([]*models.QueueEntry, error)

	CountPending(ctx context.Context) (int, error)
	CountPendingOrFailed(ctx context.Context) (int, error)
	// WatchCounts emits the current counts and then every change until ctx
	// is done.
	WatchCounts(ctx context.Context) <-chan Counts
	FailureSummary(ctx context.Context) (models.FailureSummary, error)

	MarkStatus(ctx context.Context, id int64, status models.QueueStatus, processedAt *time.Time) error
	MarkFailed(ctx context.Context, id int64, syncErr *models.SyncError) error

	DeleteByEntity(ctx context.Context, entityType models.EntityType, entityID string) (int64, error)
	// CompleteRemapped marks entry id completed and remaps the other
	// unprocessed entries of (entityType, from) to to in one transaction.
	// The remap is kept when id itself no longer exists; ErrNotFound is
	// returned in that case.
	CompleteRemapped(ctx context.Context, id int64, processedAt time.Time, entityType models.EntityType, from, to string) error
	DeleteCompletedOlderThan(ctx context.Context, threshold time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

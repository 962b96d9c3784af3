package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/common"
	"github.com/dmitrijs2005/nutrisync/internal/dbx"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

const columns = `id, entity_type, entity_id, operation, payload, status,
	retry_count, last_error, last_error_kind, created_at, processed_at`

type row struct {
	ID            int64         `db:"id"`
	EntityType    string        `db:"entity_type"`
	EntityID      string        `db:"entity_id"`
	Operation     string        `db:"operation"`
	Payload       []byte        `db:"payload"`
	Status        string        `db:"status"`
	RetryCount    int           `db:"retry_count"`
	LastError     string        `db:"last_error"`
	LastErrorKind string        `db:"last_error_kind"`
	CreatedAt     int64         `db:"created_at"`
	ProcessedAt   sql.NullInt64 `db:"processed_at"`
}

func (r *row) toModel() *models.QueueEntry {
	e := &models.QueueEntry{
		ID:         r.ID,
		EntityType: models.EntityType(r.EntityType),
		EntityID:   r.EntityID,
		Operation:  models.Operation(r.Operation),
		Payload:    r.Payload,
		Status:     models.QueueStatus(r.Status),
		RetryCount: r.RetryCount,
		LastError:  r.LastError,
		ErrorKind:  models.SyncErrorKind(r.LastErrorKind),
		CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
	}
	if r.ProcessedAt.Valid {
		t := time.UnixMilli(r.ProcessedAt.Int64).UTC()
		e.ProcessedAt = &t
	}
	return e
}

type SQLiteRepository struct {
	db       *sqlx.DB
	now      func() time.Time
	notifier *notifier
}

type Option func(*SQLiteRepository)

// WithClock overrides the time source used for created_at/processed_at.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) { r.now = now }
}

func NewSQLiteRepository(db *sqlx.DB, opts ...Option) *SQLiteRepository {
	r := &SQLiteRepository{db: db, now: time.Now, notifier: newNotifier()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *SQLiteRepository) insert(ctx context.Context, q dbx.DBTX, e *models.QueueEntry) (int64, error) {
	if e.Status == "" {
		e.Status = models.StatusPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO sync_queue (entity_type, entity_id, operation, payload, status, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.EntityType, e.EntityID, e.Operation, e.Payload, e.Status, e.RetryCount, e.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert queue entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue entry id: %w", err)
	}
	e.ID = id
	return id, nil
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, e *models.QueueEntry) (int64, error) {
	id, err := r.insert(ctx, r.db, e)
	if err != nil {
		return 0, err
	}
	r.notifier.notify()
	return id, nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, e *models.QueueEntry) (int64, error) {
	var id int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var existing []row
		err := tx.SelectContext(ctx, &existing, `SELECT `+columns+` FROM sync_queue
			WHERE entity_type = ? AND entity_id = ? AND status IN ('pending', 'failed')
			ORDER BY created_at, id`, e.EntityType, e.EntityID)
		if err != nil {
			return fmt.Errorf("failed to select unprocessed entries: %w", err)
		}

		if e.Operation == models.OperationUpdate {
			for _, ex := range existing {
				if models.Operation(ex.Operation) == models.OperationCreate {
					if e.EntityType.PartialUpdates() {
						merged, err := mergePayload(ex.Payload, e.Payload)
						if err != nil {
							return err
						}
						e.Payload = merged
					}
					e.Operation = models.OperationCreate
					e.CreatedAt = time.UnixMilli(ex.CreatedAt).UTC()
					break
				}
			}
		}

		if len(existing) > 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM sync_queue
				WHERE entity_type = ? AND entity_id = ? AND status IN ('pending', 'failed')`,
				e.EntityType, e.EntityID); err != nil {
				return fmt.Errorf("failed to delete unprocessed entries: %w", err)
			}
		}

		id, err = r.insert(ctx, tx, e)
		return err
	})
	if err != nil {
		return 0, err
	}
	r.notifier.notify()
	return id, nil
}

// mergePayload overlays the top-level fields of update on base.
func mergePayload(base, update []byte) ([]byte, error) {
	if len(base) == 0 {
		return update, nil
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, fmt.Errorf("%w: queued create payload: %v", models.ErrSerialization, err)
	}
	if len(update) > 0 {
		var changed map[string]json.RawMessage
		if err := json.Unmarshal(update, &changed); err != nil {
			return nil, fmt.Errorf("%w: update payload: %v", models.ErrSerialization, err)
		}
		for k, v := range changed {
			fields[k] = v
		}
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: merge payload: %v", models.ErrSerialization, err)
	}
	return merged, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.QueueEntry, error) {
	var rw row
	err := r.db.GetContext(ctx, &rw, `SELECT `+columns+` FROM sync_queue WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry %d: %w", id, err)
	}
	return rw.toModel(), nil
}

func (r *SQLiteRepository) selectEntries(ctx context.Context, query string, args ...any) ([]*models.QueueEntry, error) {
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}

	result := make([]*models.QueueEntry, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toModel())
	}
	return result, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*models.QueueEntry, error) {
	return r.selectEntries(ctx, `SELECT `+columns+` FROM sync_queue
		ORDER BY created_at, id LIMIT ?`, limit)
}

func (r *SQLiteRepository) ListPending(ctx context.Context, limit int) ([]*models.QueueEntry, error) {
	return r.selectEntries(ctx, `SELECT `+columns+` FROM sync_queue
		WHERE status = 'pending'
		ORDER BY created_at, id LIMIT ?`, limit)
}

func (r *SQLiteRepository) ListPendingAfter(ctx context.Context, createdAt time.Time, id int64, limit int) ([]*models.QueueEntry, error) {
	ms := createdAt.UnixMilli()
	return r.selectEntries(ctx, `SELECT `+columns+` FROM sync_queue
		WHERE status = 'pending' AND (created_at > ? OR (created_at = ? AND id > ?))
		ORDER BY created_at, id LIMIT ?`, ms, ms, id, limit)
}

func (r *SQLiteRepository) ListFailed(ctx context.Context, maxRetries, limit int) ([]*models.QueueEntry, error) {
	return r.selectEntries(ctx, `SELECT `+columns+` FROM sync_queue
		WHERE status = 'failed' AND retry_count < ?
		ORDER BY created_at, id LIMIT ?`, maxRetries, limit)
}

func (r *SQLiteRepository) count(ctx context.Context, where string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sync_queue WHERE `+where); err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	return r.count(ctx, `status = 'pending'`)
}

func (r *SQLiteRepository) CountPendingOrFailed(ctx context.Context) (int, error) {
	return r.count(ctx, `status IN ('pending', 'failed')`)
}

func (r *SQLiteRepository) counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.db.QueryRowxContext(ctx, `SELECT
		COALESCE(SUM(status = 'pending'), 0),
		COALESCE(SUM(status IN ('pending', 'failed')), 0)
		FROM sync_queue`).Scan(&c.Pending, &c.PendingOrFailed)
	if err != nil {
		return c, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) FailureSummary(ctx context.Context) (models.FailureSummary, error) {
	var s models.FailureSummary

	n, err := r.count(ctx, `status = 'failed'`)
	if err != nil {
		return s, err
	}
	s.Failed = n
	if n == 0 {
		return s, nil
	}

	err = r.db.GetContext(ctx, &s.LastError, `SELECT last_error FROM sync_queue
		WHERE status = 'failed'
		ORDER BY processed_at DESC, id DESC LIMIT 1`)
	if err != nil {
		return s, fmt.Errorf("failed to read last error: %w", err)
	}
	return s, nil
}

func execOn(ctx context.Context, q dbx.DBTX, what string, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", what, err)
	}
	return n, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, what string, query string, args ...any) (int64, error) {
	n, err := execOn(ctx, r.db, what, query, args...)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.notifier.notify()
	}
	return n, nil
}

func (r *SQLiteRepository) MarkStatus(ctx context.Context, id int64, status models.QueueStatus, processedAt *time.Time) error {
	var ts sql.NullInt64
	if processedAt != nil {
		ts = sql.NullInt64{Int64: processedAt.UnixMilli(), Valid: true}
	}

	n, err := r.exec(ctx, "mark queue entry", `UPDATE sync_queue SET status = ?, processed_at = ? WHERE id = ?`,
		status, ts, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, syncErr *models.SyncError) error {
	var msg, kind string
	if syncErr != nil {
		msg, kind = syncErr.Message, string(syncErr.Kind)
	}

	n, err := r.exec(ctx, "mark queue entry failed", `UPDATE sync_queue
		SET status = 'failed', retry_count = retry_count + 1, last_error = ?, last_error_kind = ?, processed_at = ?
		WHERE id = ?`, msg, kind, r.now().UnixMilli(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteByEntity(ctx context.Context, entityType models.EntityType, entityID string) (int64, error) {
	return r.exec(ctx, "delete queue entries", `DELETE FROM sync_queue
		WHERE entity_type = ? AND entity_id = ? AND status IN ('pending', 'failed')`, entityType, entityID)
}

// remapQuery points unprocessed entries at a new id, turning Creates into
// Updates.
const remapQuery = `UPDATE sync_queue
	SET entity_id = ?,
	    operation = CASE WHEN operation = 'create' THEN 'update' ELSE operation END
	WHERE entity_type = ? AND entity_id = ? AND id <> ? AND status IN ('pending', 'failed')`

func (r *SQLiteRepository) CompleteRemapped(ctx context.Context, id int64, processedAt time.Time, entityType models.EntityType, from, to string) error {
	var marked int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if from != to {
			if _, err := execOn(ctx, tx, "remap queue entries", remapQuery, to, entityType, from, id); err != nil {
				return err
			}
		}
		n, err := execOn(ctx, tx, "mark queue entry", `UPDATE sync_queue SET status = 'completed', processed_at = ? WHERE id = ?`,
			processedAt.UnixMilli(), id)
		marked = n
		return err
	})
	if err != nil {
		return err
	}
	r.notifier.notify()
	if marked == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteCompletedOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	return r.exec(ctx, "purge completed entries", `DELETE FROM sync_queue
		WHERE status = 'completed' AND processed_at < ?`, threshold.UnixMilli())
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.exec(ctx, "clear queue", `DELETE FROM sync_queue`)
}

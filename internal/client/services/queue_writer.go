// Package services holds the write paths the rest of the application uses
// to mutate data while offline: QueueWriter records mutations in the sync
// queue and LocalMutator applies them to the local store first.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/queue"
	"github.com/goccy/go-json"
)

type QueueWriter interface {
	// QueueCreate records a create. payload is the request body; []byte is
	// stored as is, anything else is JSON-encoded.
	QueueCreate(ctx context.Context, entityType models.EntityType, entityID string, payload any) (int64, error)
	// QueueUpdate replaces any unprocessed mutation of the entity with an
	// update carrying payload.
	QueueUpdate(ctx context.Context, entityType models.EntityType, entityID string, payload any) (int64, error)
	// QueueDelete replaces any unprocessed mutation of the entity with a
	// delete.
	QueueDelete(ctx context.Context, entityType models.EntityType, entityID string) (int64, error)
	// RemovePending drops unprocessed mutations of the entity.
	RemovePending(ctx context.Context, entityType models.EntityType, entityID string) (int64, error)
}

type queueWriter struct {
	queue queue.Repository
}

func NewQueueWriter(q queue.Repository) QueueWriter {
	return &queueWriter{queue: q}
}

func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrSerialization, err)
	}
	return b, nil
}

func (w *queueWriter) QueueCreate(ctx context.Context, entityType models.EntityType, entityID string, payload any) (int64, error) {
	b, err := encodePayload(payload)
	if err != nil {
		return 0, err
	}

	return w.queue.Enqueue(ctx, &models.QueueEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  models.OperationCreate,
		Payload:    b,
	})
}

func (w *queueWriter) QueueUpdate(ctx context.Context, entityType models.EntityType, entityID string, payload any) (int64, error) {
	b, err := encodePayload(payload)
	if err != nil {
		return 0, err
	}

	return w.queue.Replace(ctx, &models.QueueEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  models.OperationUpdate,
		Payload:    b,
	})
}

func (w *queueWriter) QueueDelete(ctx context.Context, entityType models.EntityType, entityID string) (int64, error) {
	return w.queue.Replace(ctx, &models.QueueEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  models.OperationDelete,
	})
}

func (w *queueWriter) RemovePending(ctx context.Context, entityType models.EntityType, entityID string) (int64, error) {
	return w.queue.DeleteByEntity(ctx, entityType, entityID)
}

package records

import (
	"context"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// Store persists records of one entity type.
type Store[T models.Record] interface {
	// Insert writes rec, replacing any record with the same id.
	Insert(ctx context.Context, rec T) error
	// Update overwrites rec; a missing record is created.
	Update(ctx context.Context, rec T) error
	// Delete removes the record; deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
}

package records

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
)

var tables = map[models.EntityType]string{
	models.EntityFood:          "foods",
	models.EntityDiaryEntry:    "diary_entries",
	models.EntityRecipe:        "recipes",
	models.EntitySavedMeal:     "saved_meals",
	models.EntityWeightEntry:   "weight_entries",
	models.EntityExerciseEntry: "exercise_entries",
}

// Table returns the table holding records of entityType.
func Table(entityType models.EntityType) (string, error) {
	t, ok := tables[entityType]
	if !ok {
		return "", fmt.Errorf("no local table for %s", entityType)
	}
	return t, nil
}

type SQLiteRepository[T models.Record] struct {
	db    dbx.DBTX
	table string
	now   func() time.Time
}

func NewSQLiteRepository[T models.Record](db dbx.DBTX, entityType models.EntityType) *SQLiteRepository[T] {
	table, err := Table(entityType)
	if err != nil {
		panic(err)
	}
	return &SQLiteRepository[T]{db: db, table: table, now: time.Now}
}

func (r *SQLiteRepository[T]) upsert(ctx context.Context, rec T) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", r.table, err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO `+r.table+` (id, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		rec.RecordID(), body, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s[%s]: %w", r.table, rec.RecordID(), err)
	}
	return nil
}

func (r *SQLiteRepository[T]) Insert(ctx context.Context, rec T) error {
	return r.upsert(ctx, rec)
}

func (r *SQLiteRepository[T]) Update(ctx context.Context, rec T) error {
	return r.upsert(ctx, rec)
}

func (r *SQLiteRepository[T]) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", r.table, id, err)
	}
	return nil
}

func (r *SQLiteRepository[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	var body []byte

	err := r.db.GetContext(ctx, &body, `SELECT body FROM `+r.table+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, common.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("failed to get %s[%s]: %w", r.table, id, err)
	}

	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s[%s]: %w", r.table, id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository[T]) List(ctx context.Context) ([]T, error) {
	var bodies [][]byte
	if err := r.db.SelectContext(ctx, &bodies, `SELECT body FROM `+r.table+` ORDER BY updated_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}

	result := make([]T, 0, len(bodies))
	for _, b := range bodies {
		var rec T
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", r.table, err)
		}
		result = append(result, rec)
	}
	return result, nil
}

package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nutrisync/internal/client/migrations"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/queue"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/records"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/users"
	"github.com/dmitrijs2005/nutrisync/internal/dbx"
	"github.com/jmoiron/sqlx"
)

// Repositories bundles every local store backed by one database handle.
type Repositories struct {
	DB      *sqlx.DB
	Queue   *queue.SQLiteRepository
	Records *records.Repositories
	Users   *users.SQLiteRepository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// InitDatabase opens the SQLite database at path, applies migrations and
// builds the repositories on top of it.
func InitDatabase(ctx context.Context, path string, queueOpts ...queue.Option) (*Repositories, error) {
	db, err := dbx.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return &Repositories{
		DB:      db,
		Queue:   queue.NewSQLiteRepository(db, queueOpts...),
		Records: records.NewRepositories(db),
		Users:   users.NewSQLiteRepository(db),
	}, nil
}

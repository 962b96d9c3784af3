// Package users stores the signed-in user that owns the local data.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/dbx"
	"github.com/jmoiron/sqlx"
)

type SQLiteRepository struct {
	db *sqlx.DB

	mu     sync.Mutex
	nextID int
	subs   map[int]func(*models.User)
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, subs: make(map[int]func(*models.User))}
}

func (r *SQLiteRepository) Current(ctx context.Context) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowxContext(ctx, `SELECT id, email, display_name FROM users WHERE is_current = 1 LIMIT 1`).
		Scan(&u.ID, &u.Email, &u.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepository) SetCurrent(ctx context.Context, u models.User) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET is_current = 0 WHERE is_current = 1`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, display_name, is_current) VALUES (?, ?, ?, 1)
			ON CONFLICT(id) DO UPDATE SET email = excluded.email, display_name = excluded.display_name, is_current = 1
		`, u.ID, u.Email, u.DisplayName)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set current user: %w", err)
	}

	r.publish(&u)
	return nil
}

func (r *SQLiteRepository) ClearCurrent(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET is_current = 0 WHERE is_current = 1`); err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	r.publish(nil)
	return nil
}

func (r *SQLiteRepository) Subscribe(ctx context.Context, fn func(*models.User)) (func(), error) {
	u, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	fn(u)

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}, nil
}

func (r *SQLiteRepository) publish(u *models.User) {
	r.mu.Lock()
	fns := make([]func(*models.User), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		var cp *models.User
		if u != nil {
			c := *u
			cp = &c
		}
		fn(cp)
	}
}

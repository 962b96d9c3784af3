package users

import (
	"context"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

type Repository interface {
	// Current returns the signed-in user, or nil when nobody is signed in.
	Current(ctx context.Context) (*models.User, error)
	SetCurrent(ctx context.Context, u models.User) error
	ClearCurrent(ctx context.Context) error
	// Subscribe calls fn with the current user and again after every
	// change, until the returned cancel func is called.
	Subscribe(ctx context.Context, fn func(*models.User)) (cancel func(), err error)
}

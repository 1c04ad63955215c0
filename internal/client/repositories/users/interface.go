package users

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, userID string, patch models.UserPatch) error
	Get(ctx context.Context, userID string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
	UpdateLoginTime(ctx context.Context, userID, at string) error
	UpdateLogoutTime(ctx context.Context, userID, at string) error
	Delete(ctx context.Context, userID string) error
}

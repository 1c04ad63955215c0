// Package services contains the sync engines of the moviekeeper client.
//
// The engines write to the local store synchronously and mirror the change
// to the remote document store on a Dispatcher. The local store is the
// source of truth for the UI; remote failures are logged and never surface.
package services

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
)

// UserStore is the part of the local store used by the user sync engine.
type UserStore interface {
	UpsertUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, userID string, patch models.UserPatch) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateLoginTime(ctx context.Context, userID, at string) error
	UpdateLogoutTime(ctx context.Context, userID, at string) error
}

// FavoritesStore is the part of the local store used by the favorites sync
// engine.
// AddFavorite and RemoveFavorite also queue the remote write; the queue
// entry is cleared once the remote store acknowledges it.
type FavoritesStore interface {
	AddFavorite(ctx context.Context, f *models.Favorite) (bool, error)
	RemoveFavorite(ctx context.Context, userID, movieID string) error
	InsertFavoritesIfAbsent(ctx context.Context, list []*models.Favorite) (int, error)
	ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error)
	PendingFavorites(ctx context.Context, userID string) ([]models.PendingWrite, error)
	ClearPendingFavorite(ctx context.Context, userID, movieID string, op models.PendingOp) error
}

// Cipher protects the sensitive profile fields. *cryptox.Guard implements it.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

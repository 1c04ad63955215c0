package client

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/documents"
)

// Client is the remote document store contract used by the sync engines.
type Client interface {
	// GetUser returns common.ErrorNotFound when no document exists.
	GetUser(ctx context.Context, userID string) (*documents.UserDocument, error)
	// MergeUser merge-sets the non-empty profile fields; the activity log
	// is left untouched.
	MergeUser(ctx context.Context, p documents.Profile) error
	// SetActivityLog replaces the activity log, creating the user document
	// when needed.
	SetActivityLog(ctx context.Context, userID string, log documents.ActivityLog) error
	PutFavorite(ctx context.Context, userID string, f documents.FavoriteDocument) error
	// DeleteFavorite succeeds when the favorite is already gone.
	DeleteFavorite(ctx context.Context, userID, movieID string) error
	ListFavorites(ctx context.Context, userID string) ([]documents.FavoriteDocument, error)
	Ping(ctx context.Context) error
	Close() error
}

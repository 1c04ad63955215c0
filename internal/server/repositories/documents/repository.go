package documents

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/documents"
)

// Repository stores the remote user and favorite documents of the server.
type Repository interface {
	GetUser(ctx context.Context, userID string) (*documents.UserDocument, error)
	MergeUser(ctx context.Context, p documents.Profile) error
	SetActivityLog(ctx context.Context, userID string, log documents.ActivityLog) error
	PutFavorite(ctx context.Context, userID string, f documents.FavoriteDocument) error
	DeleteFavorite(ctx context.Context, userID, movieID string) error
	ListFavorites(ctx context.Context, userID string) ([]documents.FavoriteDocument, error)
}

// Package favorites persists a user's favorite movies in the local SQLite
// store. Rows are keyed by (movie_id, user_id) and are removed together
// with their user.
package favorites

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
)

type Repository interface {
	// InsertIfAbsent reports whether a new row was written.
	InsertIfAbsent(ctx context.Context, f *models.Favorite) (bool, error)
	Delete(ctx context.Context, userID, movieID string) error
	List(ctx context.Context, userID string) ([]*models.Favorite, error)
	Exists(ctx context.Context, userID, movieID string) (bool, error)

	// MarkPending records op as the latest unacknowledged write of a
	// favorite, replacing any earlier one.
	MarkPending(ctx context.Context, userID, movieID string, op models.PendingOp) error
	// ClearPending forgets the pending write only while it is still op.
	ClearPending(ctx context.Context, userID, movieID string, op models.PendingOp) error
	ListPending(ctx context.Context, userID string) ([]models.PendingWrite, error)
}

// Package localstore is the on-device store of users and favorites.
//
// A Store owns one SQLite handle for its whole lifetime. The handle is
// limited to a single connection; concurrent writers must be serialized by
// the caller. Read misses are reported as (nil, nil) and every failure
// matches common.ErrLocalStore.
package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
	"github.com/dmitrijs2005/moviekeeper/internal/client/repositories/favorites"
	"github.com/dmitrijs2005/moviekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moviekeeper/internal/client/repositories/users"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/dbx"
)

type Store struct {
	db        *sql.DB
	users     users.Repository
	favorites favorites.Repository
	metadata  metadata.Repository
}

// Open opens the database at path and returns a Store owning it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:        db,
		users:     users.NewSQLiteRepository(db),
		favorites: favorites.NewSQLiteRepository(db),
		metadata:  metadata.NewSQLiteRepository(db),
	}
}

func (s *Store) Metadata() metadata.Repository {
	return s.metadata
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", common.ErrLocalStore, err)
	}
	return nil
}

// UpsertUser inserts u unless a user with the same id already exists.
func (s *Store) UpsertUser(ctx context.Context, u *models.User) error {
	return s.users.Upsert(ctx, u)
}

// UpdateUser applies a preserve-on-null patch.
func (s *Store) UpdateUser(ctx context.Context, userID string, patch models.UserPatch) error {
	return s.users.Update(ctx, userID, patch)
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Store) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.GetAll(ctx)
}

func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	return s.users.Exists(ctx, userID)
}

func (s *Store) UpdateLoginTime(ctx context.Context, userID, at string) error {
	return s.users.UpdateLoginTime(ctx, userID, at)
}

func (s *Store) UpdateLogoutTime(ctx context.Context, userID, at string) error {
	return s.users.UpdateLogoutTime(ctx, userID, at)
}

// DeleteUser removes the user and, through the foreign key, its favorites.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}

func (s *Store) InsertFavoriteIfAbsent(ctx context.Context, f *models.Favorite) (bool, error) {
	return s.favorites.InsertIfAbsent(ctx, f)
}

// InsertFavoritesIfAbsent inserts a batch in one transaction and returns the
// number of new rows.
func (s *Store) InsertFavoritesIfAbsent(ctx context.Context, list []*models.Favorite) (int, error) {
	added := 0
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := favorites.NewSQLiteRepository(tx)
		for _, f := range list {
			ok, err := repo.InsertIfAbsent(ctx, f)
			if err != nil {
				return err
			}
			if ok {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: insert favorites: %w", common.ErrLocalStore, err)
	}
	return added, nil
}

// DeleteFavorite is a no-op when the favorite does not exist.
func (s *Store) DeleteFavorite(ctx context.Context, userID, movieID string) error {
	return s.favorites.Delete(ctx, userID, movieID)
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	return s.favorites.List(ctx, userID)
}

func (s *Store) FavoriteExists(ctx context.Context, userID, movieID string) (bool, error) {
	return s.favorites.Exists(ctx, userID, movieID)
}

// AddFavorite inserts f if absent and queues its upload, in one
// transaction. It reports whether a new row was written.
func (s *Store) AddFavorite(ctx context.Context, f *models.Favorite) (bool, error) {
	var inserted bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := favorites.NewSQLiteRepository(tx)
		var err error
		if inserted, err = repo.InsertIfAbsent(ctx, f); err != nil {
			return err
		}
		return repo.MarkPending(ctx, f.UserID, f.MovieID, models.PendingPut)
	})
	if err != nil {
		return false, fmt.Errorf("%w: add favorite: %w", common.ErrLocalStore, err)
	}
	return inserted, nil
}

// RemoveFavorite deletes a favorite and queues the remote delete, in one
// transaction.
func (s *Store) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := favorites.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, userID, movieID); err != nil {
			return err
		}
		return repo.MarkPending(ctx, userID, movieID, models.PendingDelete)
	})
	if err != nil {
		return fmt.Errorf("%w: remove favorite: %w", common.ErrLocalStore, err)
	}
	return nil
}

// PendingFavorites lists the favorite writes not yet acknowledged by the
// remote store, oldest first.
func (s *Store) PendingFavorites(ctx context.Context, userID string) ([]models.PendingWrite, error) {
	return s.favorites.ListPending(ctx, userID)
}

func (s *Store) ClearPendingFavorite(ctx context.Context, userID, movieID string, op models.PendingOp) error {
	return s.favorites.ClearPending(ctx, userID, movieID, op)
}

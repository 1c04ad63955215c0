package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/client"
	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
)

// FavoritesSyncService keeps a user's favorite movies consistent between the
// local and remote stores: push on write, pull on start.
//
// Every local write is queued in the store until the remote store
// acknowledges it, so a write made offline is sent again by the next
// PullRemote or Resend.
type FavoritesSyncService interface {
	Add(ctx context.Context, userID string, f models.Favorite) error
	Remove(ctx context.Context, userID, movieID string) error
	List(ctx context.Context, userID string) ([]*models.Favorite, error)
	// PullRemote union-inserts the remote set into the local store, skipping
	// favorites with a queued delete, resends the queued writes and returns
	// the number of favorites that were missing locally.
	PullRemote(ctx context.Context, userID string) (int, error)
	// Resend schedules every queued write again and returns how many.
	Resend(ctx context.Context, userID string) (int, error)
}

type favoritesSyncService struct {
	store         FavoritesStore
	remote        client.Client
	dispatcher    *Dispatcher
	log           logging.Logger
	remoteTimeout time.Duration
}

func NewFavoritesSyncService(store FavoritesStore, remote client.Client, d *Dispatcher, log logging.Logger, remoteTimeout time.Duration) FavoritesSyncService {
	return &favoritesSyncService{
		store:         store,
		remote:        remote,
		dispatcher:    d,
		log:           log.With("module", "favorites_sync"),
		remoteTimeout: remoteTimeout,
	}
}

func (s *favoritesSyncService) Add(ctx context.Context, userID string, f models.Favorite) error {
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	f.UserID = userID
	inserted, err := s.store.AddFavorite(ctx, &f)
	if err != nil {
		return err
	}
	if !inserted {
		s.log.Debug(ctx, "favorite already present", "user_id", userID, "movie_id", f.MovieID)
	}

	s.submitPut(ctx, userID, f.Document())
	return nil
}

func (s *favoritesSyncService) Remove(ctx context.Context, userID, movieID string) error {
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	if err := s.store.RemoveFavorite(ctx, userID, movieID); err != nil {
		return err
	}

	s.submitDelete(ctx, userID, movieID)
	return nil
}

func (s *favoritesSyncService) submitPut(ctx context.Context, userID string, doc documents.FavoriteDocument) {
	s.dispatcher.Submit(ctx, "put-favorite", func(ctx context.Context) error {
		if err := s.remote.PutFavorite(ctx, userID, doc); err != nil {
			return err
		}
		return s.store.ClearPendingFavorite(ctx, userID, doc.ID, models.PendingPut)
	})
}

func (s *favoritesSyncService) submitDelete(ctx context.Context, userID, movieID string) {
	s.dispatcher.Submit(ctx, "delete-favorite", func(ctx context.Context) error {
		if err := s.remote.DeleteFavorite(ctx, userID, movieID); err != nil {
			return err
		}
		return s.store.ClearPendingFavorite(ctx, userID, movieID, models.PendingDelete)
	})
}

// List reads the local favorites. A read failure is logged and yields an
// empty list.
func (s *favoritesSyncService) List(ctx context.Context, userID string) ([]*models.Favorite, error) {
	if userID == "" {
		return nil, common.ErrNotAuthenticated
	}

	list, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "list favorites failed", "user_id", userID, "err", err)
		return []*models.Favorite{}, nil
	}
	return list, nil
}

func (s *favoritesSyncService) PullRemote(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, common.ErrNotAuthenticated
	}

	pending, err := s.store.PendingFavorites(ctx, userID)
	if err != nil {
		return 0, err
	}

	rctx := ctx
	if s.remoteTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, s.remoteTimeout)
		defer cancel()
	}

	docs, err := s.remote.ListFavorites(rctx, userID)
	if err != nil {
		s.log.Warn(ctx, "remote favorites unavailable", "user_id", userID, "err", err)
		return 0, nil
	}

	removed := make(map[string]struct{})
	for _, w := range pending {
		if w.Op == models.PendingDelete {
			removed[w.MovieID] = struct{}{}
		}
	}

	list := make([]*models.Favorite, 0, len(docs))
	for _, d := range docs {
		if _, ok := removed[d.ID]; ok {
			continue
		}
		f := models.FavoriteFromDocument(userID, d)
		list = append(list, &f)
	}

	added := 0
	if len(list) > 0 {
		if added, err = s.store.InsertFavoritesIfAbsent(ctx, list); err != nil {
			return 0, err
		}
		s.log.Info(ctx, "pulled remote favorites", "user_id", userID, "remote", len(docs), "added", added)
	}

	if _, err := s.resend(ctx, userID, pending); err != nil {
		s.log.Error(ctx, "resend favorites failed", "user_id", userID, "err", err)
	}
	return added, nil
}

func (s *favoritesSyncService) Resend(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, common.ErrNotAuthenticated
	}

	pending, err := s.store.PendingFavorites(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.resend(ctx, userID, pending)
}

func (s *favoritesSyncService) resend(ctx context.Context, userID string, pending []models.PendingWrite) (int, error) {
	if len(pending) == 0 {
		return 0, nil
	}

	local, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return 0, err
	}
	byID := make(map[string]*models.Favorite, len(local))
	for _, f := range local {
		byID[f.MovieID] = f
	}

	n := 0
	for _, w := range pending {
		switch w.Op {
		case models.PendingDelete:
			s.submitDelete(ctx, userID, w.MovieID)
			n++
		case models.PendingPut:
			f, ok := byID[w.MovieID]
			if !ok {
				s.log.Warn(ctx, "queued favorite no longer stored", "user_id", userID, "movie_id", w.MovieID)
				if err := s.store.ClearPendingFavorite(ctx, userID, w.MovieID, models.PendingPut); err != nil {
					return n, err
				}
				continue
			}
			s.submitPut(ctx, userID, f.Document())
			n++
		}
	}

	s.log.Info(ctx, "resending favorite writes", "user_id", userID, "count", n)
	return n, nil
}

// Package services contains server-side business logic. DocumentService
// validates document requests and hands them to the documents repository.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/repomanager"
)

// ErrInvalidDocument is returned for requests the store refuses to persist.
var ErrInvalidDocument = errors.New("invalid document")

type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "document_service"),
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...))
}

func requireUserID(userID string) error {
	if userID == "" {
		return invalid("user_id is empty")
	}
	return nil
}

// GetUser returns common.ErrorNotFound when no document exists.
func (s *DocumentService) GetUser(ctx context.Context, userID string) (*documents.UserDocument, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	return s.repomanager.Documents(s.db).GetUser(ctx, userID)
}

func (s *DocumentService) MergeUser(ctx context.Context, p documents.Profile) error {
	if err := requireUserID(p.UserID); err != nil {
		return err
	}
	if err := s.repomanager.Documents(s.db).MergeUser(ctx, p); err != nil {
		return err
	}
	s.log.Debug(ctx, "profile merged", "user_id", p.UserID)
	return nil
}

// SetActivityLog rejects logs with an entry lacking its login time or with
// more than one open entry.
func (s *DocumentService) SetActivityLog(ctx context.Context, userID string, log documents.ActivityLog) error {
	if err := requireUserID(userID); err != nil {
		return err
	}

	open := 0
	for _, e := range log {
		if e.LoginTime == "" {
			return invalid("activity entry %d has no login_time", e.Seq)
		}
		if e.IsOpen() {
			open++
		}
	}
	if open > 1 {
		return invalid("activity log has %d open entries", open)
	}

	if err := s.repomanager.Documents(s.db).SetActivityLog(ctx, userID, log); err != nil {
		return err
	}
	s.log.Debug(ctx, "activity log stored", "user_id", userID, "entries", len(log))
	return nil
}

func (s *DocumentService) PutFavorite(ctx context.Context, userID string, f documents.FavoriteDocument) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	if f.ID == "" {
		return invalid("favorite id is empty")
	}
	return s.repomanager.Documents(s.db).PutFavorite(ctx, userID, f)
}

// DeleteFavorite returns common.ErrorNotFound when the favorite is absent.
func (s *DocumentService) DeleteFavorite(ctx context.Context, userID, movieID string) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	if movieID == "" {
		return invalid("movie_id is empty")
	}
	err := s.repomanager.Documents(s.db).DeleteFavorite(ctx, userID, movieID)
	if errors.Is(err, common.ErrorNotFound) {
		s.log.Debug(ctx, "favorite already gone", "user_id", userID, "movie_id", movieID)
	}
	return err
}

func (s *DocumentService) ListFavorites(ctx context.Context, userID string) ([]documents.FavoriteDocument, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	return s.repomanager.Documents(s.db).ListFavorites(ctx, userID)
}

// Ping checks that the database answers.
func (s *DocumentService) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

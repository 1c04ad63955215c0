// Package documents is the PostgreSQL store of user and favorite documents.
// Documents are kept as JSONB so that a profile merge is a single
// `doc || patch` update.
package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/dbx"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetUser(ctx context.Context, userID string) (*documents.UserDocument, error) {
	query :=
		`SELECT doc FROM user_documents
		 WHERE user_id = $1
		 `

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	doc := &documents.UserDocument{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	doc.UserID = userID

	return doc, nil
}

// MergeUser creates the user document or merges the non-empty profile fields
// into it. Keys missing from the patch, activity_log included, keep their
// stored values.
func (r *PostgresRepository) MergeUser(ctx context.Context, p documents.Profile) error {
	patch, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	query :=
		`INSERT INTO user_documents (user_id, doc)
		 VALUES ($1, $2::jsonb)
		 ON CONFLICT (user_id) DO UPDATE
		 SET doc = user_documents.doc || EXCLUDED.doc, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, p.UserID, string(patch)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetActivityLog replaces activity_log, creating the user document when
// needed.
func (r *PostgresRepository) SetActivityLog(ctx context.Context, userID string, log documents.ActivityLog) error {
	if log == nil {
		log = documents.ActivityLog{}
	}
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode activity log: %w", err)
	}

	query :=
		`INSERT INTO user_documents (user_id, doc)
		 VALUES ($1, jsonb_build_object('user_id', $1::text, 'activity_log', $2::jsonb))
		 ON CONFLICT (user_id) DO UPDATE
		 SET doc = user_documents.doc || jsonb_build_object('activity_log', $2::jsonb), updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, string(raw)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PutFavorite(ctx context.Context, userID string, f documents.FavoriteDocument) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode favorite: %w", err)
	}

	query :=
		`INSERT INTO favorite_documents (user_id, movie_id, doc)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, movie_id) DO UPDATE
		 SET doc = EXCLUDED.doc, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, f.ID, string(raw)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteFavorite returns common.ErrorNotFound when nothing was deleted.
func (r *PostgresRepository) DeleteFavorite(ctx context.Context, userID, movieID string) error {
	query :=
		`DELETE FROM favorite_documents
		 WHERE user_id = $1 AND movie_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, movieID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListFavorites(ctx context.Context, userID string) ([]documents.FavoriteDocument, error) {
	query :=
		`SELECT doc FROM favorite_documents
		 WHERE user_id = $1
		 ORDER BY movie_id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	favs, err := dbx.CollectRows(rows, func(rows *sql.Rows) (documents.FavoriteDocument, error) {
		var raw []byte
		var f documents.FavoriteDocument
		if err := rows.Scan(&raw); err != nil {
			return f, err
		}
		if err := json.Unmarshal(raw, &f); err != nil {
			return f, fmt.Errorf("decode favorite: %w", err)
		}
		return f, nil
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return favs, nil
}

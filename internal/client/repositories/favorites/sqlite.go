package favorites

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, f *models.Favorite) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (movie_id, user_id, title, image_url, release_date, rating)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(movie_id, user_id) DO NOTHING
	`, f.MovieID, f.UserID, f.Title, f.ImageURL, f.ReleaseDate, f.Rating)
	if err != nil {
		return false, fmt.Errorf("%w: insert favorite %s/%s: %w", common.ErrLocalStore, f.UserID, f.MovieID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %w", common.ErrLocalStore, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID, movieID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE movie_id = ? AND user_id = ?`, movieID, userID)
	if err != nil {
		return fmt.Errorf("%w: delete favorite %s/%s: %w", common.ErrLocalStore, userID, movieID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]*models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT movie_id, user_id, title, image_url, release_date, rating
		FROM favorites
		WHERE user_id = ?
		ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list favorites of %s: %w", common.ErrLocalStore, userID, err)
	}

	list, err := dbx.CollectRows(rows, func(rows *sql.Rows) (*models.Favorite, error) {
		var (
			f                              models.Favorite
			title, image, released, rating sql.NullString
		)
		if err := rows.Scan(&f.MovieID, &f.UserID, &title, &image, &released, &rating); err != nil {
			return nil, err
		}
		f.Title, f.ImageURL, f.ReleaseDate, f.Rating = title.String, image.String, released.String, rating.String
		return &f, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list favorites of %s: %w", common.ErrLocalStore, userID, err)
	}
	return list, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, userID, movieID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM favorites WHERE movie_id = ? AND user_id = ?`, movieID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: check favorite %s/%s: %w", common.ErrLocalStore, userID, movieID, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) MarkPending(ctx context.Context, userID, movieID string, op models.PendingOp) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorite_outbox (user_id, movie_id, op)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, movie_id) DO UPDATE SET op = excluded.op
	`, userID, movieID, string(op))
	if err != nil {
		return fmt.Errorf("%w: queue %s of favorite %s/%s: %w", common.ErrLocalStore, op, userID, movieID, err)
	}
	return nil
}

func (r *SQLiteRepository) ClearPending(ctx context.Context, userID, movieID string, op models.PendingOp) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorite_outbox WHERE user_id = ? AND movie_id = ? AND op = ?`, userID, movieID, string(op))
	if err != nil {
		return fmt.Errorf("%w: clear %s of favorite %s/%s: %w", common.ErrLocalStore, op, userID, movieID, err)
	}
	return nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID string) ([]models.PendingWrite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, movie_id, op
		FROM favorite_outbox
		WHERE user_id = ?
		ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list pending favorites of %s: %w", common.ErrLocalStore, userID, err)
	}

	list, err := dbx.CollectRows(rows, func(rows *sql.Rows) (models.PendingWrite, error) {
		var (
			w  models.PendingWrite
			op string
		)
		if err := rows.Scan(&w.UserID, &w.MovieID, &op); err != nil {
			return w, err
		}
		w.Op = models.PendingOp(op)
		return w, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list pending favorites of %s: %w", common.ErrLocalStore, userID, err)
	}
	return list, nil
}

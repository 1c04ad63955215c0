package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/dbx"
)

const userColumns = `user_id, name, email, login_time, logout_time, address, phone, image`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrLocalStore, op, err)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, u.UserID, u.Name, u.Email, u.LoginTime, u.LogoutTime, nullable(u.Address), nullable(u.Phone), nullable(u.Image))
	if err != nil {
		return storeErr(fmt.Sprintf("insert user %s", u.UserID), err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, userID string, p models.UserPatch) error {
	if p.IsEmpty() {
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			name    = COALESCE(?, name),
			email   = CASE WHEN email IS NULL OR email = '' THEN COALESCE(?, email) ELSE email END,
			address = COALESCE(?, address),
			phone   = COALESCE(?, phone),
			image   = COALESCE(?, image)
		WHERE user_id = ?
	`, p.Name, p.Email, p.Address, p.Phone, p.Image, userID)
	if err != nil {
		return storeErr(fmt.Sprintf("update user %s", userID), err)
	}
	return requireRow(res, userID)
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(fmt.Sprintf("get user %s", userID), err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, storeErr("list users", err)
	}

	list, err := dbx.CollectRows(rows, func(rows *sql.Rows) (*models.User, error) {
		return scanUser(rows)
	})
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return list, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return false, storeErr(fmt.Sprintf("check user %s", userID), err)
	}
	return n > 0, nil
}

// UpdateLoginTime starts a new local session: login_time is set and the
// previous logout_time is cleared.
func (r *SQLiteRepository) UpdateLoginTime(ctx context.Context, userID, at string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET login_time = ?, logout_time = NULL WHERE user_id = ?`, at, userID)
	if err != nil {
		return storeErr(fmt.Sprintf("update login time of %s", userID), err)
	}
	return requireRow(res, userID)
}

func (r *SQLiteRepository) UpdateLogoutTime(ctx context.Context, userID, at string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET logout_time = ? WHERE user_id = ?`, at, userID)
	if err != nil {
		return storeErr(fmt.Sprintf("update logout time of %s", userID), err)
	}
	return requireRow(res, userID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return storeErr(fmt.Sprintf("delete user %s", userID), err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*models.User, error) {
	var (
		u                     models.User
		name, email           sql.NullString
		login, logout         sql.NullString
		address, phone, image sql.NullString
	)
	if err := s.Scan(&u.UserID, &name, &email, &login, &logout, &address, &phone, &image); err != nil {
		return nil, err
	}

	u.Name = name.String
	u.Email = email.String
	u.Address = address.String
	u.Phone = phone.String
	u.Image = image.String
	if login.Valid {
		u.LoginTime = &login.String
	}
	if logout.Valid {
		u.LogoutTime = &logout.String
	}
	return &u, nil
}

func requireRow(res sql.Result, userID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %s: %w", common.ErrLocalStore, userID, common.ErrorNotFound)
	}
	return nil
}
